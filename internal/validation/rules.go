package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sogawa-yk/Galley/internal/architecture"
)

// Condition selects connections by endpoint service types. Patterns accept
// "*" globs and "|" separated alternatives.
type Condition struct {
	SourceService  string `yaml:"source_service"`
	TargetService  string `yaml:"target_service"`
	ConnectionType string `yaml:"connection_type"`
}

// Requirement lists config values the matched endpoints must carry.
type Requirement struct {
	SourceConfig architecture.Config `yaml:"source_config"`
	TargetConfig architecture.Config `yaml:"target_config"`
}

// Rule is one declarative connection rule.
type Rule struct {
	ID             string                `yaml:"id"`
	Description    string                `yaml:"description"`
	Severity       architecture.Severity `yaml:"severity"`
	Condition      Condition             `yaml:"condition"`
	Requirement    Requirement           `yaml:"requirement"`
	Recommendation string                `yaml:"recommendation"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads every *.yaml file in dir, in name order. A missing
// directory yields no rules.
func LoadRules(fsys fs.FS, dir string) ([]Rule, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list rules in %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && (strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var rules []Rule
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read rule file %s: %w", name, err)
		}
		var rf ruleFile
		if err := yaml.Unmarshal(raw, &rf); err != nil {
			return nil, fmt.Errorf("failed to parse rule file %s: %w", name, err)
		}
		for _, r := range rf.Rules {
			if err := r.validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func (r *Rule) validate() error {
	if r.ID == "" {
		return errors.New("rule without id")
	}
	if r.Condition.SourceService == "" || r.Condition.TargetService == "" {
		return fmt.Errorf("rule %s: condition needs source_service and target_service", r.ID)
	}
	for _, p := range []string{r.Condition.SourceService, r.Condition.TargetService} {
		for _, alt := range strings.Split(p, "|") {
			if _, err := path.Match(alt, ""); err != nil {
				return fmt.Errorf("rule %s: bad pattern %q: %w", r.ID, p, err)
			}
		}
	}
	switch r.Severity {
	case "":
		r.Severity = architecture.SeverityWarning
	case architecture.SeverityError, architecture.SeverityWarning, architecture.SeverityInfo:
	default:
		return fmt.Errorf("rule %s: unknown severity %q", r.ID, r.Severity)
	}
	return nil
}

func matchPattern(pattern, value string) bool {
	for _, alt := range strings.Split(pattern, "|") {
		if ok, _ := path.Match(strings.TrimSpace(alt), value); ok {
			return true
		}
	}
	return false
}

func (r *Rule) matches(e architecture.Edge) bool {
	if !matchPattern(r.Condition.SourceService, e.Source.ServiceType) ||
		!matchPattern(r.Condition.TargetService, e.Target.ServiceType) {
		return false
	}
	return r.Condition.ConnectionType == "" || r.Condition.ConnectionType == e.ConnectionType
}

// violated reports whether an endpoint misses a required value.
func (r *Rule) violated(e architecture.Edge) bool {
	return !satisfies(e.Source.Config, r.Requirement.SourceConfig) ||
		!satisfies(e.Target.Config, r.Requirement.TargetConfig)
}

// satisfies compares by variant first, then by canonical string, so a
// rule value of true accepts a config value of "true".
func satisfies(actual, required architecture.Config) bool {
	for key, want := range required {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if !got.Equal(want) && got.AsString() != want.AsString() {
			return false
		}
	}
	return true
}
