package validation

import (
	"fmt"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/catalog"
)

// Validator applies rules and structural checks.
type Validator struct {
	rules  []Rule
	checks []Check
}

// New returns a Validator over rules plus the structural checks.
func New(rules []Rule) *Validator {
	return &Validator{rules: rules, checks: StructuralChecks}
}

// NewFromLibrary loads the rules bundled with a template library.
func NewFromLibrary(lib *catalog.Library) (*Validator, error) {
	rules, err := LoadRules(lib.Rules(), "rules")
	if err != nil {
		return nil, fmt.Errorf("failed to load validation rules: %w", err)
	}
	return New(rules), nil
}

// Rules returns the loaded rules.
func (v *Validator) Rules() []Rule {
	return v.rules
}

// Validate returns every finding for a. It never mutates a.
func (v *Validator) Validate(a *architecture.Architecture) []architecture.ValidationResult {
	results := []architecture.ValidationResult{}
	if a == nil {
		return results
	}

	edges := a.ResolvedConnections()
	for i := range v.rules {
		rule := &v.rules[i]
		for _, e := range edges {
			if !rule.matches(e) || !rule.violated(e) {
				continue
			}
			results = append(results, architecture.ValidationResult{
				RuleID:             rule.ID,
				Severity:           rule.Severity,
				Message:            rule.Description,
				AffectedComponents: []string{e.SourceID, e.TargetID},
				Recommendation:     rule.Recommendation,
			})
		}
	}

	for _, check := range v.checks {
		results = append(results, check(a)...)
	}
	return results
}
