package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/util/naming"
)

const (
	RuleNaming    = "naming-convention"
	RulePlacement = "public-resource-private-subnet"
	RuleCIDR      = "invalid-cidr"
)

// Check is a structural check over the whole graph.
type Check func(a *architecture.Architecture) []architecture.ValidationResult

// StructuralChecks run after the declarative rules, in this order.
var StructuralChecks = []Check{checkNaming, checkPlacement, checkCIDR}

type namePolicy struct {
	pattern *regexp.Regexp
	allowed string
}

// Service types whose API rejects names outside a narrow character set.
var namePolicies = map[string]namePolicy{
	"nosql":         {regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`), "letters, digits and underscores, starting with a letter"},
	"objectstorage": {regexp.MustCompile(`^[A-Za-z0-9_.-]+$`), "letters, digits, hyphens, underscores and periods"},
	"streaming":     {regexp.MustCompile(`^[A-Za-z0-9_.-]+$`), "letters, digits, hyphens, underscores and periods"},
}

func checkNaming(a *architecture.Architecture) []architecture.ValidationResult {
	var out []architecture.ValidationResult
	for _, c := range a.Components {
		policy, ok := namePolicies[c.ServiceType]
		if !ok || policy.pattern.MatchString(c.DisplayName) {
			continue
		}
		out = append(out, architecture.ValidationResult{
			RuleID:   RuleNaming,
			Severity: architecture.SeverityWarning,
			Message: fmt.Sprintf("%s name %q contains characters the service does not accept (allowed: %s)",
				c.ServiceType, c.DisplayName, policy.allowed),
			AffectedComponents: []string{c.ID},
			Recommendation:     fmt.Sprintf("Rename it, for example to %q.", naming.Identifier(c.DisplayName)),
		})
	}
	return out
}

// publicByDefault maps service types that get a public endpoint unless
// their config marks them private.
var publicByDefault = map[string]func(architecture.Config) bool{
	"loadbalancer": func(c architecture.Config) bool { return c.Bool("is_private") },
	"apigateway": func(c architecture.Config) bool {
		return strings.EqualFold(c.String("endpoint_type"), "PRIVATE")
	},
}

func checkPlacement(a *architecture.Architecture) []architecture.ValidationResult {
	var out []architecture.ValidationResult
	for _, e := range a.ResolvedConnections() {
		if e.ConnectionType != architecture.ConnectionDeployedIn || e.Target.ServiceType != "subnet" {
			continue
		}
		isPrivate, ok := publicByDefault[e.Source.ServiceType]
		if !ok || isPrivate(e.Source.Config) || !e.Target.Config.Bool("prohibit_public_ip") {
			continue
		}
		out = append(out, architecture.ValidationResult{
			RuleID:   RulePlacement,
			Severity: architecture.SeverityError,
			Message: fmt.Sprintf("public %s %q is deployed in private subnet %q",
				e.Source.ServiceType, e.Source.DisplayName, e.Target.DisplayName),
			AffectedComponents: []string{e.SourceID, e.TargetID},
			Recommendation:     "Deploy it in a public subnet or configure it as private.",
		})
	}
	return out
}

func checkCIDR(a *architecture.Architecture) []architecture.ValidationResult {
	var out []architecture.ValidationResult
	for _, c := range a.Components {
		if c.ServiceType != "vcn" && c.ServiceType != "subnet" {
			continue
		}
		v, ok := c.Config.Get("cidr_block")
		if !ok || govalidator.IsCIDR(v.AsString()) {
			continue
		}
		out = append(out, architecture.ValidationResult{
			RuleID:             RuleCIDR,
			Severity:           architecture.SeverityError,
			Message:            fmt.Sprintf("%s %q has invalid cidr_block %q", c.ServiceType, c.DisplayName, v.AsString()),
			AffectedComponents: []string{c.ID},
			Recommendation:     "Use an IPv4 CIDR such as 10.0.0.0/16.",
		})
	}
	return out
}
