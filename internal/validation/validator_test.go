package validation

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/catalog"
	galleytest "github.com/sogawa-yk/Galley/internal/testing"
)

func defaultValidator(t *testing.T) *Validator {
	t.Helper()
	lib, err := catalog.Default()
	require.NoError(t, err)
	v, err := NewFromLibrary(lib)
	require.NoError(t, err)
	return v
}

func errorsOnly(results []architecture.ValidationResult) []architecture.ValidationResult {
	var out []architecture.ValidationResult
	for _, r := range results {
		if r.Severity == architecture.SeverityError {
			out = append(out, r)
		}
	}
	return out
}

func TestValidateEmptyArchitecture(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	assert.Empty(t, v.Validate(&architecture.Architecture{}))
	assert.NotNil(t, v.Validate(nil))
}

func TestValidatePublicDatabaseFromCluster(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "oke-1", ServiceType: "oke", DisplayName: "OKE"},
			{ID: "adb-1", ServiceType: "adb", DisplayName: "ADB", Config: architecture.Config{"endpoint_type": architecture.String("public")}},
		},
		Connections: []architecture.Connection{{SourceID: "oke-1", TargetID: "adb-1", ConnectionType: "public"}},
	}

	errs := errorsOnly(v.Validate(arch))
	require.Len(t, errs, 1)
	assert.Equal(t, "oke-adb-private-endpoint", errs[0].RuleID)
	assert.Equal(t, []string{"oke-1", "adb-1"}, errs[0].AffectedComponents)
	assert.NotEmpty(t, errs[0].Recommendation)
}

func TestValidateBuiltScenario(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	errs := errorsOnly(v.Validate(galleytest.PublicDatabaseBehindOKE().Build()))
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"k8s", "db"}, errs[0].AffectedComponents)

	assert.Empty(t, errorsOnly(v.Validate(galleytest.NetworkedCompute().Build())))
}

func TestValidatePrivateDatabaseFromCluster(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "oke-1", ServiceType: "oke", DisplayName: "OKE"},
			{ID: "adb-1", ServiceType: "adb", DisplayName: "ADB", Config: architecture.Config{"endpoint_type": architecture.String("private")}},
		},
		Connections: []architecture.Connection{{SourceID: "oke-1", TargetID: "adb-1", ConnectionType: "private_endpoint"}},
	}

	assert.Empty(t, errorsOnly(v.Validate(arch)))
}

func TestValidateIgnoresDanglingConnections(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	arch := &architecture.Architecture{
		Components:  []architecture.Component{{ID: "oke-1", ServiceType: "oke", DisplayName: "OKE"}},
		Connections: []architecture.Connection{{SourceID: "oke-1", TargetID: "gone"}},
	}
	assert.Empty(t, v.Validate(arch))
}

func TestValidateNamingConvention(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "n1", ServiceType: "nosql", DisplayName: "IoT Session Store"},
			{ID: "n2", ServiceType: "nosql", DisplayName: "iot_session_store"},
			{ID: "c1", ServiceType: "compute", DisplayName: "Any name at all!"},
		},
	}

	results := v.Validate(arch)
	require.Len(t, results, 1)
	assert.Equal(t, RuleNaming, results[0].RuleID)
	assert.Equal(t, architecture.SeverityWarning, results[0].Severity)
	assert.Contains(t, results[0].Message, "IoT Session Store")
	assert.Equal(t, []string{"n1"}, results[0].AffectedComponents)
}

func TestValidatePublicResourceInPrivateSubnet(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	tests := []struct {
		name     string
		source   architecture.Component
		prohibit architecture.Value
		want     int
	}{
		{
			name:     "public lb in private subnet",
			source:   architecture.Component{ID: "lb-1", ServiceType: "loadbalancer", DisplayName: "Public LB", Config: architecture.Config{"is_private": architecture.String("false")}},
			prohibit: architecture.String("true"),
			want:     1,
		},
		{
			name:     "private lb in private subnet",
			source:   architecture.Component{ID: "lb-1", ServiceType: "loadbalancer", DisplayName: "LB", Config: architecture.Config{"is_private": architecture.Bool(true)}},
			prohibit: architecture.Bool(true),
		},
		{
			name:     "public gateway in public subnet",
			source:   architecture.Component{ID: "gw", ServiceType: "apigateway", DisplayName: "GW"},
			prohibit: architecture.Bool(false),
		},
		{
			name:     "private gateway in private subnet",
			source:   architecture.Component{ID: "gw", ServiceType: "apigateway", DisplayName: "GW", Config: architecture.Config{"endpoint_type": architecture.String("private")}},
			prohibit: architecture.Bool(true),
		},
		{
			name:     "compute is not public by default",
			source:   architecture.Component{ID: "vm", ServiceType: "compute", DisplayName: "VM"},
			prohibit: architecture.Bool(true),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			arch := &architecture.Architecture{
				Components: []architecture.Component{
					tt.source,
					{ID: "subnet-1", ServiceType: "subnet", DisplayName: "Private Subnet", Config: architecture.Config{"prohibit_public_ip": tt.prohibit}},
				},
				Connections: []architecture.Connection{{SourceID: tt.source.ID, TargetID: "subnet-1", ConnectionType: architecture.ConnectionDeployedIn}},
			}
			var placement []architecture.ValidationResult
			for _, r := range v.Validate(arch) {
				if r.RuleID == RulePlacement {
					placement = append(placement, r)
				}
			}
			assert.Len(t, placement, tt.want)
		})
	}
}

func TestValidateCIDR(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "v", ServiceType: "vcn", DisplayName: "VCN", Config: architecture.Config{"cidr_block": architecture.String("10.0.0.0/33")}},
			{ID: "s", ServiceType: "subnet", DisplayName: "Subnet", Config: architecture.Config{"cidr_block": architecture.String("10.0.1.0/24")}},
		},
	}

	results := v.Validate(arch)
	require.Len(t, results, 1)
	assert.Equal(t, RuleCIDR, results[0].RuleID)
	assert.Equal(t, []string{"v"}, results[0].AffectedComponents)
}

func TestValidateIsDeterministic(t *testing.T) {
	t.Parallel()
	v := defaultValidator(t)

	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "oke-1", ServiceType: "oke", DisplayName: "OKE"},
			{ID: "vm", ServiceType: "compute", DisplayName: "VM"},
			{ID: "adb-1", ServiceType: "adb", DisplayName: "ADB"},
			{ID: "t1", ServiceType: "nosql", DisplayName: "bad name"},
		},
		Connections: []architecture.Connection{
			{SourceID: "vm", TargetID: "adb-1"},
			{SourceID: "oke-1", TargetID: "adb-1"},
		},
	}

	first := v.Validate(arch)
	for range 5 {
		assert.Equal(t, first, v.Validate(arch))
	}
	require.Len(t, first, 3)
	assert.Equal(t, "oke-adb-private-endpoint", first[0].RuleID)
	assert.Equal(t, "compute-adb-private-endpoint", first[1].RuleID)
	assert.Equal(t, RuleNaming, first[2].RuleID)
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"validation-rules/b.yaml": {Data: []byte(`
rules:
  - id: second
    condition: {source_service: "*", target_service: "adb|nosql"}
    requirement:
      source_config: {is_private: true}
`)},
		"validation-rules/a.yaml": {Data: []byte(`
rules:
  - id: first
    severity: info
    condition: {source_service: oke, target_service: adb, connection_type: private}
`)},
		"validation-rules/readme.txt": {Data: []byte("ignored")},
	}

	rules, err := LoadRules(fsys, "validation-rules")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "first", rules[0].ID)
	assert.Equal(t, architecture.SeverityWarning, rules[1].Severity, "severity defaults to warning")

	v := New(rules)
	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "a", ServiceType: "compute", Config: architecture.Config{"is_private": architecture.String("true")}},
			{ID: "b", ServiceType: "nosql"},
			{ID: "c", ServiceType: "loadbalancer"},
		},
		Connections: []architecture.Connection{{SourceID: "a", TargetID: "b"}, {SourceID: "c", TargetID: "b"}},
	}
	var second []architecture.ValidationResult
	for _, r := range v.Validate(arch) {
		if r.RuleID == "second" {
			second = append(second, r)
		}
	}
	require.Len(t, second, 1, "string \"true\" satisfies a boolean requirement")
	assert.Equal(t, []string{"c", "b"}, second[0].AffectedComponents)

	none, err := LoadRules(fsys, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoadRulesRejectsBadSeverity(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"r/x.yaml": {Data: []byte("rules:\n  - id: x\n    severity: fatal\n    condition: {source_service: a, target_service: b}\n")}}
	_, err := LoadRules(fsys, "r")
	assert.ErrorContains(t, err, "unknown severity")
}
