package catalog

import (
	"slices"
	"strings"

	"github.com/sogawa-yk/Galley/internal/architecture"
)

// IdentityVariables are injected by Resource Manager at run time and are
// never declared as user variables.
var IdentityVariables = []string{"region", "compartment_ocid", "tenancy_ocid", "current_user_ocid"}

// IsIdentity reports whether name is an identity variable.
func IsIdentity(name string) bool {
	return slices.Contains(IdentityVariables, name)
}

// Remap rewrites one field of one service type into the vocabulary the
// provider API accepts.
type Remap struct {
	ServiceType string
	Field       string
	Apply       func(architecture.Value) architecture.Value
}

var remaps = []Remap{
	{ServiceType: "apigateway", Field: "endpoint_type", Apply: upper},
	{ServiceType: "adb", Field: "workload_type", Apply: mapping(map[string]string{"ATP": "OLTP", "ADW": "DW"})},
	{ServiceType: "security_list", Field: "ingress_port", Apply: minPort(22)},
	{ServiceType: "objectstorage", Field: "versioning", Apply: enabledDisabled},
}

// Remaps returns the remap table.
func Remaps() []Remap {
	return slices.Clone(remaps)
}

func upper(v architecture.Value) architecture.Value {
	return architecture.String(strings.ToUpper(v.AsString()))
}

func mapping(m map[string]string) func(architecture.Value) architecture.Value {
	return func(v architecture.Value) architecture.Value {
		if out, ok := m[strings.ToUpper(v.AsString())]; ok {
			return architecture.String(out)
		}
		return v
	}
}

func minPort(fallback int) func(architecture.Value) architecture.Value {
	return func(v architecture.Value) architecture.Value {
		n, ok := v.AsNumber()
		if !ok || n <= 0 {
			return architecture.Int(fallback)
		}
		return architecture.Int(int(n))
	}
}

// enabledDisabled accepts a boolean for object storage versioning.
func enabledDisabled(v architecture.Value) architecture.Value {
	if v.Kind() == architecture.KindBool {
		if v.Truthy() {
			return architecture.String("Enabled")
		}
		return architecture.String("Disabled")
	}
	return v
}

// Normalize overlays cfg on the service defaults and applies the remap
// table. Unknown service types return a copy of cfg.
func (l *Library) Normalize(serviceType string, cfg architecture.Config) architecture.Config {
	out := architecture.Config{}
	if svc, ok := l.services[serviceType]; ok {
		out = svc.Defaults.Clone()
	}
	out = out.Merge(cfg)
	for _, r := range remaps {
		if r.ServiceType != serviceType {
			continue
		}
		if v, ok := out[r.Field]; ok {
			out[r.Field] = r.Apply(v)
		}
	}
	return out
}
