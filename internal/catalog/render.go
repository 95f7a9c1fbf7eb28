package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/util/naming"
)

// ResolveFunc maps a required variable to a local reference expression.
// It returns false when the variable must stay external.
type ResolveFunc func(variable string) (string, bool)

// Rendered is the output of one component template.
type Rendered struct {
	Text        string
	Variables   []string // unresolved variables referenced, in first-use order
	DataSources []string // data sources referenced, in first-use order
}

// Instance is the value templates execute against.
type Instance struct {
	Name        string
	DisplayName string
	ServiceType string
	TypeIdent   string
	Config      architecture.Config

	svc       *Service
	lib       *Library
	resolve   ResolveFunc
	variables []string
	data      []string
}

// Display returns the quoted display name.
func (i *Instance) Display() string {
	return architecture.QuoteHCL(i.DisplayName)
}

// Quote returns s as an HCL string literal.
func (i *Instance) Quote(s string) string {
	return architecture.QuoteHCL(s)
}

// Str renders a parameter as a quoted string regardless of its variant.
func (i *Instance) Str(key string) string {
	return architecture.QuoteHCL(i.Config.String(key))
}

// Lit renders a parameter as an HCL literal: bools and numbers bare.
func (i *Instance) Lit(key string) string {
	v, ok := i.Config[key]
	if !ok {
		return "null"
	}
	return v.HCL()
}

// Flag reports whether a parameter is truthy.
func (i *Instance) Flag(key string) bool {
	return i.Config.Bool(key)
}

// Ref returns the local reference for a required variable or var.<name>.
func (i *Instance) Ref(variable string) (string, error) {
	if i.svc != nil && !i.svc.Requires(variable) {
		return "", fmt.Errorf("template for %s references undeclared variable %q", i.ServiceType, variable)
	}
	if i.resolve != nil {
		if ref, ok := i.resolve(variable); ok {
			return ref, nil
		}
	}
	if !slices.Contains(i.variables, variable) {
		i.variables = append(i.variables, variable)
	}
	return "var." + variable, nil
}

// Data returns the address of a data source and records its use.
func (i *Instance) Data(name string) (string, error) {
	if i.svc != nil && !i.svc.Uses(name) {
		return "", fmt.Errorf("template for %s references undeclared data source %q", i.ServiceType, name)
	}
	ds, ok := i.lib.dataSources[name]
	if !ok {
		return "", fmt.Errorf("unknown data source %q", name)
	}
	if !slices.Contains(i.data, name) {
		i.data = append(i.data, name)
	}
	return ds.Address, nil
}

// Render normalizes the component's parameters and executes its template.
// Components without a template render as a commented placeholder.
func (l *Library) Render(c architecture.Component, name string, resolve ResolveFunc) (Rendered, error) {
	tmpl, known := l.Template(c.ServiceType)
	inst := &Instance{
		Name:        name,
		DisplayName: c.DisplayName,
		ServiceType: c.ServiceType,
		TypeIdent:   naming.Identifier(c.ServiceType),
		Config:      l.Normalize(c.ServiceType, c.Config),
		lib:         l,
		resolve:     resolve,
	}
	if known {
		inst.svc = l.services[c.ServiceType]
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, inst); err != nil {
		return Rendered{}, fmt.Errorf("failed to render %s %q: %w", c.ServiceType, c.DisplayName, err)
	}

	return Rendered{
		Text:        strings.TrimRight(b.String(), "\n"),
		Variables:   inst.variables,
		DataSources: inst.data,
	}, nil
}
