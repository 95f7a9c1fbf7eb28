package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/sogawa-yk/Galley/internal/architecture"
)

//go:embed services.yaml placeholder.tmpl templates/*.tf.tmpl rules/*.yaml
var embedded embed.FS

// Variable describes an externally supplied Terraform input variable.
type Variable struct {
	Name        string `yaml:"-" json:"name"`
	Description string `yaml:"description" json:"description"`
	Type        string `yaml:"type" json:"type"`
	Sensitive   bool   `yaml:"sensitive" json:"sensitive,omitempty"`
	Example     string `yaml:"example" json:"example,omitempty"`
}

// DataSource is a Terraform data block shared between resources.
type DataSource struct {
	Name    string `yaml:"-"`
	Address string `yaml:"address"`
	Block   string `yaml:"block"`
}

// Service is one entry of the template library.
type Service struct {
	Type              string              `yaml:"type" json:"type"`
	DisplayName       string              `yaml:"display_name" json:"display_name"`
	Category          string              `yaml:"category" json:"category"`
	Description       string              `yaml:"description" json:"description"`
	Defaults          architecture.Config `yaml:"defaults" json:"defaults,omitempty"`
	RequiredVariables []string            `yaml:"required_variables" json:"required_variables,omitempty"`
	DataSources       []string            `yaml:"data_sources" json:"data_sources,omitempty"`

	tmpl *template.Template
}

// Requires reports whether the service declares variable name.
func (s *Service) Requires(name string) bool {
	return slices.Contains(s.RequiredVariables, name)
}

// Uses reports whether the service declares data source name.
func (s *Service) Uses(name string) bool {
	return slices.Contains(s.DataSources, name)
}

type document struct {
	Variables   map[string]Variable   `yaml:"variables"`
	DataSources map[string]DataSource `yaml:"data_sources"`
	Services    []*Service            `yaml:"services"`
}

// Library is the loaded template library.
type Library struct {
	services    map[string]*Service
	order       []string
	variables   map[string]Variable
	dataSources map[string]DataSource
	placeholder *template.Template
	rules       fs.FS
}

var defaultLibrary = sync.OnceValues(func() (*Library, error) {
	return Load(embedded)
})

// Default returns the embedded library. It is parsed on first use and
// cached for the life of the process.
func Default() (*Library, error) {
	return defaultLibrary()
}

// Load parses a library from fsys, which must contain services.yaml,
// placeholder.tmpl and templates/<type>.tf.tmpl for each service.
func Load(fsys fs.FS) (*Library, error) {
	raw, err := fs.ReadFile(fsys, "services.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read service catalog: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse service catalog: %w", err)
	}

	lib := &Library{
		services:    make(map[string]*Service, len(doc.Services)),
		variables:   make(map[string]Variable, len(doc.Variables)),
		dataSources: make(map[string]DataSource, len(doc.DataSources)),
		rules:       fsys,
	}

	for name, v := range doc.Variables {
		v.Name = name
		if v.Type == "" {
			v.Type = "string"
		}
		lib.variables[name] = v
	}
	for name, ds := range doc.DataSources {
		ds.Name = name
		lib.dataSources[name] = ds
	}

	placeholder, err := parseTemplate(fsys, "placeholder.tmpl")
	if err != nil {
		return nil, err
	}
	lib.placeholder = placeholder

	for _, svc := range doc.Services {
		if err := lib.addService(fsys, svc); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

func (l *Library) addService(fsys fs.FS, svc *Service) error {
	if svc.Type == "" {
		return fmt.Errorf("service catalog entry without type")
	}
	if _, dup := l.services[svc.Type]; dup {
		return fmt.Errorf("duplicate service type %q", svc.Type)
	}
	for _, v := range svc.RequiredVariables {
		if _, ok := l.variables[v]; !ok {
			return fmt.Errorf("service %s requires undeclared variable %q", svc.Type, v)
		}
		if IsIdentity(v) {
			return fmt.Errorf("service %s must not require identity variable %q", svc.Type, v)
		}
	}
	for _, ds := range svc.DataSources {
		if _, ok := l.dataSources[ds]; !ok {
			return fmt.Errorf("service %s uses undeclared data source %q", svc.Type, ds)
		}
	}
	if svc.Defaults == nil {
		svc.Defaults = architecture.Config{}
	}

	tmpl, err := parseTemplate(fsys, "templates/"+svc.Type+".tf.tmpl")
	if err != nil {
		return err
	}
	svc.tmpl = tmpl

	l.services[svc.Type] = svc
	l.order = append(l.order, svc.Type)
	return nil
}

func parseTemplate(fsys fs.FS, path string) (*template.Template, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	tmpl, err := template.New(path).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	return tmpl, nil
}

// Service returns the entry for a service type.
func (l *Library) Service(serviceType string) (*Service, bool) {
	s, ok := l.services[serviceType]
	return s, ok
}

// Services returns all entries in catalog order.
func (l *Library) Services() []*Service {
	out := make([]*Service, 0, len(l.order))
	for _, t := range l.order {
		out = append(out, l.services[t])
	}
	return out
}

// Variable returns the metadata of a declared variable.
func (l *Library) Variable(name string) (Variable, bool) {
	v, ok := l.variables[name]
	return v, ok
}

// DataSource returns a declared data source.
func (l *Library) DataSource(name string) (DataSource, bool) {
	ds, ok := l.dataSources[name]
	return ds, ok
}

// Rules returns the file system holding rules/*.yaml.
func (l *Library) Rules() fs.FS {
	return l.rules
}

// Template returns the code template of a service type, or the commented
// placeholder when the type has no entry.
func (l *Library) Template(serviceType string) (*template.Template, bool) {
	if s, ok := l.services[serviceType]; ok {
		return s.tmpl, true
	}
	return l.placeholder, false
}
