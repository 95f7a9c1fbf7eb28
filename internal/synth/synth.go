package synth

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/samber/lo"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/catalog"
	"github.com/sogawa-yk/Galley/internal/util/naming"
)

// Bundle file names.
const (
	FileMain       = "main.tf"
	FileVariables  = "variables.tf"
	FileComponents = "components.tf"
	FileExample    = "terraform.tfvars.example"
)

// injectedVariables are declared in the bootstrap file because
// Resource Manager sets them on every job.
var injectedVariables = []catalog.Variable{
	{Name: "region", Description: "OCI region", Type: "string"},
	{Name: "compartment_ocid", Description: "Compartment OCID", Type: "string"},
	{Name: "tenancy_ocid", Description: "Tenancy OCID", Type: "string"},
}

// Synthesizer renders architectures with one template library.
type Synthesizer struct {
	lib *catalog.Library
}

// New returns a Synthesizer.
func New(lib *catalog.Library) *Synthesizer {
	return &Synthesizer{lib: lib}
}

// Result is a synthesized bundle plus the expanded graph it came from.
type Result struct {
	Bundle      *Bundle
	Expanded    []architecture.Component
	Variables   []catalog.Variable
	DataSources []string
}

// Synthesize renders arch. label identifies the architecture in the
// resources file header. The input graph is not modified.
func (s *Synthesizer) Synthesize(label string, arch *architecture.Architecture) (*Result, error) {
	if arch == nil {
		return nil, fmt.Errorf("nil architecture")
	}

	expanded := Expand(arch.Components)

	names := naming.NewAllocator()
	for _, c := range expanded {
		names.Assign(c.ID, c.DisplayName)
	}
	nameOf := func(id string) string {
		n, _ := names.Lookup(id)
		return n
	}
	refs := BuildReferences(expanded, nameOf, s.lib)

	var (
		blocks      []string
		varNames    []string
		dataSources []string
	)
	for _, c := range expanded {
		cfg := s.lib.Normalize(c.ServiceType, c.Config)
		rendered, err := s.lib.Render(c, nameOf(c.ID), refs.Resolver(c, cfg))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, rendered.Text)
		varNames = append(varNames, rendered.Variables...)
		dataSources = append(dataSources, rendered.DataSources...)
	}

	varNames = lo.Reject(lo.Uniq(varNames), func(v string, _ int) bool { return catalog.IsIdentity(v) })
	dataSources = lo.Uniq(dataSources)

	variables := make([]catalog.Variable, 0, len(varNames))
	for _, name := range varNames {
		v, ok := s.lib.Variable(name)
		if !ok {
			return nil, fmt.Errorf("variable %q has no catalog entry", name)
		}
		variables = append(variables, v)
	}

	components, err := s.renderComponents(label, len(expanded), blocks, dataSources)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{}
	bundle.Add(FileMain, format(renderMain()))
	bundle.Add(FileVariables, format(renderVariables(variables)))
	bundle.Add(FileComponents, components)
	bundle.Add(FileExample, format(renderExample(variables)))

	return &Result{Bundle: bundle, Expanded: expanded, Variables: variables, DataSources: dataSources}, nil
}

func (s *Synthesizer) renderComponents(label string, count int, blocks, dataSources []string) (string, error) {
	var b strings.Builder
	b.WriteString("# Generated Terraform resource definitions\n")
	fmt.Fprintf(&b, "# Architecture: %s\n", strings.ReplaceAll(label, "\n", " "))
	fmt.Fprintf(&b, "# Components: %d\n", count)
	for _, block := range blocks {
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n")
	}
	for _, name := range dataSources {
		ds, ok := s.lib.DataSource(name)
		if !ok {
			return "", fmt.Errorf("data source %q has no catalog entry", name)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(ds.Block, "\n"))
		b.WriteString("\n")
	}
	return format(b.String()), nil
}

func renderMain() string {
	var b strings.Builder
	b.WriteString(`terraform {
  required_providers {
    oci = {
      source  = "oracle/oci"
      version = ">= 5.0"
    }
  }
}

provider "oci" {
  region = var.region
}

# Set by Resource Manager on every job.
`)
	for i, v := range injectedVariables {
		if i > 0 {
			b.WriteString("\n")
		}
		writeVariable(&b, v)
	}
	return b.String()
}

func renderVariables(vars []catalog.Variable) string {
	if len(vars) == 0 {
		return "# No external variables required.\n"
	}
	var b strings.Builder
	for i, v := range vars {
		if i > 0 {
			b.WriteString("\n")
		}
		writeVariable(&b, v)
	}
	return b.String()
}

func writeVariable(b *strings.Builder, v catalog.Variable) {
	fmt.Fprintf(b, "variable %q {\n", v.Name)
	fmt.Fprintf(b, "  description = %s\n", architecture.QuoteHCL(v.Description))
	fmt.Fprintf(b, "  type = %s\n", v.Type)
	if v.Sensitive {
		b.WriteString("  sensitive = true\n")
	}
	b.WriteString("}\n")
}

func renderExample(vars []catalog.Variable) string {
	var b strings.Builder
	b.WriteString("# Terraform variables example\n")
	b.WriteString("# Copy this file to terraform.tfvars and fill in actual values.\n")
	b.WriteString("# Identity variables are provided by Resource Manager.\n")
	for _, v := range vars {
		example := v.Example
		if example == "" {
			example = "ocid1.example"
		}
		fmt.Fprintf(&b, "\n# %s\n%s = %s\n", v.Description, v.Name, architecture.QuoteHCL(example))
	}
	return b.String()
}

// format canonicalizes HCL layout.
func format(src string) string {
	return string(hclwrite.Format([]byte(src)))
}

// DeclaredVariables returns the names of variables declared in a bundle's
// variables file.
func (r *Result) DeclaredVariables() []string {
	return lo.Map(r.Variables, func(v catalog.Variable, _ int) string { return v.Name })
}
