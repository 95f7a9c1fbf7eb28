package design

import (
	"context"
	"fmt"
	"strings"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/session"
	"github.com/sogawa-yk/Galley/internal/util/naming"
)

// Export is every artifact of a session.
type Export struct {
	Summary string `json:"summary"`
	Mermaid string `json:"mermaid"`
	*Synthesis
}

// Summary renders the session as Markdown.
func (s *Service) Summary(ctx context.Context, id string) (string, error) {
	sess, _, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return "", err
	}
	return renderSummary(sess), nil
}

// Mermaid renders the architecture as a Mermaid flowchart.
func (s *Service) Mermaid(ctx context.Context, id string) (string, error) {
	_, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return "", err
	}
	return renderMermaid(arch), nil
}

// ExportAll returns the summary, the diagram and the bundle. The bundle is
// read from disk so hand edits are kept.
func (s *Service) ExportAll(ctx context.Context, id string) (*Export, error) {
	sess, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return nil, err
	}
	bundle, err := s.Bundle(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Export{
		Summary:   renderSummary(sess),
		Mermaid:   renderMermaid(arch),
		Synthesis: bundle,
	}, nil
}

func renderSummary(sess *session.Session) string {
	arch := sess.Architecture
	var b strings.Builder
	b.WriteString("# Architecture Summary\n\n")

	if sess.Requirements.Summary != "" {
		b.WriteString("## Requirements\n\n")
		b.WriteString(sess.Requirements.Summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Components\n\n")
	b.WriteString("| Component | Service Type | Config |\n")
	b.WriteString("|---|---|---|\n")
	for _, c := range arch.Components {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(c.DisplayName), c.ServiceType, cell(configString(c.Config)))
	}

	if len(arch.Connections) > 0 {
		b.WriteString("\n## Connections\n\n")
		for _, conn := range arch.Connections {
			fmt.Fprintf(&b, "- %s → %s (%s)", displayName(arch, conn.SourceID), displayName(arch, conn.TargetID), conn.ConnectionType)
			if conn.Description != "" {
				fmt.Fprintf(&b, ": %s", conn.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(arch.ValidationResults) > 0 {
		b.WriteString("\n## Validation\n\n")
		for _, r := range arch.ValidationResults {
			fmt.Fprintf(&b, "- **%s** `%s`: %s\n", r.Severity, r.RuleID, r.Message)
		}
	}
	return b.String()
}

func configString(cfg architecture.Config) string {
	if len(cfg) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(cfg))
	for _, k := range cfg.Keys() {
		parts = append(parts, k+"="+cfg.String(k))
	}
	return strings.Join(parts, ", ")
}

// cell keeps a value from breaking the table row.
func cell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func displayName(arch *architecture.Architecture, id string) string {
	if c, ok := arch.Component(id); ok {
		return c.DisplayName
	}
	return id
}

func renderMermaid(arch *architecture.Architecture) string {
	ids := naming.NewAllocator()
	for _, c := range arch.Components {
		ids.Assign(c.ID, c.DisplayName)
	}
	nodeID := func(id string) string {
		if n, ok := ids.Lookup(id); ok {
			return n
		}
		return naming.Identifier(id)
	}

	lines := []string{"graph TB"}
	for _, c := range arch.Components {
		lines = append(lines, fmt.Sprintf(`    %s["%s<br/>(%s)"]`, nodeID(c.ID), mermaidLabel(c.DisplayName), c.ServiceType))
	}
	for _, conn := range arch.Connections {
		label := conn.ConnectionType
		if label == "" {
			label = "connects"
		}
		lines = append(lines, fmt.Sprintf(`    %s -->|"%s"| %s`, nodeID(conn.SourceID), mermaidLabel(label), nodeID(conn.TargetID)))
	}
	return strings.Join(lines, "\n")
}

func mermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
