package design

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/session"
)

func TestRenderMermaidCollisionSafeIDs(t *testing.T) {
	t.Parallel()

	arch := &architecture.Architecture{
		Components: []architecture.Component{
			{ID: "a", ServiceType: "compute", DisplayName: "Web App"},
			{ID: "b", ServiceType: "compute", DisplayName: "web-app"},
			{ID: "c", ServiceType: "adb", DisplayName: `The "DB"`},
		},
		Connections: []architecture.Connection{
			{SourceID: "a", TargetID: "c", ConnectionType: "private"},
			{SourceID: "b", TargetID: "missing-node"},
		},
	}

	assert.Equal(t, strings.Join([]string{
		"graph TB",
		`    web_app["Web App<br/>(compute)"]`,
		`    web_app_1["web-app<br/>(compute)"]`,
		`    the_db["The #quot;DB#quot;<br/>(adb)"]`,
		`    web_app -->|"private"| the_db`,
		`    web_app_1 -->|"connects"| missing_node`,
	}, "\n"), renderMermaid(arch))
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	sess := &session.Session{
		ID:           "s1",
		Requirements: session.Requirements{Complete: true, Summary: "A small web service."},
		Architecture: &architecture.Architecture{
			Components: []architecture.Component{
				{ID: "v", ServiceType: "vcn", DisplayName: "main", Config: architecture.Config{
					"cidr_block": architecture.String("10.0.0.0/16"),
					"dns_label":  architecture.String("main"),
				}},
				{ID: "c", ServiceType: "compute", DisplayName: "web|1"},
			},
			Connections: []architecture.Connection{
				{SourceID: "c", TargetID: "v", ConnectionType: "deployed_in", Description: "runs in"},
			},
		},
	}

	got := renderSummary(sess)
	assert.Contains(t, got, "## Requirements\n\nA small web service.\n")
	assert.Contains(t, got, "| main | vcn | cidr_block=10.0.0.0/16, dns_label=main |\n")
	assert.Contains(t, got, `| web\|1 | compute | - |`)
	assert.Contains(t, got, "- web|1 → main (deployed_in): runs in\n")
	assert.NotContains(t, got, "## Validation")
}
