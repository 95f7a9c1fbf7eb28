package testing

import (
	"slices"

	"github.com/sogawa-yk/Galley/internal/architecture"
)

// ArchitectureBuilder provides a fluent interface for constructing test graphs.
// Each method returns a new builder (immutable) for chaining.
type ArchitectureBuilder struct {
	components  []architecture.Component
	connections []architecture.Connection
}

// NewArchitectureBuilder creates an empty builder.
func NewArchitectureBuilder() *ArchitectureBuilder {
	return &ArchitectureBuilder{}
}

// WithComponent appends a component. A nil config is stored as an empty map.
func (b *ArchitectureBuilder) WithComponent(id, serviceType, displayName string, cfg architecture.Config) *ArchitectureBuilder {
	nb := b.clone()
	if cfg == nil {
		cfg = architecture.Config{}
	}
	nb.components = append(nb.components, architecture.Component{
		ID:          id,
		ServiceType: serviceType,
		DisplayName: displayName,
		Config:      cfg.Clone(),
	})
	return nb
}

// WithConnection appends a connection.
func (b *ArchitectureBuilder) WithConnection(sourceID, targetID, connectionType string) *ArchitectureBuilder {
	nb := b.clone()
	nb.connections = append(nb.connections, architecture.Connection{
		SourceID:       sourceID,
		TargetID:       targetID,
		ConnectionType: connectionType,
	})
	return nb
}

// Components returns a copy of the components added so far.
func (b *ArchitectureBuilder) Components() []architecture.Component {
	return slices.Clone(b.components)
}

// Connections returns a copy of the connections added so far.
func (b *ArchitectureBuilder) Connections() []architecture.Connection {
	return slices.Clone(b.connections)
}

// Build returns the architecture.
func (b *ArchitectureBuilder) Build() *architecture.Architecture {
	return &architecture.Architecture{
		Components:  b.Components(),
		Connections: b.Connections(),
	}
}

func (b *ArchitectureBuilder) clone() *ArchitectureBuilder {
	return &ArchitectureBuilder{
		components:  slices.Clone(b.components),
		connections: slices.Clone(b.connections),
	}
}

// NetworkedCompute returns a VCN with one compute instance and no plumbing.
func NetworkedCompute() *ArchitectureBuilder {
	return NewArchitectureBuilder().
		WithComponent("net", "vcn", "main", nil).
		WithComponent("web", "compute", "Web Server", nil)
}

// PublicDatabaseBehindOKE returns an OKE cluster reaching an autonomous
// database with a public endpoint over a public connection.
func PublicDatabaseBehindOKE() *ArchitectureBuilder {
	return NewArchitectureBuilder().
		WithComponent("k8s", "oke", "cluster", nil).
		WithComponent("db", "adb", "orders", architecture.Config{"endpoint_type": architecture.String("public")}).
		WithConnection("k8s", "db", architecture.ConnectionPublic)
}
