package architecture

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// New returns an architecture built from components and connections.
// Component ids that are not UUIDs are treated as temporary: each is
// replaced by a fresh UUID and connections are rewritten to match.
// A repeated non-empty id is rejected.
func New(components []Component, connections []Connection) (*Architecture, error) {
	remap := make(map[string]string, len(components))
	seen := make(map[string]struct{}, len(components))
	out := make([]Component, 0, len(components))
	for _, c := range components {
		if c.ID != "" {
			if _, dup := seen[c.ID]; dup {
				return nil, errdefs.InvalidInput("duplicate component id %q", c.ID)
			}
			seen[c.ID] = struct{}{}
		}
		if _, err := uuid.Parse(c.ID); err != nil {
			id := uuid.NewString()
			if c.ID != "" {
				remap[c.ID] = id
			}
			c.ID = id
		}
		c.Config = c.Config.Clone()
		out = append(out, c)
	}

	conns := lo.Map(connections, func(conn Connection, _ int) Connection {
		if id, ok := remap[conn.SourceID]; ok {
			conn.SourceID = id
		}
		if id, ok := remap[conn.TargetID]; ok {
			conn.TargetID = id
		}
		return conn
	})

	return &Architecture{Components: out, Connections: conns}, nil
}

// Component returns the component with the given id.
func (a *Architecture) Component(id string) (*Component, bool) {
	for i := range a.Components {
		if a.Components[i].ID == id {
			return &a.Components[i], true
		}
	}
	return nil, false
}

// ComponentsOfType returns the components of one service type in declaration order.
func (a *Architecture) ComponentsOfType(serviceType string) []Component {
	return lo.Filter(a.Components, func(c Component, _ int) bool {
		return c.ServiceType == serviceType
	})
}

// AddComponent appends c, assigning a UUID when c has no id.
func (a *Architecture) AddComponent(c Component) (Component, error) {
	if c.ServiceType == "" {
		return Component{}, errdefs.InvalidInput("component service_type is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := a.Component(c.ID); exists {
		return Component{}, errdefs.InvalidInput("component id %s already exists", c.ID)
	}
	if c.DisplayName == "" {
		c.DisplayName = c.ServiceType
	}
	c.Config = c.Config.Clone()
	a.Components = append(a.Components, c)
	return c, nil
}

// RemoveComponent deletes a component and every connection touching it.
func (a *Architecture) RemoveComponent(id string) error {
	if _, ok := a.Component(id); !ok {
		return errdefs.NotFound("component", id)
	}
	a.Components = lo.Reject(a.Components, func(c Component, _ int) bool {
		return c.ID == id
	})
	a.Connections = lo.Reject(a.Connections, func(c Connection, _ int) bool {
		return c.SourceID == id || c.TargetID == id
	})
	return nil
}

// ConfigureComponent merges updates into the component's config.
func (a *Architecture) ConfigureComponent(id string, updates Config) (Component, error) {
	c, ok := a.Component(id)
	if !ok {
		return Component{}, errdefs.NotFound("component", id)
	}
	c.Config = c.Config.Merge(updates)
	return *c, nil
}

// Connect appends a connection.
func (a *Architecture) Connect(conn Connection) {
	a.Connections = append(a.Connections, conn)
}

// ResolvedConnections returns the connections whose endpoints both exist,
// paired with their endpoint components.
func (a *Architecture) ResolvedConnections() []Edge {
	byID := lo.KeyBy(a.Components, func(c Component) string { return c.ID })
	var edges []Edge
	for _, conn := range a.Connections {
		src, okS := byID[conn.SourceID]
		dst, okT := byID[conn.TargetID]
		if !okS || !okT {
			continue
		}
		edges = append(edges, Edge{Connection: conn, Source: src, Target: dst})
	}
	return edges
}

// Edge is a connection with both endpoints resolved.
type Edge struct {
	Connection
	Source Component
	Target Component
}

// Clone returns a deep copy.
func (a *Architecture) Clone() *Architecture {
	if a == nil {
		return nil
	}
	out := &Architecture{
		Components:        make([]Component, len(a.Components)),
		Connections:       append([]Connection(nil), a.Connections...),
		ValidationResults: append([]ValidationResult(nil), a.ValidationResults...),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	for i, c := range a.Components {
		c.Config = c.Config.Clone()
		out.Components[i] = c
	}
	if a.ValidatedAt != nil {
		t := *a.ValidatedAt
		out.ValidatedAt = &t
	}
	return out
}
