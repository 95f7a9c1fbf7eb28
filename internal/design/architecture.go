package design

import (
	"context"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// SaveArchitecture replaces the session's graph. Temporary component ids
// are replaced with UUIDs and connections follow them.
func (s *Service) SaveArchitecture(ctx context.Context, id string, components []architecture.Component, connections []architecture.Connection) (*architecture.Architecture, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRequirements(sess); err != nil {
		return nil, err
	}

	arch, err := architecture.New(components, connections)
	if err != nil {
		return nil, err
	}
	if sess.Architecture != nil {
		arch.CreatedAt = sess.Architecture.CreatedAt
	}
	sess.Architecture = arch
	if err := s.touch(ctx, sess); err != nil {
		return nil, err
	}
	return arch, nil
}

// AddComponent appends a component, creating the architecture on first
// use.
func (s *Service) AddComponent(ctx context.Context, id, serviceType, displayName string, cfg architecture.Config) (architecture.Component, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return architecture.Component{}, err
	}
	if err := s.requireRequirements(sess); err != nil {
		return architecture.Component{}, err
	}
	if sess.Architecture == nil {
		sess.Architecture = &architecture.Architecture{Components: []architecture.Component{}, Connections: []architecture.Connection{}}
	}

	c, err := sess.Architecture.AddComponent(architecture.Component{
		ServiceType: serviceType,
		DisplayName: displayName,
		Config:      cfg,
	})
	if err != nil {
		return architecture.Component{}, err
	}
	if _, known := s.lib.Service(serviceType); !known {
		s.log.Info("service type has no template; synthesis will emit a placeholder", "type", serviceType)
	}
	if err := s.touch(ctx, sess); err != nil {
		return architecture.Component{}, err
	}
	return c, nil
}

// RemoveComponent deletes a component and its connections.
func (s *Service) RemoveComponent(ctx context.Context, id, componentID string) error {
	sess, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return err
	}
	if err := arch.RemoveComponent(componentID); err != nil {
		return err
	}
	return s.touch(ctx, sess)
}

// ConfigureComponent merges cfg into a component's config.
func (s *Service) ConfigureComponent(ctx context.Context, id, componentID string, cfg architecture.Config) (architecture.Component, error) {
	sess, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return architecture.Component{}, err
	}
	c, err := arch.ConfigureComponent(componentID, cfg)
	if err != nil {
		return architecture.Component{}, err
	}
	if err := s.touch(ctx, sess); err != nil {
		return architecture.Component{}, err
	}
	return c, nil
}

// Connect adds a connection between two existing components.
func (s *Service) Connect(ctx context.Context, id string, conn architecture.Connection) error {
	sess, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return err
	}
	for _, cid := range []string{conn.SourceID, conn.TargetID} {
		if _, ok := arch.Component(cid); !ok {
			return errdefs.NotFound("component", cid)
		}
	}
	arch.Connect(conn)
	return s.touch(ctx, sess)
}

// Validate runs the validator and records the findings on the
// architecture, replacing the previous set.
func (s *Service) Validate(ctx context.Context, id string) ([]architecture.ValidationResult, error) {
	sess, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return nil, err
	}
	results := s.validator.Validate(arch)
	now := s.now()
	arch.ValidationResults = results
	arch.ValidatedAt = &now
	if err := s.touch(ctx, sess); err != nil {
		return nil, err
	}
	return results, nil
}
