// Package design holds the session-level operations behind the CLI:
// requirements gating, graph edits, validation, synthesis and export.
package design

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/catalog"
	"github.com/sogawa-yk/Galley/internal/errdefs"
	"github.com/sogawa-yk/Galley/internal/session"
	"github.com/sogawa-yk/Galley/internal/synth"
	"github.com/sogawa-yk/Galley/internal/validation"
)

// Service runs design operations against a session store.
type Service struct {
	store     session.Store
	lib       *catalog.Library
	validator *validation.Validator
	synth     *synth.Synthesizer
	dataDir   string
	log       logr.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service. Synthesized bundles are written below dataDir.
func New(store session.Store, lib *catalog.Library, validator *validation.Validator, dataDir string, opts ...Option) *Service {
	s := &Service{
		store:     store,
		lib:       lib,
		validator: validator,
		synth:     synth.New(lib),
		dataDir:   dataDir,
		log:       logr.Discard(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts an empty session.
func (s *Service) CreateSession(ctx context.Context) (*session.Session, error) {
	sess := session.New(s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.log.Info("session created", "session", sess.ID)
	return sess, nil
}

// Session loads a session.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.store.Load(ctx, id)
}

// ListSessions returns the stored session ids.
func (s *Service) ListSessions(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// CompleteRequirements opens the design gate for a session.
func (s *Service) CompleteRequirements(ctx context.Context, id, summary string) (*session.Session, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Requirements = session.Requirements{Complete: true, Summary: summary}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// loadArchitecture returns the session and its architecture, which must
// exist.
func (s *Service) loadArchitecture(ctx context.Context, id string) (*session.Session, *architecture.Architecture, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sess.Architecture == nil {
		return nil, nil, errdefs.NotFound("architecture", id)
	}
	return sess, sess.Architecture, nil
}

func (s *Service) requireRequirements(sess *session.Session) error {
	if !sess.Requirements.Complete {
		return errdefs.Precondition("requirements for session %s are not complete", sess.ID)
	}
	return nil
}

// touch stamps the architecture and session and saves them.
func (s *Service) touch(ctx context.Context, sess *session.Session) error {
	now := s.now()
	if sess.Architecture != nil {
		if sess.Architecture.CreatedAt.IsZero() {
			sess.Architecture.CreatedAt = now
		}
		sess.Architecture.UpdatedAt = now
	}
	sess.UpdatedAt = now
	return s.store.Save(ctx, sess)
}

// ServiceInfo describes one service type of the template library.
type ServiceInfo struct {
	Type              string              `json:"type"`
	DisplayName       string              `json:"display_name"`
	Category          string              `json:"category,omitempty"`
	Description       string              `json:"description"`
	Defaults          architecture.Config `json:"defaults,omitempty"`
	RequiredVariables []catalog.Variable  `json:"required_variables,omitempty"`
}

// ListServices returns the service types that have templates, in catalog
// order.
func (s *Service) ListServices() []ServiceInfo {
	services := s.lib.Services()
	out := make([]ServiceInfo, 0, len(services))
	for _, svc := range services {
		info := ServiceInfo{
			Type:        svc.Type,
			DisplayName: svc.DisplayName,
			Category:    svc.Category,
			Description: svc.Description,
			Defaults:    svc.Defaults.Clone(),
		}
		for _, name := range svc.RequiredVariables {
			v, ok := s.lib.Variable(name)
			if !ok {
				v = catalog.Variable{Name: name}
			}
			info.RequiredVariables = append(info.RequiredVariables, v)
		}
		out = append(out, info)
	}
	return out
}
