// Package session persists design sessions: the requirements gate, the
// architecture graph and the Resource Manager stack handle.
package session

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// Requirements is the outcome of requirements gathering. Only the gate and
// the summary are kept.
type Requirements struct {
	Complete bool   `json:"complete"`
	Summary  string `json:"summary,omitempty"`
}

// JobRecord is the retained outcome of the last provisioning job.
type JobRecord struct {
	JobID      string    `json:"job_id,omitempty"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	Summary    string    `json:"summary,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Session is one design-to-deployment workspace.
type Session struct {
	ID           string                     `json:"id"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
	Requirements Requirements               `json:"requirements"`
	Architecture *architecture.Architecture `json:"architecture,omitempty"`
	StackID      string                     `json:"stack_id,omitempty"`
	LastJob      *JobRecord                 `json:"last_job,omitempty"`
}

// New returns a session with a fresh id.
func New(now time.Time) *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Store is an opaque keyed session store.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	List(ctx context.Context) ([]string, error)
}

// Update reloads a session, applies fn and saves it, so fields fn leaves
// alone keep what the store holds now rather than an older copy.
func Update(ctx context.Context, store Store, id string, fn func(*Session)) (*Session, error) {
	sess, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(sess)
	if err := store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateID rejects ids that could escape a storage namespace.
func ValidateID(id string) error {
	if !validID.MatchString(id) {
		return errdefs.InvalidInput("invalid session id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errdefs.NotFound("session", id)
}
