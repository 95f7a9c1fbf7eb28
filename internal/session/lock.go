package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/sogawa-yk/Galley/internal/errdefs"
	"github.com/sogawa-yk/Galley/internal/platform/s3"
)

// DefaultLeaseTTL bounds an object lease when the caller gives no ttl.
const DefaultLeaseTTL = time.Hour

const lockFile = ".lock"

// Locker claims a session across processes. TryLock never blocks: a
// session held elsewhere yields an in_progress error. ttl bounds how long
// a claim outlives a holder that dies without releasing it, on backends
// that cannot notice that by themselves.
type Locker interface {
	TryLock(ctx context.Context, id string, ttl time.Duration) (release func(), err error)
}

var (
	_ Locker = (*FileStore)(nil)
	_ Locker = (*ObjectStore)(nil)
)

// TryLock takes an advisory lock on <root>/<id>/.lock. The kernel drops
// the lock when the holding process exits, so ttl is not used.
func (s *FileStore) TryLock(_ context.Context, id string, _ time.Duration) (func(), error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	dir := s.Dir(id)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	fl := flock.New(filepath.Join(dir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock session %s: %w", id, err)
	}
	if !ok {
		return nil, errdefs.InProgress(id)
	}

	var once sync.Once
	return func() {
		once.Do(func() { _ = fl.Unlock() })
	}, nil
}

type lease struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *ObjectStore) lockKey(id string) string {
	return s.prefix + id + lockFile
}

// TryLock writes a lease object next to the session with a conditional
// put. An expired lease is removed and the put retried once.
func (s *ObjectStore) TryLock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}

	key := s.lockKey(id)
	mine := lease{Owner: uuid.NewString(), ExpiresAt: s.now().Add(ttl).UTC()}
	data, err := json.Marshal(mine)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lease for session %s: %w", id, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.PutIfAbsent(ctx, key, data, "application/json")
		if err != nil {
			return nil, fmt.Errorf("failed to lock session %s: %w", id, err)
		}
		if ok {
			return s.releaser(key, mine.Owner), nil
		}
		if attempt > 0 {
			break
		}

		held, err := s.readLease(ctx, key)
		if errors.Is(err, s3.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read lease for session %s: %w", id, err)
		}
		if s.now().Before(held.ExpiresAt) {
			return nil, errdefs.InProgress(id)
		}
		if err := s.client.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to clear expired lease for session %s: %w", id, err)
		}
	}
	return nil, errdefs.InProgress(id)
}

func (s *ObjectStore) readLease(ctx context.Context, key string) (*lease, error) {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var l lease
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode lease %s: %w", key, err)
	}
	return &l, nil
}

// releaser deletes the lease only while it still names owner, so a holder
// whose lease expired cannot drop its successor's.
func (s *ObjectStore) releaser(key, owner string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			held, err := s.readLease(ctx, key)
			if err != nil || held.Owner != owner {
				return
			}
			_ = s.client.Delete(ctx, key)
		})
	}
}
