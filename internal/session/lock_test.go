package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogawa-yk/Galley/internal/errdefs"
)

func TestTryLockExcludesSecondHolder(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "sessions")
	objects := &memObjects{objects: map[string][]byte{}}
	pairs := map[string][2]Locker{
		// Two stores on one location stand in for two processes.
		"file":   {NewFileStore(root), NewFileStore(root)},
		"object": {NewObjectStore(objects, "sessions"), NewObjectStore(objects, "sessions")},
	}

	for name, pair := range pairs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			release, err := pair[0].TryLock(ctx, "s1", time.Minute)
			require.NoError(t, err)

			_, err = pair[1].TryLock(ctx, "s1", time.Minute)
			require.Error(t, err)
			assert.True(t, errdefs.IsInProgress(err))

			other, err := pair[1].TryLock(ctx, "s2", time.Minute)
			require.NoError(t, err, "locks are per session")
			other()

			release()
			release()

			again, err := pair[1].TryLock(ctx, "s1", time.Minute)
			require.NoError(t, err)
			again()

			_, err = pair[0].TryLock(ctx, "../x", time.Minute)
			assert.True(t, errdefs.IsInvalidInput(err))
		})
	}
}

func TestObjectLeaseExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	objects := &memObjects{objects: map[string][]byte{}}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := NewObjectStore(objects, "sessions")
	first.now = func() time.Time { return now }
	second := NewObjectStore(objects, "sessions")
	second.now = func() time.Time { return now.Add(2 * time.Minute) }

	stale, err := first.TryLock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	release, err := second.TryLock(ctx, "s1", time.Minute)
	require.NoError(t, err, "an expired lease is taken over")

	stale()
	_, err = first.TryLock(ctx, "s1", time.Hour)
	assert.True(t, errdefs.IsInProgress(err), "the expired holder cannot drop its successor's lease")

	release()
	_, ok := objects.objects["sessions/s1.lock"]
	assert.False(t, ok)

	ids, err := first.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "lease objects are not sessions")
}
