package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fast(extra ...Option) []Option {
	return append([]Option{WithInitialDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}, extra...)
}

func TestWithExponentialBackoff_Success(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return nil
	}, fast()...)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, fast()...)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithExponentialBackoff_MaxRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return errTransient
	}, fast(WithMaxRetries(2))...)
	require.ErrorIs(t, err, errTransient)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestWithExponentialBackoff_FatalError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return Fatal(errTransient)
	}, fast()...)
	require.ErrorIs(t, err, errTransient)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, calls)
}

func TestWithExponentialBackoff_RetryIf(t *testing.T) {
	t.Parallel()

	errPermanent := errors.New("bad request")
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errTransient
		}
		return errPermanent
	}, fast(WithRetryIf(func(err error) bool { return errors.Is(err, errTransient) }))...)
	require.ErrorIs(t, err, errPermanent)
	assert.Contains(t, err.Error(), "not retrying")
	assert.Equal(t, 2, calls)
}

func TestWithExponentialBackoff_Notify(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	var attempts []int
	_ = WithExponentialBackoff(context.Background(), func() error { return errTransient },
		WithMaxRetries(3),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(3*time.Millisecond),
		WithMultiplier(2),
		WithNotify(func(_ error, attempt int, next time.Duration) {
			attempts = append(attempts, attempt)
			delays = append(delays, next)
		}),
	)
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond}, delays)
}

func TestWithExponentialBackoff_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithExponentialBackoff(ctx, func() error {
		calls++
		cancel()
		return errTransient
	}, WithInitialDelay(time.Hour))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithExponentialBackoff_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := WithExponentialBackoff(ctx, func() error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestFatal(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Fatal(nil))

	err := Fatal(errTransient)
	assert.Equal(t, "transient", err.Error())
	assert.ErrorIs(t, err, errTransient)
	assert.True(t, IsFatal(err))
	assert.True(t, IsFatal(errors.Join(errors.New("ctx"), err)))
	assert.False(t, IsFatal(errTransient))
	assert.False(t, IsFatal(nil))
}
