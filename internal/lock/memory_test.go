package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		l := NewMemoryLocker()
		defer l.Stop()
		ctx := context.Background()
		key := Keys.CampgroundDelete(1)

		got, err := l.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, got)

		// Held lock cannot be re-acquired.
		got, err = l.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.False(t, got)

		held, err := l.IsHeld(ctx, key)
		require.NoError(t, err)
		require.True(t, held)

		released, err := l.Release(ctx, key)
		require.NoError(t, err)
		require.True(t, released)

		got, err = l.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("expired lock is re-acquirable", func(t *testing.T) {
		l := NewMemoryLocker()
		defer l.Stop()
		ctx := context.Background()
		key := Keys.SessionPurge()

		got, err := l.Acquire(ctx, key, 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, got)

		time.Sleep(20 * time.Millisecond)

		got, err = l.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("retry acquires after release", func(t *testing.T) {
		l := NewMemoryLocker()
		defer l.Stop()
		ctx := context.Background()
		key := Keys.CampgroundDelete(2)

		got, err := l.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, got)

		go func() {
			time.Sleep(30 * time.Millisecond)
			l.Release(context.Background(), key) //nolint:errcheck
		}()

		got, err = l.AcquireWithRetry(ctx, key, time.Minute, 10, 20*time.Millisecond)
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("retry honors context cancellation", func(t *testing.T) {
		l := NewMemoryLocker()
		defer l.Stop()
		key := Keys.CampgroundDelete(3)

		got, err := l.Acquire(context.Background(), key, time.Minute)
		require.NoError(t, err)
		require.True(t, got)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err = l.AcquireWithRetry(ctx, key, time.Minute, 100, 20*time.Millisecond)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
