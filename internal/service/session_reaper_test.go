package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/lock"
)

func TestSessionReaper_RunOnce(t *testing.T) {
	t.Run("sweeps expired sessions", func(t *testing.T) {
		sessionRepo := new(mockSessionRepository)
		sessionRepo.On("DeleteExpired", mock.Anything).Return(int64(5), nil)

		sessions := NewSessionService(sessionRepo, new(mockUserRepository), time.Hour, nil, zerolog.Nop())
		reaper := NewSessionReaper(sessions, lock.NewMemoryLocker(), nil, time.Hour, zerolog.Nop())

		purged, err := reaper.RunOnce(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(5), purged)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("held lock skips the sweep", func(t *testing.T) {
		sessionRepo := new(mockSessionRepository)
		locker := lock.NewMemoryLocker()

		held, err := locker.Acquire(context.Background(), lock.Keys.SessionPurge(), time.Minute)
		require.NoError(t, err)
		require.True(t, held)

		sessions := NewSessionService(sessionRepo, new(mockUserRepository), time.Hour, nil, zerolog.Nop())
		reaper := NewSessionReaper(sessions, locker, nil, time.Hour, zerolog.Nop())

		purged, err := reaper.RunOnce(context.Background())
		require.NoError(t, err)
		require.Zero(t, purged)
		sessionRepo.AssertNotCalled(t, "DeleteExpired", mock.Anything)
	})
}
