package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/pkg/crypto"
)

func newTestSessionService() (*SessionService, *mockSessionRepository, *mockUserRepository) {
	sessionRepo := new(mockSessionRepository)
	userRepo := new(mockUserRepository)
	svc := NewSessionService(sessionRepo, userRepo, time.Hour, nil, zerolog.Nop())
	return svc, sessionRepo, userRepo
}

func testToken(t *testing.T) string {
	t.Helper()
	token, err := crypto.GenerateSessionToken()
	require.NoError(t, err)
	return token
}

func TestSessionService_Login(t *testing.T) {
	t.Run("mints a fresh token", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
			return crypto.ValidSessionToken(s.Token) && s.UserID != nil && *s.UserID == 42
		})).Return(nil)

		out, err := svc.Login(context.Background(), 42, "")
		require.NoError(t, err)
		require.True(t, crypto.ValidSessionToken(out.Session.Token))
		require.Nil(t, out.ReturnTo)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("rotates the prior token and carries its return target", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		priorToken := testToken(t)
		target := "/campgrounds/9/edit"
		prior := domain.NewAnonymousSession(priorToken, time.Hour)
		prior.ReturnTo = &target

		sessionRepo.On("GetByToken", mock.Anything, priorToken).Return(prior, nil)
		sessionRepo.On("Delete", mock.Anything, priorToken).Return(nil)
		sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

		out, err := svc.Login(context.Background(), 42, priorToken)
		require.NoError(t, err)
		require.NotEqual(t, priorToken, out.Session.Token)
		require.NotNil(t, out.ReturnTo)
		require.Equal(t, target, *out.ReturnTo)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("expired prior session contributes nothing", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		priorToken := testToken(t)
		target := "/campgrounds/new"
		prior := domain.NewAnonymousSession(priorToken, -time.Minute)
		prior.ReturnTo = &target

		sessionRepo.On("GetByToken", mock.Anything, priorToken).Return(prior, nil)
		sessionRepo.On("Delete", mock.Anything, priorToken).Return(nil)
		sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

		out, err := svc.Login(context.Background(), 42, priorToken)
		require.NoError(t, err)
		require.Nil(t, out.ReturnTo)
		sessionRepo.AssertExpectations(t)
	})
}

func TestSessionService_Resolve(t *testing.T) {
	t.Run("success slides the expiry forward", func(t *testing.T) {
		svc, sessionRepo, userRepo := newTestSessionService()
		token := testToken(t)
		session := domain.NewSession(token, 42, time.Minute)
		originalExpiry := session.ExpiresAt
		user := &domain.User{ID: 42, Email: "hiker@example.com"}

		sessionRepo.On("GetByToken", mock.Anything, token).Return(session, nil)
		sessionRepo.On("Touch", mock.Anything, token, mock.MatchedBy(func(at time.Time) bool {
			return at.After(originalExpiry)
		})).Return(nil)
		userRepo.On("GetByID", mock.Anything, int64(42)).Return(user, nil)

		out, err := svc.Resolve(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, user, out.User)
		require.True(t, out.Session.ExpiresAt.After(originalExpiry))
		sessionRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("malformed token never reaches the store", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()

		_, err := svc.Resolve(context.Background(), "not-a-token")
		require.ErrorIs(t, err, ErrSessionNotFound)
		sessionRepo.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
	})

	t.Run("expired session is removed", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		token := testToken(t)
		session := domain.NewSession(token, 42, -time.Minute)

		sessionRepo.On("GetByToken", mock.Anything, token).Return(session, nil)
		sessionRepo.On("Delete", mock.Anything, token).Return(nil)

		_, err := svc.Resolve(context.Background(), token)
		require.ErrorIs(t, err, ErrSessionExpired)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("deleted principal kills the session", func(t *testing.T) {
		svc, sessionRepo, userRepo := newTestSessionService()
		token := testToken(t)
		session := domain.NewSession(token, 42, time.Hour)

		sessionRepo.On("GetByToken", mock.Anything, token).Return(session, nil)
		sessionRepo.On("Touch", mock.Anything, token, mock.Anything).Return(nil)
		sessionRepo.On("Delete", mock.Anything, token).Return(nil)
		userRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, domain.ErrUserNotFound)

		_, err := svc.Resolve(context.Background(), token)
		require.ErrorIs(t, err, ErrSessionNotFound)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("anonymous session resolves without a user", func(t *testing.T) {
		svc, sessionRepo, userRepo := newTestSessionService()
		token := testToken(t)
		session := domain.NewAnonymousSession(token, time.Hour)

		sessionRepo.On("GetByToken", mock.Anything, token).Return(session, nil)
		sessionRepo.On("Touch", mock.Anything, token, mock.Anything).Return(nil)

		out, err := svc.Resolve(context.Background(), token)
		require.NoError(t, err)
		require.Nil(t, out.User)
		userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestSessionService_Destroy(t *testing.T) {
	t.Run("unknown token succeeds", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		token := testToken(t)
		sessionRepo.On("Delete", mock.Anything, token).Return(nil)

		require.NoError(t, svc.Destroy(context.Background(), token))
		// Idempotent: a second destroy of the same token also succeeds.
		require.NoError(t, svc.Destroy(context.Background(), token))
	})

	t.Run("malformed token is a no-op", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()

		require.NoError(t, svc.Destroy(context.Background(), "garbage"))
		sessionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestSessionService_ReturnTarget(t *testing.T) {
	t.Run("capture on live session", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		token := testToken(t)
		session := domain.NewAnonymousSession(token, time.Hour)

		sessionRepo.On("GetByToken", mock.Anything, token).Return(session, nil)
		sessionRepo.On("SetReturnTo", mock.Anything, token, mock.MatchedBy(func(p *string) bool {
			return p != nil && *p == "/campgrounds/new"
		})).Return(nil)

		got, err := svc.CaptureReturnTarget(context.Background(), token, "/campgrounds/new")
		require.NoError(t, err)
		require.Equal(t, token, got.Token)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("capture without a session mints an anonymous one", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
			return s.UserID == nil && s.ReturnTo != nil && *s.ReturnTo == "/campgrounds/new"
		})).Return(nil)

		got, err := svc.CaptureReturnTarget(context.Background(), "", "/campgrounds/new")
		require.NoError(t, err)
		require.True(t, crypto.ValidSessionToken(got.Token))
		require.False(t, got.IsAuthenticated())
		sessionRepo.AssertExpectations(t)
	})

	t.Run("consume is read-once", func(t *testing.T) {
		svc, sessionRepo, _ := newTestSessionService()
		token := testToken(t)
		target := "/campgrounds/5"
		session := domain.NewAnonymousSession(token, time.Hour)
		session.ReturnTo = &target

		sessionRepo.On("GetByToken", mock.Anything, token).Return(session, nil).Once()
		sessionRepo.On("SetReturnTo", mock.Anything, token, (*string)(nil)).Return(nil).Once()

		got, err := svc.ConsumeReturnTarget(context.Background(), token)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, target, *got)

		// Second read sees the cleared record.
		cleared := domain.NewAnonymousSession(token, time.Hour)
		sessionRepo.On("GetByToken", mock.Anything, token).Return(cleared, nil).Once()

		got, err = svc.ConsumeReturnTarget(context.Background(), token)
		require.NoError(t, err)
		require.Nil(t, got)
		sessionRepo.AssertExpectations(t)
	})
}

func TestSessionService_PurgeExpired(t *testing.T) {
	svc, sessionRepo, _ := newTestSessionService()
	sessionRepo.On("DeleteExpired", mock.Anything).Return(int64(3), nil)

	purged, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), purged)
	sessionRepo.AssertExpectations(t)
}
