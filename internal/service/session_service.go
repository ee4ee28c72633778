package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/metrics"
	"github.com/wildpitch/wildpitch/internal/pkg/crypto"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// SessionService manages the session lifecycle: login, resolve, destroy,
// and the pre-auth return-target handoff.
type SessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	ttl         time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewSessionService creates a new SessionService. Metrics may be nil.
// A non-positive ttl falls back to domain.DefaultSessionTTL.
func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		ttl:         ttl,
		metrics:     m,
		logger:      logger.With().Str("service", "session").Logger(),
	}
}

// LoginOutput contains the session created by a login.
type LoginOutput struct {
	Session *domain.Session

	// ReturnTo is the target captured before login, if any. Already
	// consumed: it will not be returned again.
	ReturnTo *string
}

// Login establishes an authenticated session for a user. A fresh token is
// always minted; if the caller presented a prior (typically anonymous)
// session, its return target is carried over and the prior record destroyed
// so the old token stops resolving.
func (s *SessionService) Login(ctx context.Context, userID int64, priorToken string) (*LoginOutput, error) {
	token, err := crypto.GenerateSessionToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate session token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	session := domain.NewSession(token, userID, s.ttl)

	var returnTo *string
	if priorToken != "" && crypto.ValidSessionToken(priorToken) {
		prior, err := s.sessionRepo.GetByToken(ctx, priorToken)
		if err == nil && !prior.IsExpired() {
			returnTo = prior.ReturnTo
		}
		// Token rotation: the pre-login token must not survive login.
		if err := s.sessionRepo.Delete(ctx, priorToken); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete prior session")
		}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.metrics.IncSessionsCreated()
	s.logger.Info().
		Int64("user_id", userID).
		Time("expires_at", session.ExpiresAt).
		Msg("session created")

	return &LoginOutput{Session: session, ReturnTo: returnTo}, nil
}

// ResolveOutput is the result of resolving a session token.
type ResolveOutput struct {
	Session *domain.Session

	// User is the bound principal, nil for anonymous sessions.
	User *domain.User
}

// Resolve looks up a session token and returns the bound principal.
// A successful resolve slides the expiry window forward. Expired sessions
// resolve to ErrSessionExpired and are removed.
func (s *SessionService) Resolve(ctx context.Context, token string) (*ResolveOutput, error) {
	if !crypto.ValidSessionToken(token) {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if session.IsExpired() {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, ErrSessionExpired
	}

	// Sliding window: each resolve pushes expiry out by the full TTL.
	session.ExpiresAt = time.Now().UTC().Add(s.ttl)
	if err := s.sessionRepo.Touch(ctx, token, session.ExpiresAt); err != nil {
		s.logger.Warn().Err(err).Msg("failed to touch session")
	}

	out := &ResolveOutput{Session: session}
	if session.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *session.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				// Principal deleted out from under the session; kill it.
				_ = s.sessionRepo.Delete(ctx, token)
				return nil, ErrSessionNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		out.User = user
	}

	return out, nil
}

// Destroy removes a session. Destroying an unknown or already-destroyed
// token succeeds: logout is idempotent.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if !crypto.ValidSessionToken(token) {
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Msg("session destroyed")
	return nil
}

// CaptureReturnTarget records the path an unauthenticated request was trying
// to reach. If the presented token resolves to a live session the target is
// stored on it; otherwise a fresh anonymous session is created to carry it.
// Returns the session holding the target, which may be newly minted.
func (s *SessionService) CaptureReturnTarget(ctx context.Context, token, path string) (*domain.Session, error) {
	if crypto.ValidSessionToken(token) {
		session, err := s.sessionRepo.GetByToken(ctx, token)
		if err == nil && !session.IsExpired() {
			if err := s.sessionRepo.SetReturnTo(ctx, token, &path); err != nil {
				s.logger.Error().Err(err).Msg("failed to set return target")
				return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
			}
			session.ReturnTo = &path
			return session, nil
		}
	}

	newToken, err := crypto.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	session := domain.NewAnonymousSession(newToken, s.ttl)
	session.ReturnTo = &path

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error().Err(err).Msg("failed to create anonymous session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.metrics.IncSessionsCreated()
	return session, nil
}

// ConsumeReturnTarget returns the stored return target and clears it.
// Returns nil when the session has no target. Read-once: a second call
// returns nil.
func (s *SessionService) ConsumeReturnTarget(ctx context.Context, token string) (*string, error) {
	if !crypto.ValidSessionToken(token) {
		return nil, nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if session.ReturnTo == nil {
		return nil, nil
	}

	target := session.ReturnTo
	if err := s.sessionRepo.SetReturnTo(ctx, token, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear return target")
	}

	return target, nil
}

// PurgeExpired removes all sessions past their expiry.
// Run periodically by the session reaper.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	count, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to purge expired sessions")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if count > 0 {
		s.logger.Info().Int64("purged", count).Msg("expired sessions purged")
	}

	return count, nil
}
