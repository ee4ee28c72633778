package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/service"
)

// SessionSource resolves session tokens and captures return targets.
// Implemented by service.SessionService.
type SessionSource interface {
	Resolve(ctx context.Context, token string) (*service.ResolveOutput, error)
	CaptureReturnTarget(ctx context.Context, token, path string) (*domain.Session, error)
}

// CampgroundGetter loads campgrounds for ownership checks.
type CampgroundGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Campground, error)
}

// ReviewGetter loads reviews for ownership checks.
type ReviewGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
}

// Config contains configuration for the session middleware.
type Config struct {
	// CookieName is the session cookie name.
	CookieName string

	// CookieSecure marks the session cookie HTTPS-only.
	CookieSecure bool
}

// Middleware provides the authentication and authorization guards.
type Middleware struct {
	sessions SessionSource
	config   Config
	logger   zerolog.Logger
}

// NewMiddleware creates the guard set.
func NewMiddleware(sessions SessionSource, config Config, logger zerolog.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		config:   config,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// SetSessionCookie writes the session cookie for a token.
func (m *Middleware) SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (m *Middleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sessions resolves the session cookie on every request and attaches the
// principal, when one is bound, to the request context. Anonymous requests
// pass through untouched; a dead cookie is cleared.
func (m *Middleware) Sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.config.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		out, err := m.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
				m.ClearSessionCookie(w)
			} else {
				m.logger.Error().Err(err).Msg("session resolve failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		// The resolve slid the server-side expiry; re-issue the cookie so
		// the browser's copy doesn't lapse at the original deadline.
		m.SetSessionCookie(w, cookie.Value, out.Session.ExpiresAt)

		ctx := WithSessionToken(r.Context(), cookie.Value)
		if out.User != nil {
			ctx = WithPrincipal(ctx, &Principal{UserID: out.User.ID, User: out.User})
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with a redirect to the login
// page. The requested path is captured so login can send the user back.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFrom(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Only capture navigable targets; a captured POST path would
		// redirect the user somewhere they can't GET.
		if r.Method == http.MethodGet {
			token := SessionTokenFrom(r.Context())
			session, err := m.sessions.CaptureReturnTarget(r.Context(), token, r.URL.RequestURI())
			if err != nil {
				m.logger.Error().Err(err).Msg("failed to capture return target")
			} else if session.Token != token {
				m.SetSessionCookie(w, session.Token, session.ExpiresAt)
			}
		}

		SetFlash(w, FlashError, "You must be signed in first")
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// RequireCampgroundOwner allows only the campground's owner through.
// Must run after RequireAuth inside a route carrying a campgroundID param.
func (m *Middleware) RequireCampgroundOwner(campgrounds CampgroundGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFrom(r.Context())
			if principal == nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			id, err := strconv.ParseInt(chi.URLParam(r, "campgroundID"), 10, 64)
			if err != nil {
				http.NotFound(w, r)
				return
			}

			cg, err := campgrounds.GetByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, service.ErrCampgroundNotFound) {
					SetFlash(w, FlashError, "Cannot find that campground")
					http.Redirect(w, r, "/campgrounds", http.StatusFound)
					return
				}
				m.logger.Error().Err(err).Int64("campground_id", id).Msg("owner check failed")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if !cg.IsOwnedBy(principal.UserID) {
				SetFlash(w, FlashError, "You do not have permission to do that")
				http.Redirect(w, r, "/campgrounds/"+strconv.FormatInt(id, 10), http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireReviewOwner allows only the review's author through.
// Must run after RequireAuth inside a route carrying campgroundID and
// reviewID params.
func (m *Middleware) RequireReviewOwner(reviews ReviewGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFrom(r.Context())
			if principal == nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			campgroundID := chi.URLParam(r, "campgroundID")
			id, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
			if err != nil {
				http.NotFound(w, r)
				return
			}

			review, err := reviews.GetByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, service.ErrReviewNotFound) {
					SetFlash(w, FlashError, "Cannot find that review")
					http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusFound)
					return
				}
				m.logger.Error().Err(err).Int64("review_id", id).Msg("owner check failed")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if !review.IsOwnedBy(principal.UserID) {
				SetFlash(w, FlashError, "You do not have permission to do that")
				http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
