package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/service"
)

// =============================================================================
// Mocks
// =============================================================================

type mockSessionSource struct {
	mock.Mock
}

func (m *mockSessionSource) Resolve(ctx context.Context, token string) (*service.ResolveOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolveOutput), args.Error(1)
}

func (m *mockSessionSource) CaptureReturnTarget(ctx context.Context, token, path string) (*domain.Session, error) {
	args := m.Called(ctx, token, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

type mockCampgroundGetter struct {
	mock.Mock
}

func (m *mockCampgroundGetter) GetByID(ctx context.Context, id int64) (*domain.Campground, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campground), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

const testCookieName = "wildpitch_session"

func newTestMiddleware(sessions SessionSource) *Middleware {
	return NewMiddleware(sessions, Config{CookieName: testCookieName}, zerolog.Nop())
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func flashMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "wildpitch_flash" && c.Value != "" {
			decoded, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			_, message, _ := strings.Cut(decoded, ":")
			return message
		}
	}
	return ""
}

// =============================================================================
// Tests
// =============================================================================

func TestMiddleware_Sessions(t *testing.T) {
	token := strings.Repeat("ab", 32)

	t.Run("attaches the principal", func(t *testing.T) {
		sessions := new(mockSessionSource)
		user := &domain.User{ID: 7, Email: "hiker@example.com"}
		sessions.On("Resolve", mock.Anything, token).Return(&service.ResolveOutput{
			Session: domain.NewSession(token, 7, time.Hour),
			User:    user,
		}, nil)

		mw := newTestMiddleware(sessions)
		var principal *Principal
		handler := mw.Sessions(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal = PrincipalFrom(r.Context())
			require.Equal(t, token, SessionTokenFrom(r.Context()))
		}))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, principal)
		require.Equal(t, int64(7), principal.UserID)
	})

	t.Run("resolve refreshes the cookie deadline", func(t *testing.T) {
		sessions := new(mockSessionSource)
		session := domain.NewSession(token, 7, 2*time.Hour)
		sessions.On("Resolve", mock.Anything, token).Return(&service.ResolveOutput{
			Session: session,
			User:    &domain.User{ID: 7, Email: "hiker@example.com"},
		}, nil)

		mw := newTestMiddleware(sessions)
		called := false
		handler := mw.Sessions(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.True(t, called)
		var refreshed *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == testCookieName {
				refreshed = c
			}
		}
		require.NotNil(t, refreshed, "session cookie should be re-issued on resolve")
		require.Equal(t, token, refreshed.Value)
		require.True(t, refreshed.Expires.After(time.Now().Add(90*time.Minute)),
			"cookie deadline should track the slid expiry")
	})

	t.Run("no cookie passes through anonymously", func(t *testing.T) {
		sessions := new(mockSessionSource)
		mw := newTestMiddleware(sessions)

		var principal *Principal
		handler := mw.Sessions(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal = PrincipalFrom(r.Context())
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/campgrounds", nil))

		require.Nil(t, principal)
		sessions.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("dead cookie is cleared", func(t *testing.T) {
		sessions := new(mockSessionSource)
		sessions.On("Resolve", mock.Anything, token).Return(nil, service.ErrSessionExpired)

		mw := newTestMiddleware(sessions)
		called := false
		handler := mw.Sessions(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.True(t, called)
		var cleared bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == testCookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		require.True(t, cleared)
	})
}

func TestMiddleware_RequireAuth(t *testing.T) {
	t.Run("authenticated request passes", func(t *testing.T) {
		mw := newTestMiddleware(new(mockSessionSource))
		called := false
		handler := mw.RequireAuth(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
		ctx := WithPrincipal(req.Context(), &Principal{UserID: 7})
		handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

		require.True(t, called)
	})

	t.Run("anonymous GET captures the target and redirects", func(t *testing.T) {
		sessions := new(mockSessionSource)
		minted := domain.NewAnonymousSession(strings.Repeat("cd", 32), time.Hour)
		sessions.On("CaptureReturnTarget", mock.Anything, "", "/campgrounds/new").Return(minted, nil)

		mw := newTestMiddleware(sessions)
		called := false
		handler := mw.RequireAuth(okHandler(&called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))

		require.False(t, called)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
		require.Equal(t, "You must be signed in first", flashMessage(t, rec))

		// The minted anonymous session rides back as a cookie.
		var sessionCookie string
		for _, c := range rec.Result().Cookies() {
			if c.Name == testCookieName {
				sessionCookie = c.Value
			}
		}
		require.Equal(t, minted.Token, sessionCookie)
		sessions.AssertExpectations(t)
	})

	t.Run("anonymous POST redirects without capturing", func(t *testing.T) {
		sessions := new(mockSessionSource)
		mw := newTestMiddleware(sessions)
		called := false
		handler := mw.RequireAuth(okHandler(&called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campgrounds", nil))

		require.False(t, called)
		require.Equal(t, http.StatusFound, rec.Code)
		sessions.AssertNotCalled(t, "CaptureReturnTarget", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMiddleware_RequireCampgroundOwner(t *testing.T) {
	withChiParam := func(r *http.Request, key, value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(key, value)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("owner passes", func(t *testing.T) {
		getter := new(mockCampgroundGetter)
		getter.On("GetByID", mock.Anything, int64(9)).Return(&domain.Campground{ID: 9, AuthorID: 7}, nil)

		mw := newTestMiddleware(new(mockSessionSource))
		called := false
		handler := mw.RequireCampgroundOwner(getter)(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds/9/edit", nil)
		req = withChiParam(req, "campgroundID", "9")
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: 7}))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.True(t, called)
	})

	t.Run("non-owner redirected with flash", func(t *testing.T) {
		getter := new(mockCampgroundGetter)
		getter.On("GetByID", mock.Anything, int64(9)).Return(&domain.Campground{ID: 9, AuthorID: 7}, nil)

		mw := newTestMiddleware(new(mockSessionSource))
		called := false
		handler := mw.RequireCampgroundOwner(getter)(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds/9/edit", nil)
		req = withChiParam(req, "campgroundID", "9")
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: 8}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.False(t, called)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/campgrounds/9", rec.Header().Get("Location"))
		require.Equal(t, "You do not have permission to do that", flashMessage(t, rec))
	})

	t.Run("missing campground redirected to index", func(t *testing.T) {
		getter := new(mockCampgroundGetter)
		getter.On("GetByID", mock.Anything, int64(404)).Return(nil, service.ErrCampgroundNotFound)

		mw := newTestMiddleware(new(mockSessionSource))
		called := false
		handler := mw.RequireCampgroundOwner(getter)(okHandler(&called))

		req := httptest.NewRequest(http.MethodGet, "/campgrounds/404/edit", nil)
		req = withChiParam(req, "campgroundID", "404")
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: 7}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.False(t, called)
		require.Equal(t, "/campgrounds", rec.Header().Get("Location"))
	})
}

func TestFlash(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(rec, FlashSuccess, "Welcome back")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	flash := PopFlash(rec2, req)
	require.NotNil(t, flash)
	require.Equal(t, FlashSuccess, flash.Level)
	require.Equal(t, "Welcome back", flash.Message)

	// Pop clears the cookie.
	var cleared bool
	for _, c := range rec2.Result().Cookies() {
		if c.Name == "wildpitch_flash" && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}
