package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/auth"
	"github.com/wildpitch/wildpitch/internal/service"
)

// UserHandler handles registration, login and logout.
type UserHandler struct {
	userService    *service.UserService
	sessionService *service.SessionService
	authMW         *auth.Middleware
	renderer       *Renderer
	logger         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, sessions *service.SessionService, authMW *auth.Middleware, renderer *Renderer, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:    users,
		sessionService: sessions,
		authMW:         authMW,
		renderer:       renderer,
		logger:         logger.With().Str("handler", "user").Logger(),
	}
}

// AuthPageData is the register/login page payload.
type AuthPageData struct {
	PageData
	Email string
}

// RegisterPage renders the registration form.
func (h *UserHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "register.html", AuthPageData{
		PageData: page(w, r, "Register"),
	})
}

// Register creates an account and logs the new user in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	out, err := h.userService.Register(r.Context(), service.RegisterInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		h.renderRegisterError(w, r, email, registerMessage(err))
		return
	}

	h.establishSession(w, r, out.User.ID, "Welcome to Wildpitch")
}

// LoginPage renders the login form.
func (h *UserHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "login.html", AuthPageData{
		PageData: page(w, r, "Log In"),
	})
}

// Login authenticates credentials and establishes a session.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.userService.Authenticate(r.Context(), email, password)
	if err != nil {
		h.logger.Debug().Err(err).Msg("login failed")
		data := AuthPageData{
			PageData: page(w, r, "Log In"),
			Email:    email,
		}
		data.Flash = &auth.Flash{Level: auth.FlashError, Message: "Invalid email or password"}
		h.renderer.Render(w, "login.html", data)
		return
	}

	h.establishSession(w, r, user.ID, "Welcome back")
}

// Logout destroys the session. Safe to call twice: destroying an unknown
// token still clears the cookie and redirects.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionTokenFrom(r.Context()); token != "" {
		if err := h.sessionService.Destroy(r.Context(), token); err != nil {
			h.logger.Error().Err(err).Msg("logout failed")
		}
	}

	h.authMW.ClearSessionCookie(w)
	auth.SetFlash(w, auth.FlashSuccess, "Goodbye")
	http.Redirect(w, r, "/campgrounds", http.StatusFound)
}

// establishSession mints a session for a user, rotates out any prior
// session, and redirects to the captured return target when one exists.
func (h *UserHandler) establishSession(w http.ResponseWriter, r *http.Request, userID int64, greeting string) {
	priorToken := auth.SessionTokenFrom(r.Context())

	out, err := h.sessionService.Login(r.Context(), userID, priorToken)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMW.SetSessionCookie(w, out.Session.Token, out.Session.ExpiresAt)
	auth.SetFlash(w, auth.FlashSuccess, greeting)

	target := "/campgrounds"
	if out.ReturnTo != nil && strings.HasPrefix(*out.ReturnTo, "/") {
		target = *out.ReturnTo
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *UserHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, email, message string) {
	data := AuthPageData{
		PageData: page(w, r, "Register"),
		Email:    email,
	}
	data.Flash = &auth.Flash{Level: auth.FlashError, Message: message}
	h.renderer.Render(w, "register.html", data)
}

// registerMessage maps registration failures to user-facing text.
func registerMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		return "That email is already registered"
	case errors.Is(err, service.ErrInvalidEmail):
		return "Please enter a valid email address"
	case errors.Is(err, service.ErrInvalidPassword):
		return "Password must be at least 8 characters"
	default:
		return "Registration failed, please try again"
	}
}
