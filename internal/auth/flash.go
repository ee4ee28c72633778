package auth

import (
	"net/http"
	"net/url"
	"strings"
)

// flashCookieName is the one-shot notice cookie.
const flashCookieName = "wildpitch_flash"

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Level   string
	Message string
}

// SetFlash stores a one-shot notice in a cookie. The next PopFlash on any
// page consumes it.
func SetFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + ":" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the flash cookie. Returns nil when no notice
// is pending.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	// Clear it regardless of whether it parses.
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}

	level, message, found := strings.Cut(decoded, ":")
	if !found {
		return nil
	}

	return &Flash{Level: level, Message: message}
}
