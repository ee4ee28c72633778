// Package handler provides the HTTP surface for Wildpitch: HTML pages for
// browsing and managing campgrounds, plus the JSON map feed.
package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/auth"
	"github.com/wildpitch/wildpitch/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
	logger    zerolog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger zerolog.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		templates: tmpl,
		logger:    logger.With().Str("component", "renderer").Logger(),
	}, nil
}

// PageData contains data common to every page.
type PageData struct {
	Title string

	// User is the authenticated principal, nil for anonymous visitors.
	User *domain.User

	// Flash is the pending one-shot notice, if any.
	Flash *auth.Flash
}

// Render executes a page template.
func (rd *Renderer) Render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// RenderStatus executes a page template with an explicit status code.
func (rd *Renderer) RenderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error().Err(err).Str("template", name).Msg("Failed to render template")
	}
}

// ErrorPageData is the error page payload.
type ErrorPageData struct {
	PageData
	Status  int
	Message string
}

// page builds the common page data for a request: title, principal, and any
// pending flash notice (consumed here).
func page(w http.ResponseWriter, r *http.Request, title string) PageData {
	data := PageData{
		Title: title,
		Flash: auth.PopFlash(w, r),
	}
	if principal := auth.PrincipalFrom(r.Context()); principal != nil {
		data.User = principal.User
	}
	return data
}
