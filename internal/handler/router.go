package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/auth"
	"github.com/wildpitch/wildpitch/internal/metrics"
)

// Router wires the HTTP surface together.
type Router struct {
	users       *UserHandler
	campgrounds *CampgroundHandler
	reviews     *ReviewHandler
	health      *HealthHandler
	authMW      *auth.Middleware
	metrics     *metrics.Metrics
	maxBodySize int64
	assetDir    string
	logger      zerolog.Logger
}

// Config holds router construction options.
type Config struct {
	Users       *UserHandler
	Campgrounds *CampgroundHandler
	Reviews     *ReviewHandler
	Health      *HealthHandler
	AuthMW      *auth.Middleware
	Metrics     *metrics.Metrics
	MaxBodySize int64

	// AssetDir, when non-empty, is served under /assets/ for the
	// filesystem asset backend. The S3 backend serves assets itself.
	AssetDir string
}

// NewRouter creates a new router.
func NewRouter(cfg Config, logger zerolog.Logger) *Router {
	return &Router{
		users:       cfg.Users,
		campgrounds: cfg.Campgrounds,
		reviews:     cfg.Reviews,
		health:      cfg.Health,
		authMW:      cfg.AuthMW,
		metrics:     cfg.Metrics,
		maxBodySize: cfg.MaxBodySize,
		assetDir:    cfg.AssetDir,
		logger:      logger,
	}
}

// Handler builds the route tree.
func (rt *Router) Handler(campgroundGetter auth.CampgroundGetter, reviewGetter auth.ReviewGetter) http.Handler {
	r := chi.NewRouter()

	r.Use(Recoverer(rt.logger))
	r.Use(RequestLogger(rt.logger))
	r.Use(MaxBody(rt.maxBodySize))
	r.Use(MethodOverride)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(rt.authMW.Sessions)

	r.Get("/health", rt.health.ServeHTTP)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/campgrounds", http.StatusFound)
	})

	r.Get("/register", rt.users.RegisterPage)
	r.Post("/register", rt.users.Register)
	r.Get("/login", rt.users.LoginPage)
	r.Post("/login", rt.users.Login)
	r.Post("/logout", rt.users.Logout)

	r.Route("/campgrounds", func(r chi.Router) {
		r.Get("/", rt.campgrounds.Index)
		r.Get("/feed.json", rt.campgrounds.MapFeed)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMW.RequireAuth)
			r.Get("/new", rt.campgrounds.NewPage)
			r.Post("/", rt.campgrounds.Create)
		})

		r.Route("/{campgroundID}", func(r chi.Router) {
			r.Get("/", rt.campgrounds.Show)

			r.Group(func(r chi.Router) {
				r.Use(rt.authMW.RequireAuth)
				r.Use(rt.authMW.RequireCampgroundOwner(campgroundGetter))
				r.Get("/edit", rt.campgrounds.EditPage)
				r.Put("/", rt.campgrounds.Update)
				r.Delete("/", rt.campgrounds.Delete)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Use(rt.authMW.RequireAuth)
				r.Post("/", rt.reviews.Create)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMW.RequireReviewOwner(reviewGetter))
					r.Delete("/{reviewID}", rt.reviews.Delete)
				})
			})
		})
	})

	if rt.assetDir != "" {
		fs := http.StripPrefix("/assets/", http.FileServer(http.Dir(rt.assetDir)))
		r.Get("/assets/*", fs.ServeHTTP)
	}

	return r
}
