// Package main is the entry point for the Wildpitch server.
// Wildpitch is a campground sharing and review service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/asset"
	"github.com/wildpitch/wildpitch/internal/auth"
	"github.com/wildpitch/wildpitch/internal/cache/memory"
	"github.com/wildpitch/wildpitch/internal/config"
	"github.com/wildpitch/wildpitch/internal/geocode"
	"github.com/wildpitch/wildpitch/internal/handler"
	"github.com/wildpitch/wildpitch/internal/lock"
	"github.com/wildpitch/wildpitch/internal/metrics"
	"github.com/wildpitch/wildpitch/internal/repository"
	"github.com/wildpitch/wildpitch/internal/repository/postgres"
	wpredis "github.com/wildpitch/wildpitch/internal/repository/redis"
	"github.com/wildpitch/wildpitch/internal/repository/sqlite"
	"github.com/wildpitch/wildpitch/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting Wildpitch server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	repos, dbHealth, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbHealth.Close() //nolint:errcheck

	// Cache and distributed lock: Redis when enabled, in-process otherwise.
	var (
		cache  repository.Cache
		locker lock.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err := wpredis.NewClient(ctx, wpredis.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close() //nolint:errcheck
		cache = redisClient
		locker = lock.NewRedisLocker(redisClient)
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("redis connected")
	} else {
		memCache := memory.NewCache()
		defer memCache.Stop()
		memLocker := lock.NewMemoryLocker()
		defer memLocker.Stop()
		cache = memCache
		locker = memLocker
	}

	// Asset store
	assets, assetDir, err := buildAssetStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize asset store: %w", err)
	}

	// Geocoder
	var geocoder geocode.Geocoder = geocode.Noop{}
	if cfg.Geocoder.Enabled {
		geocoder = geocode.NewCachingGeocoder(
			geocode.NewHTTPGeocoder(cfg.Geocoder, logger),
			cache,
			cfg.Geocoder.CacheTTL,
			logger,
		)
	}

	// Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Services
	userService := service.NewUserService(repos.User, logger)
	sessionService := service.NewSessionService(repos.Session, repos.User, cfg.Sessions.TTL, m, logger)
	campgroundService := service.NewCampgroundService(repos.Campground, repos.Review, assets, geocoder, locker, m, logger)
	reviewService := service.NewReviewService(repos.Review, repos.Campground, m, logger)

	reaper := service.NewSessionReaper(sessionService, locker, m, cfg.Sessions.PurgeInterval, logger)
	reaper.Start()
	defer reaper.Stop()

	// HTTP surface
	renderer, err := handler.NewRenderer(logger)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	authMW := auth.NewMiddleware(sessionService, auth.Config{
		CookieName:   cfg.Sessions.CookieName,
		CookieSecure: cfg.Sessions.CookieSecure,
	}, logger)

	router := handler.NewRouter(handler.Config{
		Users:       handler.NewUserHandler(userService, sessionService, authMW, renderer, logger),
		Campgrounds: handler.NewCampgroundHandler(campgroundService, reviewService, userService, renderer, logger),
		Reviews:     handler.NewReviewHandler(reviewService, logger),
		Health:      handler.NewHealthHandler(dbHealth),
		AuthMW:      authMW,
		Metrics:     m,
		MaxBodySize: cfg.Server.MaxBodySize,
		AssetDir:    assetDir,
	}, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(campgroundService, reviewService),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildRepositories opens the configured database, runs migrations, and
// returns the repository set.
func buildRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck
			return nil, nil, err
		}
		return &repository.Repositories{
			User:       sqlite.NewUserRepository(db),
			Session:    sqlite.NewSessionRepository(db),
			Campground: sqlite.NewCampgroundRepository(db),
			Review:     sqlite.NewReviewRepository(db),
		}, db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck
			return nil, nil, err
		}
		return &repository.Repositories{
			User:       postgres.NewUserRepository(db),
			Session:    postgres.NewSessionRepository(db),
			Campground: postgres.NewCampgroundRepository(db),
			Review:     postgres.NewReviewRepository(db),
		}, db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// buildAssetStore selects the configured asset backend. The returned
// directory is non-empty only for the filesystem backend, which the router
// serves directly.
func buildAssetStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (asset.Store, string, error) {
	switch cfg.Assets.Backend {
	case "s3":
		store, err := asset.NewS3Store(ctx, cfg.Assets.S3, logger)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil

	case "filesystem":
		baseURL := cfg.Assets.PublicBaseURL
		if baseURL == "" {
			baseURL = "/assets"
		}
		store, err := asset.NewFilesystemStore(cfg.Assets.DataDir, baseURL, logger)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.Assets.DataDir, nil

	default:
		return nil, "", fmt.Errorf("unsupported asset backend: %s", cfg.Assets.Backend)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
