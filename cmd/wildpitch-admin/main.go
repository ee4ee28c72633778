// Package main is the entry point for the Wildpitch admin CLI.
// This tool provides administrative commands for managing users and sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/config"
	"github.com/wildpitch/wildpitch/internal/repository"
	"github.com/wildpitch/wildpitch/internal/repository/postgres"
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
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Wildpitch Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		runUser(os.Args[2:])

	case "sessions":
		runSessions(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUser(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "user: missing subcommand (create, list, backfill-names)")
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		email := fs.String("email", "", "email address for the new account")
		password := fs.String("password", "", "password for the new account")
		configPath := fs.String("config", "", "path to config file")
		fs.Parse(args[1:]) //nolint:errcheck

		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "user create: --email and --password are required")
			os.Exit(1)
		}

		withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.SessionService) error {
			out, err := users.Register(ctx, service.RegisterInput{
				Email:    *email,
				Password: *password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %d (%s)\n", out.User.ID, out.User.Handle())
			return nil
		})

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		limit := fs.Int("limit", 50, "maximum users to list")
		configPath := fs.String("config", "", "path to config file")
		fs.Parse(args[1:]) //nolint:errcheck

		withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.SessionService) error {
			out, err := users.List(ctx, service.ListUsersInput{Limit: *limit})
			if err != nil {
				return err
			}
			for _, u := range out.Users {
				fmt.Printf("%d\t%s\t%s\n", u.ID, u.Email, u.Handle())
			}
			fmt.Printf("%d of %d users\n", len(out.Users), out.TotalCount)
			return nil
		})

	case "backfill-names":
		fs := flag.NewFlagSet("user backfill-names", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		fs.Parse(args[1:]) //nolint:errcheck

		withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.SessionService) error {
			out, err := users.BackfillDisplayNames(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backfill complete: %d updated, %d skipped\n", out.Updated, out.Skipped)
			return nil
		})

	default:
		fmt.Fprintf(os.Stderr, "user: unknown subcommand %q\n", args[0])
		os.Exit(1)
	}
}

func runSessions(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "sessions: missing subcommand (purge)")
		os.Exit(1)
	}

	switch args[0] {
	case "purge":
		fs := flag.NewFlagSet("sessions purge", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		fs.Parse(args[1:]) //nolint:errcheck

		withServices(*configPath, func(ctx context.Context, _ *service.UserService, sessions *service.SessionService) error {
			purged, err := sessions.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d expired sessions\n", purged)
			return nil
		})

	default:
		fmt.Fprintf(os.Stderr, "sessions: unknown subcommand %q\n", args[0])
		os.Exit(1)
	}
}

// withServices opens the configured database, runs fn with the admin-facing
// services, and exits non-zero on failure.
func withServices(configPath string, fn func(context.Context, *service.UserService, *service.SessionService) error) {
	cfg := config.MustLoad(configPath)
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, health, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer health.Close() //nolint:errcheck

	users := service.NewUserService(repos.User, logger)
	sessions := service.NewSessionService(repos.Session, repos.User, cfg.Sessions.TTL, nil, logger)

	if err := fn(ctx, users, sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
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

func printUsage() {
	fmt.Println(`Wildpitch Admin CLI

Usage:
  wildpitch-admin <command> [arguments]

Commands:
  user        Manage users (create, list, backfill-names)
  sessions    Manage sessions (purge)
  version     Print version information
  help        Show this help message

Examples:
  wildpitch-admin user create --email admin@example.com --password secret123
  wildpitch-admin user list --limit 100
  wildpitch-admin user backfill-names
  wildpitch-admin sessions purge

Use "wildpitch-admin <command> --help" for more information about a command.`)
}
