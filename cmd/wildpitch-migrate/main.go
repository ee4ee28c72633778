// Package main is the entry point for the Wildpitch database migration tool.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/config"
	"github.com/wildpitch/wildpitch/internal/repository/postgres"
	"github.com/wildpitch/wildpitch/internal/repository/sqlite"
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
		fmt.Printf("Wildpitch Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := migrateUp(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migrations applied")

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func migrateUp() error {
	cfg := config.MustLoad(os.Getenv("WILDPITCH_CONFIG"))
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		return db.Migrate(ctx)

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		return db.Migrate(ctx)

	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func printUsage() {
	fmt.Println(`Wildpitch Migration Tool

Usage:
  wildpitch-migrate <command>

Commands:
  up          Apply all pending migrations
  version     Print version information
  help        Show this help message

Environment Variables:
  WILDPITCH_CONFIG            Path to the config file (optional)
  WILDPITCH_DATABASE_DRIVER   Database driver: postgres or sqlite
  WILDPITCH_DATABASE_PATH     SQLite database file path

Examples:
  wildpitch-migrate up
  WILDPITCH_DATABASE_DRIVER=postgres wildpitch-migrate up`)
}
