// Package repository provides the data access layer for Wildpitch.
// This file groups the repository set handed to the service layer.
package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Campground CampgroundRepository
	Review     ReviewRepository
}

// DatabaseHealth is an interface for database health checks.
// This interface satisfies handler.DatabaseChecker for health endpoints.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
