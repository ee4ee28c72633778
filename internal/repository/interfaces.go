// Package repository defines data access interfaces for Wildpitch.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/wildpitch/wildpitch/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrUserAlreadyExists on a
	// duplicate email and domain.ErrDisplayNameTaken on a duplicate
	// display name; neither leaves a partial record.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ListWithoutDisplayName returns users whose display name is unset.
	// Used by the backfill repair pass.
	ListWithoutDisplayName(ctx context.Context) ([]*domain.User, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByDisplayName checks if a user with the given display name exists.
	ExistsByDisplayName(ctx context.Context, displayName string) (bool, error)
}

// =============================================================================
// Session Repository
// =============================================================================

// SessionRepository defines the interface for session data access.
// Sessions live in the same durable store as users so a server restart does
// not invalidate live sessions.
type SessionRepository interface {
	// Create creates a new session record.
	Create(ctx context.Context, session *domain.Session) error

	// GetByToken retrieves a session by token. Returns
	// domain.ErrSessionNotFound for unknown tokens; expiry filtering is the
	// service's concern.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// Touch extends the expiry of a session (sliding window).
	Touch(ctx context.Context, token string, expiresAt time.Time) error

	// SetReturnTo stores the post-login return target.
	SetReturnTo(ctx context.Context, token string, path *string) error

	// Delete removes a session by token. Deleting an unknown token is not
	// an error: destroy is idempotent.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all sessions past their expiry and returns the
	// number removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// =============================================================================
// Campground Repository
// =============================================================================

// CampgroundRepository defines the interface for campground data access.
type CampgroundRepository interface {
	// Create creates a new campground together with its image references.
	Create(ctx context.Context, cg *domain.Campground) error

	// GetByID retrieves a campground with its images.
	GetByID(ctx context.Context, id int64) (*domain.Campground, error)

	// List returns all campgrounds with their images, newest first.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.Campground], error)

	// Update updates campground fields and appends any new image
	// references. The author reference is never altered.
	Update(ctx context.Context, cg *domain.Campground) error

	// DeleteImages removes specific image references from a campground and
	// returns the storage keys of the removed rows.
	DeleteImages(ctx context.Context, campgroundID int64, imageIDs []int64) ([]string, error)

	// DeleteCascade removes the campground, every review attached to it and
	// every image reference in one transaction, returning the storage keys
	// of the removed images. Returns domain.ErrCampgroundNotFound when the
	// row is already gone, so of two concurrent deletes only one cascades.
	DeleteCascade(ctx context.Context, id int64) (storageKeys []string, err error)
}

// =============================================================================
// Review Repository
// =============================================================================

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	// Create creates a new review attached to its parent campground.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by ID.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// ListByCampground returns the ordered review sequence of a campground.
	ListByCampground(ctx context.Context, campgroundID int64) ([]*domain.Review, error)

	// Delete removes a review scoped to its parent campground. Returns
	// domain.ErrReviewNotFound when no such row exists under that parent.
	Delete(ctx context.Context, id, campgroundID int64) error

	// CountByCampground returns the number of reviews on a campground.
	CountByCampground(ctx context.Context, campgroundID int64) (int64, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
