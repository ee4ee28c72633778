// Package domain contains the core business entities for Wildpitch.
package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrDisplayNameTaken indicates the display name is already in use.
	ErrDisplayNameTaken = errors.New("display name already taken")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Session Errors
	// ===========================================

	// ErrSessionNotFound indicates the session token is unknown or expired.
	// Resolving an expired token is indistinguishable from resolving an
	// unknown one.
	ErrSessionNotFound = errors.New("session not found")

	// ===========================================
	// Campground Errors
	// ===========================================

	// ErrCampgroundNotFound indicates the requested campground does not exist.
	ErrCampgroundNotFound = errors.New("campground not found")

	// ErrNotOwner indicates the authenticated user did not create the
	// targeted aggregate. A normal user-facing outcome, not a system fault.
	ErrNotOwner = errors.New("not the owner")

	// ===========================================
	// Review Errors
	// ===========================================

	// ErrReviewNotFound indicates the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrRatingOutOfRange indicates the rating is outside 1-5.
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

	// ErrEmptyReviewBody indicates the review body is missing.
	ErrEmptyReviewBody = errors.New("review body must not be empty")

	// ===========================================
	// Asset Errors
	// ===========================================

	// ErrAssetNotFound indicates the requested asset does not exist.
	ErrAssetNotFound = errors.New("asset not found")
)
