// Package service provides business logic services for Wildpitch.
package service

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password: must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email format")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")

	// Campground errors
	ErrCampgroundNotFound = errors.New("campground not found")
	ErrInvalidCampground  = errors.New("invalid campground data")
	ErrNotOwner           = errors.New("caller does not own this resource")
	ErrDeleteInProgress   = errors.New("deletion already in progress")

	// Review errors
	ErrReviewNotFound   = errors.New("review not found")
	ErrInvalidReview    = errors.New("invalid review data")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
