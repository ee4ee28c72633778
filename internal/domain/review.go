package domain

import (
	"strings"
	"time"
)

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rating+text leaf entity scoped to exactly one campground.
// A review cannot outlive its campground; deleting the campground deletes
// every review attached to it.
type Review struct {
	// ID is the unique identifier for the review (auto-generated).
	ID int64 `json:"id"`

	// CampgroundID is the parent campground.
	CampgroundID int64 `json:"campground_id"`

	// AuthorID is the user who wrote the review. A non-owning
	// back-reference used only for authorization lookups.
	AuthorID int64 `json:"author_id"`

	// Rating is the numeric rating, bounded 1-5 inclusive.
	Rating int `json:"rating"`

	// Body is the free-text review content.
	Body string `json:"body"`

	// CreatedAt is the timestamp when the review was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewReview creates a new Review.
func NewReview(campgroundID, authorID int64, rating int, body string) *Review {
	return &Review{
		CampgroundID: campgroundID,
		AuthorID:     authorID,
		Rating:       rating,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}
}

// ValidRating reports whether the rating is within bounds.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Validate checks the review's business invariants.
func (r *Review) Validate() error {
	if !ValidRating(r.Rating) {
		return ErrRatingOutOfRange
	}
	if strings.TrimSpace(r.Body) == "" {
		return ErrEmptyReviewBody
	}
	return nil
}

// IsOwnedBy reports whether the given user wrote this review.
func (r *Review) IsOwnedBy(userID int64) bool {
	return r.AuthorID == userID
}
