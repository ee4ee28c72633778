package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/metrics"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// ReviewService handles the review lifecycle. Reviews are leaf entities:
// they attach to exactly one campground and never outlive it.
type ReviewService struct {
	reviewRepo     repository.ReviewRepository
	campgroundRepo repository.CampgroundRepository
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewReviewService creates a new ReviewService. Metrics may be nil.
func NewReviewService(reviewRepo repository.ReviewRepository, campgroundRepo repository.CampgroundRepository, m *metrics.Metrics, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:     reviewRepo,
		campgroundRepo: campgroundRepo,
		metrics:        m,
		logger:         logger.With().Str("service", "review").Logger(),
	}
}

// CreateReviewInput contains the data needed to create a review.
type CreateReviewInput struct {
	CampgroundID int64  `validate:"required"`
	AuthorID     int64  `validate:"required"`
	Rating       int    `validate:"min=1,max=5"`
	Body         string `validate:"required"`
}

// CreateReviewOutput contains the created review.
type CreateReviewOutput struct {
	Review *domain.Review
}

// Create attaches a new review to a campground. The parent must exist;
// the rating must be within bounds and the body non-empty.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*CreateReviewOutput, error) {
	input.Body = strings.TrimSpace(input.Body)

	review := domain.NewReview(input.CampgroundID, input.AuthorID, input.Rating, input.Body)
	if err := review.Validate(); err != nil {
		if errors.Is(err, domain.ErrRatingOutOfRange) {
			return nil, ErrRatingOutOfRange
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}

	// The parent must exist before the review is written; a concurrent
	// cascade delete after this check is absorbed by the foreign key.
	if _, err := s.campgroundRepo.GetByID(ctx, input.CampgroundID); err != nil {
		if errors.Is(err, domain.ErrCampgroundNotFound) {
			return nil, ErrCampgroundNotFound
		}
		s.logger.Error().Err(err).Int64("campground_id", input.CampgroundID).Msg("failed to check campground")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		s.logger.Error().Err(err).Int64("campground_id", input.CampgroundID).Msg("failed to create review")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.metrics.IncReviewsCreated()
	s.logger.Info().
		Int64("review_id", review.ID).
		Int64("campground_id", review.CampgroundID).
		Int("rating", review.Rating).
		Msg("review created")

	return &CreateReviewOutput{Review: review}, nil
}

// GetByID retrieves a review by ID.
func (s *ReviewService) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		s.logger.Error().Err(err).Int64("review_id", id).Msg("failed to get review")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return review, nil
}

// ListByCampground returns the ordered review sequence of a campground.
func (s *ReviewService) ListByCampground(ctx context.Context, campgroundID int64) ([]*domain.Review, error) {
	reviews, err := s.reviewRepo.ListByCampground(ctx, campgroundID)
	if err != nil {
		s.logger.Error().Err(err).Int64("campground_id", campgroundID).Msg("failed to list reviews")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return reviews, nil
}

// Delete removes a single review from a campground. Only the review's
// author may delete it; the parent campground is untouched.
func (s *ReviewService) Delete(ctx context.Context, id, campgroundID, callerID int64) error {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if review.CampgroundID != campgroundID {
		return ErrReviewNotFound
	}

	if !review.IsOwnedBy(callerID) {
		return ErrNotOwner
	}

	if err := s.reviewRepo.Delete(ctx, id, campgroundID); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		s.logger.Error().Err(err).Int64("review_id", id).Msg("failed to delete review")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("review_id", id).
		Int64("campground_id", campgroundID).
		Msg("review deleted")

	return nil
}
