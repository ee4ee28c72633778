package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/domain"
)

func newTestReviewService() (*ReviewService, *mockReviewRepository, *mockCampgroundRepository) {
	reviewRepo := new(mockReviewRepository)
	cgRepo := new(mockCampgroundRepository)
	svc := NewReviewService(reviewRepo, cgRepo, nil, zerolog.Nop())
	return svc, reviewRepo, cgRepo
}

func TestReviewService_Create(t *testing.T) {
	parent := &domain.Campground{ID: 9, Title: "Upper Pines", AuthorID: 1}

	tests := []struct {
		name    string
		input   CreateReviewInput
		setup   func(*mockReviewRepository, *mockCampgroundRepository)
		wantErr error
	}{
		{
			name:  "success",
			input: CreateReviewInput{CampgroundID: 9, AuthorID: 2, Rating: 4, Body: "Great views."},
			setup: func(reviewRepo *mockReviewRepository, cgRepo *mockCampgroundRepository) {
				cgRepo.On("GetByID", mock.Anything, int64(9)).Return(parent, nil)
				reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)
			},
		},
		{
			name:    "rating too low",
			input:   CreateReviewInput{CampgroundID: 9, AuthorID: 2, Rating: 0, Body: "Meh."},
			setup:   func(reviewRepo *mockReviewRepository, cgRepo *mockCampgroundRepository) {},
			wantErr: ErrRatingOutOfRange,
		},
		{
			name:    "rating too high",
			input:   CreateReviewInput{CampgroundID: 9, AuthorID: 2, Rating: 6, Body: "Eleven."},
			setup:   func(reviewRepo *mockReviewRepository, cgRepo *mockCampgroundRepository) {},
			wantErr: ErrRatingOutOfRange,
		},
		{
			name:    "blank body",
			input:   CreateReviewInput{CampgroundID: 9, AuthorID: 2, Rating: 3, Body: "   "},
			setup:   func(reviewRepo *mockReviewRepository, cgRepo *mockCampgroundRepository) {},
			wantErr: ErrInvalidReview,
		},
		{
			name:  "parent campground missing",
			input: CreateReviewInput{CampgroundID: 404, AuthorID: 2, Rating: 3, Body: "Orphan."},
			setup: func(reviewRepo *mockReviewRepository, cgRepo *mockCampgroundRepository) {
				cgRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, domain.ErrCampgroundNotFound)
			},
			wantErr: ErrCampgroundNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reviewRepo, cgRepo := newTestReviewService()
			tt.setup(reviewRepo, cgRepo)

			out, err := svc.Create(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, int64(9), out.Review.CampgroundID)
				require.Equal(t, "Great views.", out.Review.Body)
			}

			mock.AssertExpectationsForObjects(t, reviewRepo, cgRepo)
		})
	}
}

func TestReviewService_Delete(t *testing.T) {
	stored := &domain.Review{ID: 50, CampgroundID: 9, AuthorID: 2, Rating: 4, Body: "Great views."}

	t.Run("author deletes own review", func(t *testing.T) {
		svc, reviewRepo, _ := newTestReviewService()
		reviewRepo.On("GetByID", mock.Anything, int64(50)).Return(stored, nil)
		reviewRepo.On("Delete", mock.Anything, int64(50), int64(9)).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), 50, 9, 2))
		reviewRepo.AssertExpectations(t)
	})

	t.Run("non-author denied", func(t *testing.T) {
		svc, reviewRepo, _ := newTestReviewService()
		reviewRepo.On("GetByID", mock.Anything, int64(50)).Return(stored, nil)

		err := svc.Delete(context.Background(), 50, 9, 3)
		require.ErrorIs(t, err, ErrNotOwner)
		reviewRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong parent scope reads as missing", func(t *testing.T) {
		svc, reviewRepo, _ := newTestReviewService()
		reviewRepo.On("GetByID", mock.Anything, int64(50)).Return(stored, nil)

		err := svc.Delete(context.Background(), 50, 8, 2)
		require.ErrorIs(t, err, ErrReviewNotFound)
	})

	t.Run("unknown review", func(t *testing.T) {
		svc, reviewRepo, _ := newTestReviewService()
		reviewRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, domain.ErrReviewNotFound)

		err := svc.Delete(context.Background(), 404, 9, 2)
		require.ErrorIs(t, err, ErrReviewNotFound)
	})
}
