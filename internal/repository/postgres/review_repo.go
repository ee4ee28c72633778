package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// reviewRepository implements repository.ReviewRepository for PostgreSQL.
type reviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// Create creates a new review.
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (campground_id, author_id, rating, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		review.CampgroundID,
		review.AuthorID,
		review.Rating,
		review.Body,
		review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := `
		SELECT id, campground_id, author_id, rating, body, created_at
		FROM reviews
		WHERE id = $1
	`

	review := &domain.Review{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.CampgroundID,
		&review.AuthorID,
		&review.Rating,
		&review.Body,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// ListByCampground returns all reviews for a campground in submission order.
func (r *reviewRepository) ListByCampground(ctx context.Context, campgroundID int64) ([]*domain.Review, error) {
	query := `
		SELECT id, campground_id, author_id, rating, body, created_at
		FROM reviews
		WHERE campground_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, campgroundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review := &domain.Review{}
		err := rows.Scan(
			&review.ID,
			&review.CampgroundID,
			&review.AuthorID,
			&review.Rating,
			&review.Body,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// Delete removes a review scoped to its parent campground.
func (r *reviewRepository) Delete(ctx context.Context, id, campgroundID int64) error {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reviews WHERE id = $1 AND campground_id = $2`,
		id, campgroundID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}

	return nil
}

// CountByCampground returns the number of reviews attached to a campground.
func (r *reviewRepository) CountByCampground(ctx context.Context, campgroundID int64) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE campground_id = $1`,
		campgroundID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	return count, nil
}

// Ensure reviewRepository implements repository.ReviewRepository.
var _ repository.ReviewRepository = (*reviewRepository)(nil)
