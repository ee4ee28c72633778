package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// reviewRepository implements repository.ReviewRepository for SQLite.
type reviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new SQLite review repository.
func NewReviewRepository(db *DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// Create creates a new review attached to its parent campground.
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (campground_id, author_id, rating, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		review.CampgroundID,
		review.AuthorID,
		review.Rating,
		review.Body,
		review.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	review.ID = id

	return nil
}

// GetByID retrieves a review by ID.
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := `
		SELECT id, campground_id, author_id, rating, body, created_at
		FROM reviews
		WHERE id = ?
	`

	review := &domain.Review{}
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID,
		&review.CampgroundID,
		&review.AuthorID,
		&review.Rating,
		&review.Body,
		&createdAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	review.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return review, nil
}

// ListByCampground returns the ordered review sequence of a campground.
func (r *reviewRepository) ListByCampground(ctx context.Context, campgroundID int64) ([]*domain.Review, error) {
	query := `
		SELECT id, campground_id, author_id, rating, body, created_at
		FROM reviews
		WHERE campground_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, campgroundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review := &domain.Review{}
		var createdAt string

		err := rows.Scan(
			&review.ID,
			&review.CampgroundID,
			&review.AuthorID,
			&review.Rating,
			&review.Body,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		review.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// Delete removes a review scoped to its parent campground.
func (r *reviewRepository) Delete(ctx context.Context, id, campgroundID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND campground_id = ?`,
		id, campgroundID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrReviewNotFound
	}

	return nil
}

// CountByCampground returns the number of reviews on a campground.
func (r *reviewRepository) CountByCampground(ctx context.Context, campgroundID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE campground_id = ?`, campgroundID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// Ensure reviewRepository implements repository.ReviewRepository.
var _ repository.ReviewRepository = (*reviewRepository)(nil)
