package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// campgroundRepository implements repository.CampgroundRepository for PostgreSQL.
type campgroundRepository struct {
	db *DB
}

// NewCampgroundRepository creates a new PostgreSQL campground repository.
func NewCampgroundRepository(db *DB) repository.CampgroundRepository {
	return &campgroundRepository{db: db}
}

// Create creates a new campground together with its image references.
func (r *campgroundRepository) Create(ctx context.Context, cg *domain.Campground) error {
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		query := `
			INSERT INTO campgrounds (title, description, location, price, longitude, latitude, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`

		var lng, lat *float64
		if cg.Geometry != nil {
			lng, lat = &cg.Geometry.Longitude, &cg.Geometry.Latitude
		}
		var authorID *int64
		if cg.AuthorID != 0 {
			authorID = &cg.AuthorID
		}

		err := tx.QueryRow(ctx, query,
			cg.Title,
			cg.Description,
			cg.Location,
			cg.Price,
			lng,
			lat,
			authorID,
			cg.CreatedAt,
			cg.UpdatedAt,
		).Scan(&cg.ID)
		if err != nil {
			return fmt.Errorf("failed to create campground: %w", err)
		}

		return insertImages(ctx, tx, cg.ID, cg.Images)
	})
}

// GetByID retrieves a campground with its images.
func (r *campgroundRepository) GetByID(ctx context.Context, id int64) (*domain.Campground, error) {
	query := `
		SELECT id, title, description, location, price, longitude, latitude, author_id, created_at, updated_at
		FROM campgrounds
		WHERE id = $1
	`

	cg, err := scanCampground(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	images, err := r.listImages(ctx, []int64{cg.ID})
	if err != nil {
		return nil, err
	}
	cg.Images = images[cg.ID]

	return cg, nil
}

// List returns all campgrounds with their images, newest first.
func (r *campgroundRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Campground], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM campgrounds`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count campgrounds: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = int(total)
	}

	query := `
		SELECT id, title, description, location, price, longitude, latitude, author_id, created_at, updated_at
		FROM campgrounds
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campgrounds: %w", err)
	}
	defer rows.Close()

	var campgrounds []*domain.Campground
	var ids []int64
	for rows.Next() {
		cg, err := scanCampground(rows)
		if err != nil {
			return nil, err
		}
		campgrounds = append(campgrounds, cg)
		ids = append(ids, cg.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campgrounds: %w", err)
	}

	images, err := r.listImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, cg := range campgrounds {
		cg.Images = images[cg.ID]
	}

	return &repository.ListResult[domain.Campground]{
		Items:  campgrounds,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// Update updates campground fields and appends any new image references.
// The author reference is never altered.
func (r *campgroundRepository) Update(ctx context.Context, cg *domain.Campground) error {
	cg.UpdatedAt = time.Now().UTC()

	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		query := `
			UPDATE campgrounds
			SET title = $1, description = $2, location = $3, price = $4, longitude = $5, latitude = $6, updated_at = $7
			WHERE id = $8
		`

		var lng, lat *float64
		if cg.Geometry != nil {
			lng, lat = &cg.Geometry.Longitude, &cg.Geometry.Latitude
		}

		result, err := tx.Exec(ctx, query,
			cg.Title,
			cg.Description,
			cg.Location,
			cg.Price,
			lng,
			lat,
			cg.UpdatedAt,
			cg.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update campground: %w", err)
		}

		if result.RowsAffected() == 0 {
			return domain.ErrCampgroundNotFound
		}

		var newImages []domain.Image
		for _, img := range cg.Images {
			if img.ID == 0 {
				newImages = append(newImages, img)
			}
		}
		return insertImages(ctx, tx, cg.ID, newImages)
	})
}

// DeleteImages removes specific image references from a campground and
// returns the storage keys of the removed rows.
func (r *campgroundRepository) DeleteImages(ctx context.Context, campgroundID int64, imageIDs []int64) ([]string, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Pool.Query(ctx,
		`DELETE FROM campground_images WHERE campground_id = $1 AND id = ANY($2) RETURNING storage_key`,
		campgroundID, imageIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan image key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image keys: %w", err)
	}

	return keys, nil
}

// DeleteCascade removes the campground, its reviews and its image references
// in one transaction. Reviews go first so a crash mid-sequence can only leave
// harmless orphans, never a still-referenced dependent.
func (r *campgroundRepository) DeleteCascade(ctx context.Context, id int64) ([]string, error) {
	var keys []string
	err := r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT storage_key FROM campground_images WHERE campground_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to select image keys: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				return fmt.Errorf("failed to scan image key: %w", err)
			}
			keys = append(keys, key)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating image keys: %w", err)
		}
		rows.Close()

		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE campground_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM campground_images WHERE campground_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM campgrounds WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete campground: %w", err)
		}

		// Zero rows means another delete already cascaded this campground.
		if result.RowsAffected() == 0 {
			return domain.ErrCampgroundNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *campgroundRepository) listImages(ctx context.Context, campgroundIDs []int64) (map[int64][]domain.Image, error) {
	images := make(map[int64][]domain.Image)
	if len(campgroundIDs) == 0 {
		return images, nil
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, campground_id, url, storage_key, position
		 FROM campground_images
		 WHERE campground_id = ANY($1)
		 ORDER BY campground_id, position, id`,
		campgroundIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.Image
		var cgID int64
		if err := rows.Scan(&img.ID, &cgID, &img.URL, &img.StorageKey, &img.Position); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images[cgID] = append(images[cgID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

func insertImages(ctx context.Context, tx pgx.Tx, campgroundID int64, images []domain.Image) error {
	for i := range images {
		err := tx.QueryRow(ctx,
			`INSERT INTO campground_images (campground_id, url, storage_key, position) VALUES ($1, $2, $3, $4) RETURNING id`,
			campgroundID, images[i].URL, images[i].StorageKey, images[i].Position,
		).Scan(&images[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}
	return nil
}

func scanCampground(row pgx.Row) (*domain.Campground, error) {
	cg := &domain.Campground{}
	var lng, lat *float64
	var authorID *int64

	err := row.Scan(
		&cg.ID,
		&cg.Title,
		&cg.Description,
		&cg.Location,
		&cg.Price,
		&lng,
		&lat,
		&authorID,
		&cg.CreatedAt,
		&cg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampgroundNotFound
		}
		return nil, fmt.Errorf("failed to scan campground: %w", err)
	}

	if lng != nil && lat != nil {
		cg.Geometry = &domain.Point{Longitude: *lng, Latitude: *lat}
	}
	if authorID != nil {
		cg.AuthorID = *authorID
	}

	return cg, nil
}

// Ensure campgroundRepository implements repository.CampgroundRepository.
var _ repository.CampgroundRepository = (*campgroundRepository)(nil)
