package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// campgroundRepository implements repository.CampgroundRepository for SQLite.
type campgroundRepository struct {
	db *DB
}

// NewCampgroundRepository creates a new SQLite campground repository.
func NewCampgroundRepository(db *DB) repository.CampgroundRepository {
	return &campgroundRepository{db: db}
}

// Create creates a new campground together with its image references.
func (r *campgroundRepository) Create(ctx context.Context, cg *domain.Campground) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO campgrounds (title, description, location, price, longitude, latitude, author_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		var lng, lat *float64
		if cg.Geometry != nil {
			lng, lat = &cg.Geometry.Longitude, &cg.Geometry.Latitude
		}

		result, err := tx.ExecContext(ctx, query,
			cg.Title,
			cg.Description,
			cg.Location,
			cg.Price,
			lng,
			lat,
			nullableID(cg.AuthorID),
			cg.CreatedAt.Format(time.RFC3339),
			cg.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to create campground: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		cg.ID = id

		return insertImages(ctx, tx, cg.ID, cg.Images)
	})
}

// GetByID retrieves a campground with its images.
func (r *campgroundRepository) GetByID(ctx context.Context, id int64) (*domain.Campground, error) {
	query := `
		SELECT id, title, description, location, price, longitude, latitude, author_id, created_at, updated_at
		FROM campgrounds
		WHERE id = ?
	`

	cg, err := scanCampground(r.db.QueryRowContext(ctx, query, id))
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campgrounds`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count campgrounds: %w", err)
	}

	query := `
		SELECT id, title, description, location, price, longitude, latitude, author_id, created_at, updated_at
		FROM campgrounds
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := r.db.QueryContext(ctx, query, limit, opts.Offset)
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

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE campgrounds
			SET title = ?, description = ?, location = ?, price = ?, longitude = ?, latitude = ?, updated_at = ?
			WHERE id = ?
		`

		var lng, lat *float64
		if cg.Geometry != nil {
			lng, lat = &cg.Geometry.Longitude, &cg.Geometry.Latitude
		}

		result, err := tx.ExecContext(ctx, query,
			cg.Title,
			cg.Description,
			cg.Location,
			cg.Price,
			lng,
			lat,
			cg.UpdatedAt.Format(time.RFC3339),
			cg.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update campground: %w", err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
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

	var keys []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(imageIDs)), ",")
		args := make([]interface{}, 0, len(imageIDs)+1)
		args = append(args, campgroundID)
		for _, id := range imageIDs {
			args = append(args, id)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT storage_key FROM campground_images WHERE campground_id = ? AND id IN (`+placeholders+`)`,
			args...,
		)
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

		_, err = tx.ExecContext(ctx,
			`DELETE FROM campground_images WHERE campground_id = ? AND id IN (`+placeholders+`)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// DeleteCascade removes the campground, its reviews and its image references
// in one transaction. Reviews go first so a crash mid-sequence can only leave
// harmless orphans, never a still-referenced dependent.
func (r *campgroundRepository) DeleteCascade(ctx context.Context, id int64) ([]string, error) {
	var keys []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT storage_key FROM campground_images WHERE campground_id = ?`, id)
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

		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE campground_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM campground_images WHERE campground_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM campgrounds WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete campground: %w", err)
		}

		// Zero rows means another delete already cascaded this campground.
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
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

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(campgroundIDs)), ",")
	args := make([]interface{}, len(campgroundIDs))
	for i, id := range campgroundIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, campground_id, url, storage_key, position
		 FROM campground_images
		 WHERE campground_id IN (`+placeholders+`)
		 ORDER BY campground_id, position, id`,
		args...,
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

func insertImages(ctx context.Context, tx *sql.Tx, campgroundID int64, images []domain.Image) error {
	for i, img := range images {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO campground_images (campground_id, url, storage_key, position) VALUES (?, ?, ?, ?)`,
			campgroundID, img.URL, img.StorageKey, img.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
		id, _ := result.LastInsertId()
		images[i].ID = id
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCampground(row scanner) (*domain.Campground, error) {
	cg := &domain.Campground{}
	var lng, lat sql.NullFloat64
	var authorID sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(
		&cg.ID,
		&cg.Title,
		&cg.Description,
		&cg.Location,
		&cg.Price,
		&lng,
		&lat,
		&authorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCampgroundNotFound
		}
		return nil, fmt.Errorf("failed to scan campground: %w", err)
	}

	if lng.Valid && lat.Valid {
		cg.Geometry = &domain.Point{Longitude: lng.Float64, Latitude: lat.Float64}
	}
	if authorID.Valid {
		cg.AuthorID = authorID.Int64
	}
	cg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	cg.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return cg, nil
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// Ensure campgroundRepository implements repository.CampgroundRepository.
var _ repository.CampgroundRepository = (*campgroundRepository)(nil)
