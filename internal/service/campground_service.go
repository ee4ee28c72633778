package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/asset"
	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/geocode"
	"github.com/wildpitch/wildpitch/internal/lock"
	"github.com/wildpitch/wildpitch/internal/metrics"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// validate is the shared struct validator for service inputs.
var validate = validator.New()

// deleteLockTTL bounds how long a cascade-delete lock can be held.
const deleteLockTTL = 30 * time.Second

// CampgroundService handles the campground aggregate lifecycle:
// create, update, and cascading delete.
type CampgroundService struct {
	campgroundRepo repository.CampgroundRepository
	reviewRepo     repository.ReviewRepository
	assets         asset.Store
	geocoder       geocode.Geocoder
	locker         lock.Locker
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewCampgroundService creates a new CampgroundService. Metrics may be nil.
func NewCampgroundService(
	campgroundRepo repository.CampgroundRepository,
	reviewRepo repository.ReviewRepository,
	assets asset.Store,
	geocoder geocode.Geocoder,
	locker lock.Locker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CampgroundService {
	return &CampgroundService{
		campgroundRepo: campgroundRepo,
		reviewRepo:     reviewRepo,
		assets:         assets,
		geocoder:       geocoder,
		locker:         locker,
		metrics:        m,
		logger:         logger.With().Str("service", "campground").Logger(),
	}
}

// ImageUpload is a pending image attachment.
type ImageUpload struct {
	Content     io.Reader
	ContentType string
}

// CreateCampgroundInput contains the data needed to create a campground.
type CreateCampgroundInput struct {
	AuthorID    int64   `validate:"required"`
	Title       string  `validate:"required,max=200"`
	Description string  `validate:"required"`
	Location    string  `validate:"required,max=200"`
	Price       float64 `validate:"gte=0"`
	Images      []ImageUpload
}

// CreateCampgroundOutput contains the created campground.
type CreateCampgroundOutput struct {
	Campground *domain.Campground
}

// Create creates a campground owned by the calling user. Images are stored
// before the record is written; geocoding is best-effort and a failure
// leaves the campground without coordinates.
func (s *CampgroundService) Create(ctx context.Context, input CreateCampgroundInput) (*CreateCampgroundOutput, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCampground, err)
	}

	images, err := s.uploadImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	cg := domain.NewCampground(input.Title, input.Description, input.Location, input.Price, input.AuthorID)
	cg.Images = images

	if point, err := s.geocoder.Forward(ctx, input.Location); err == nil {
		cg.Geometry = point
	} else if !errors.Is(err, geocode.ErrNoResult) {
		s.logger.Warn().Err(err).Str("location", input.Location).Msg("geocoding failed")
	}

	if err := s.campgroundRepo.Create(ctx, cg); err != nil {
		s.logger.Error().Err(err).Msg("failed to create campground")
		// The record never existed, so stored images are orphans; reclaim them.
		s.deleteAssets(ctx, imageKeys(images))
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.metrics.IncCampgroundsCreated()
	s.logger.Info().
		Int64("campground_id", cg.ID).
		Int64("author_id", cg.AuthorID).
		Int("images", len(cg.Images)).
		Msg("campground created")

	return &CreateCampgroundOutput{Campground: cg}, nil
}

// GetByID retrieves a campground with its images.
func (s *CampgroundService) GetByID(ctx context.Context, id int64) (*domain.Campground, error) {
	cg, err := s.campgroundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCampgroundNotFound) {
			return nil, ErrCampgroundNotFound
		}
		s.logger.Error().Err(err).Int64("campground_id", id).Msg("failed to get campground")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return cg, nil
}

// ListCampgroundsInput contains pagination options for listing campgrounds.
type ListCampgroundsInput struct {
	Limit  int
	Offset int
}

// ListCampgroundsOutput contains the result of listing campgrounds.
type ListCampgroundsOutput struct {
	Campgrounds []*domain.Campground
	TotalCount  int64

	// ReviewCounts holds the number of reviews per campground ID.
	ReviewCounts map[int64]int64
}

// List returns campgrounds newest first, with their review counts.
func (s *CampgroundService) List(ctx context.Context, input ListCampgroundsInput) (*ListCampgroundsOutput, error) {
	result, err := s.campgroundRepo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list campgrounds")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	counts := make(map[int64]int64, len(result.Items))
	for _, cg := range result.Items {
		count, err := s.reviewRepo.CountByCampground(ctx, cg.ID)
		if err != nil {
			s.logger.Error().Err(err).Int64("campground_id", cg.ID).Msg("failed to count reviews")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		counts[cg.ID] = count
	}

	return &ListCampgroundsOutput{
		Campgrounds:  result.Items,
		TotalCount:   result.Total,
		ReviewCounts: counts,
	}, nil
}

// UpdateCampgroundInput contains the data needed to update a campground.
type UpdateCampgroundInput struct {
	ID          int64   `validate:"required"`
	CallerID    int64   `validate:"required"`
	Title       string  `validate:"required,max=200"`
	Description string  `validate:"required"`
	Location    string  `validate:"required,max=200"`
	Price       float64 `validate:"gte=0"`

	// NewImages are appended to the existing attachment list.
	NewImages []ImageUpload

	// DeleteImageIDs detaches existing images by ID.
	DeleteImageIDs []int64
}

// Update modifies a campground's fields. Only the owner may update;
// ownership itself never changes. Detached image assets are removed
// best-effort after the record is saved.
func (s *CampgroundService) Update(ctx context.Context, input UpdateCampgroundInput) (*domain.Campground, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCampground, err)
	}

	cg, err := s.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if !cg.IsOwnedBy(input.CallerID) {
		return nil, ErrNotOwner
	}

	newImages, err := s.uploadImages(ctx, input.NewImages)
	if err != nil {
		return nil, err
	}

	locationChanged := cg.Location != input.Location

	cg.Title = input.Title
	cg.Description = input.Description
	cg.Location = input.Location
	cg.Price = input.Price

	// Appended images continue the existing ordering rather than
	// restarting at zero, which would interleave them with the old rows.
	next := 0
	for _, img := range cg.Images {
		if img.Position >= next {
			next = img.Position + 1
		}
	}
	for j := range newImages {
		newImages[j].Position = next + j
	}
	cg.Images = append(cg.Images, newImages...)

	if locationChanged {
		if point, err := s.geocoder.Forward(ctx, input.Location); err == nil {
			cg.Geometry = point
		} else {
			if !errors.Is(err, geocode.ErrNoResult) {
				s.logger.Warn().Err(err).Str("location", input.Location).Msg("geocoding failed")
			}
			cg.Geometry = nil
		}
	}

	if err := s.campgroundRepo.Update(ctx, cg); err != nil {
		s.deleteAssets(ctx, imageKeys(newImages))
		if errors.Is(err, domain.ErrCampgroundNotFound) {
			return nil, ErrCampgroundNotFound
		}
		s.logger.Error().Err(err).Int64("campground_id", cg.ID).Msg("failed to update campground")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if len(input.DeleteImageIDs) > 0 {
		keys, err := s.campgroundRepo.DeleteImages(ctx, cg.ID, input.DeleteImageIDs)
		if err != nil {
			s.logger.Error().Err(err).Int64("campground_id", cg.ID).Msg("failed to detach images")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		s.deleteAssets(ctx, keys)

		kept := cg.Images[:0]
		deleted := make(map[int64]bool, len(input.DeleteImageIDs))
		for _, id := range input.DeleteImageIDs {
			deleted[id] = true
		}
		for _, img := range cg.Images {
			if !deleted[img.ID] {
				kept = append(kept, img)
			}
		}
		cg.Images = kept
	}

	s.logger.Info().Int64("campground_id", cg.ID).Msg("campground updated")
	return cg, nil
}

// Delete removes a campground and everything attached to it: reviews,
// image references, and the stored image assets. Only the owner may delete.
// A per-campground lock serializes concurrent deletes so the cascade runs
// once; the loser observes ErrCampgroundNotFound.
func (s *CampgroundService) Delete(ctx context.Context, id, callerID int64) error {
	cg, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !cg.IsOwnedBy(callerID) {
		return ErrNotOwner
	}

	key := lock.Keys.CampgroundDelete(id)
	acquired, err := s.locker.AcquireWithRetry(ctx, key, deleteLockTTL, 3, 100*time.Millisecond)
	if err != nil {
		s.logger.Error().Err(err).Int64("campground_id", id).Msg("failed to acquire delete lock")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		return ErrDeleteInProgress
	}
	defer func() {
		if _, err := s.locker.Release(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to release delete lock")
		}
	}()

	keys, err := s.campgroundRepo.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCampgroundNotFound) {
			return ErrCampgroundNotFound
		}
		s.logger.Error().Err(err).Int64("campground_id", id).Msg("cascade delete failed")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// Asset deletes run after the transaction committed: a failed delete
	// leaves an orphaned file, never a dangling database reference.
	s.deleteAssets(ctx, keys)

	s.metrics.IncCampgroundsDeleted()
	s.logger.Info().
		Int64("campground_id", id).
		Int("assets_removed", len(keys)).
		Msg("campground deleted")

	return nil
}

// uploadImages stores pending uploads and returns their image records.
// On a mid-batch failure the already-stored assets are reclaimed.
func (s *CampgroundService) uploadImages(ctx context.Context, uploads []ImageUpload) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(uploads))
	for i, up := range uploads {
		stored, err := s.assets.Upload(ctx, up.Content, up.ContentType)
		if err != nil {
			s.deleteAssets(ctx, imageKeys(images))
			if errors.Is(err, asset.ErrUnsupportedContentType) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidCampground, err)
			}
			s.logger.Error().Err(err).Msg("failed to store image")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		images = append(images, domain.Image{
			URL:        stored.URL,
			StorageKey: stored.StorageKey,
			Position:   i,
		})
	}
	return images, nil
}

// deleteAssets removes stored assets best-effort. Every key is attempted
// even when earlier deletes fail.
func (s *CampgroundService) deleteAssets(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.assets.Delete(ctx, key); err != nil && !errors.Is(err, asset.ErrAssetNotFound) {
			s.metrics.IncAssetDeleteFailure()
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to delete asset")
		}
	}
}

// imageKeys extracts the storage keys of a set of images.
func imageKeys(images []domain.Image) []string {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.StorageKey)
	}
	return keys
}
