// Package service provides business logic services for Wildpitch.
package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wildpitch/wildpitch/internal/asset"
	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// =============================================================================
// Mock Repository Types
// =============================================================================

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListResult[domain.User]), args.Error(1)
}

func (m *mockUserRepository) ListWithoutDisplayName(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ExistsByDisplayName(ctx context.Context, displayName string) (bool, error) {
	args := m.Called(ctx, displayName)
	return args.Bool(0), args.Error(1)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepository) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	args := m.Called(ctx, token, expiresAt)
	return args.Error(0)
}

func (m *mockSessionRepository) SetReturnTo(ctx context.Context, token string, path *string) error {
	args := m.Called(ctx, token, path)
	return args.Error(0)
}

func (m *mockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockCampgroundRepository struct {
	mock.Mock
}

func (m *mockCampgroundRepository) Create(ctx context.Context, cg *domain.Campground) error {
	args := m.Called(ctx, cg)
	return args.Error(0)
}

func (m *mockCampgroundRepository) GetByID(ctx context.Context, id int64) (*domain.Campground, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campground), args.Error(1)
}

func (m *mockCampgroundRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Campground], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListResult[domain.Campground]), args.Error(1)
}

func (m *mockCampgroundRepository) Update(ctx context.Context, cg *domain.Campground) error {
	args := m.Called(ctx, cg)
	return args.Error(0)
}

func (m *mockCampgroundRepository) DeleteImages(ctx context.Context, campgroundID int64, imageIDs []int64) ([]string, error) {
	args := m.Called(ctx, campgroundID, imageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCampgroundRepository) DeleteCascade(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByCampground(ctx context.Context, campgroundID int64) ([]*domain.Review, error) {
	args := m.Called(ctx, campgroundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id, campgroundID int64) error {
	args := m.Called(ctx, id, campgroundID)
	return args.Error(0)
}

func (m *mockReviewRepository) CountByCampground(ctx context.Context, campgroundID int64) (int64, error) {
	args := m.Called(ctx, campgroundID)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Mock Asset Store and Geocoder
// =============================================================================

type mockAssetStore struct {
	mock.Mock
}

func (m *mockAssetStore) Upload(ctx context.Context, reader io.Reader, contentType string) (*asset.StoredAsset, error) {
	args := m.Called(ctx, reader, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.StoredAsset), args.Error(1)
}

func (m *mockAssetStore) Delete(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Forward(ctx context.Context, location string) (*domain.Point, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Point), args.Error(1)
}
