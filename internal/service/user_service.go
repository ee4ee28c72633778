// Package service provides business logic services for Wildpitch.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// UserService handles user registration and credential management.
type UserService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput contains the data needed to register a new user.
type RegisterInput struct {
	Email    string
	Password string
}

// RegisterOutput contains the result of registering a user.
type RegisterOutput struct {
	User *domain.User
}

// Register creates a new user account. The public display name is derived
// from the email local part; if another user already claimed that name the
// account is created without one rather than failing registration.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	// Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email '%s'", ErrUserAlreadyExists, input.Email)
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(input.Email, passwordHash)

	if name := domain.DeriveDisplayName(input.Email); name != "" {
		taken, err := s.userRepo.ExistsByDisplayName(ctx, name)
		if err != nil {
			s.logger.Error().Err(err).Str("display_name", name).Msg("failed to check display name")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if !taken {
			user.DisplayName = &name
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create user")
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%w: email '%s'", ErrUserAlreadyExists, input.Email)
		}
		// Display name raced with another registration; retry without one.
		if errors.Is(err, domain.ErrDisplayNameTaken) {
			user.DisplayName = nil
			if err := s.userRepo.Create(ctx, user); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
			}
		} else {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Bool("has_display_name", user.DisplayName != nil).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// Authenticate verifies user credentials and returns the user.
// The error never reveals whether the email or the password was wrong.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Log but don't expose whether the account exists
		s.logger.Debug().Str("email", email).Msg("user not found during authentication")
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.logger.Debug().Str("email", email).Msg("invalid password during authentication")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user authenticated")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// UpdatePasswordInput contains the data needed to update a password.
type UpdatePasswordInput struct {
	UserID      int64
	OldPassword string
	NewPassword string
}

// UpdatePassword changes a user's password.
func (s *UserService) UpdatePassword(ctx context.Context, input UpdatePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !VerifyPassword(user.PasswordHash, input.OldPassword) {
		return ErrInvalidCredentials
	}

	newHash, err := HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password updated")
	return nil
}

// ListUsersInput contains pagination options for listing users.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// ListUsersOutput contains the result of listing users.
type ListUsersOutput struct {
	Users      []*domain.User
	TotalCount int64
}

// List returns all users with pagination.
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*ListUsersOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	result, err := s.userRepo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListUsersOutput{
		Users:      result.Items,
		TotalCount: result.Total,
	}, nil
}

// BackfillDisplayNamesOutput reports the result of a backfill run.
type BackfillDisplayNamesOutput struct {
	Updated int
	Skipped int
}

// BackfillDisplayNames assigns derived display names to accounts created
// without one. Accounts whose derived name is still taken are skipped and
// counted, not failed.
func (s *UserService) BackfillDisplayNames(ctx context.Context) (*BackfillDisplayNamesOutput, error) {
	users, err := s.userRepo.ListWithoutDisplayName(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users without display name")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	out := &BackfillDisplayNamesOutput{}
	for _, user := range users {
		name := domain.DeriveDisplayName(user.Email)
		if name == "" {
			out.Skipped++
			continue
		}

		taken, err := s.userRepo.ExistsByDisplayName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if taken {
			out.Skipped++
			continue
		}

		user.DisplayName = &name
		user.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDisplayNameTaken) {
				out.Skipped++
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		out.Updated++
	}

	s.logger.Info().
		Int("updated", out.Updated).
		Int("skipped", out.Skipped).
		Msg("display name backfill complete")

	return out, nil
}

// validateRegisterInput validates the input for registering a user.
func (s *UserService) validateRegisterInput(input RegisterInput) error {
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidEmail
	}

	if len(input.Password) < MinPasswordLength {
		return ErrInvalidPassword
	}

	return nil
}
