package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/domain"
)

func newTestUserService() (*UserService, *mockUserRepository) {
	userRepo := new(mockUserRepository)
	svc := NewUserService(userRepo, zerolog.Nop())
	return svc, userRepo
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name     string
		input    RegisterInput
		setup    func(*mockUserRepository)
		wantErr  error
		wantName *string
	}{
		{
			name:  "success with derived display name",
			input: RegisterInput{Email: "hiker@example.com", Password: "trailmix99"},
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("ExistsByEmail", mock.Anything, "hiker@example.com").Return(false, nil)
				userRepo.On("ExistsByDisplayName", mock.Anything, "hiker").Return(false, nil)
				userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
			wantName: strPtr("hiker"),
		},
		{
			name:  "display name taken leaves it unset",
			input: RegisterInput{Email: "hiker@other.com", Password: "trailmix99"},
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("ExistsByEmail", mock.Anything, "hiker@other.com").Return(false, nil)
				userRepo.On("ExistsByDisplayName", mock.Anything, "hiker").Return(true, nil)
				userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
			wantName: nil,
		},
		{
			name:  "email normalized before checks",
			input: RegisterInput{Email: "  Hiker@Example.COM ", Password: "trailmix99"},
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("ExistsByEmail", mock.Anything, "hiker@example.com").Return(false, nil)
				userRepo.On("ExistsByDisplayName", mock.Anything, "hiker").Return(false, nil)
				userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
			},
			wantName: strPtr("hiker"),
		},
		{
			name:  "duplicate email",
			input: RegisterInput{Email: "taken@example.com", Password: "trailmix99"},
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)
			},
			wantErr: ErrUserAlreadyExists,
		},
		{
			name:    "invalid email",
			input:   RegisterInput{Email: "not-an-email", Password: "trailmix99"},
			setup:   func(userRepo *mockUserRepository) {},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "short password",
			input:   RegisterInput{Email: "short@example.com", Password: "hunter2"},
			setup:   func(userRepo *mockUserRepository) {},
			wantErr: ErrInvalidPassword,
		},
		{
			name:  "display name race retried without one",
			input: RegisterInput{Email: "racer@example.com", Password: "trailmix99"},
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("ExistsByEmail", mock.Anything, "racer@example.com").Return(false, nil)
				userRepo.On("ExistsByDisplayName", mock.Anything, "racer").Return(false, nil)
				userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.DisplayName != nil
				})).Return(domain.ErrDisplayNameTaken).Once()
				userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.DisplayName == nil
				})).Return(nil).Once()
			},
			wantName: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo := newTestUserService()
			tt.setup(userRepo)

			out, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.NotNil(t, out.User)
				if tt.wantName == nil {
					require.Nil(t, out.User.DisplayName)
				} else {
					require.NotNil(t, out.User.DisplayName)
					require.Equal(t, *tt.wantName, *out.User.DisplayName)
				}
			}

			userRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	stored := &domain.User{ID: 7, Email: "hiker@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(*mockUserRepository)
		wantErr  error
	}{
		{
			name:     "success",
			email:    "hiker@example.com",
			password: "correct-horse",
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "hiker@example.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "hiker@example.com",
			password: "wrong-horse",
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "hiker@example.com").Return(stored, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown email maps to the same error",
			email:    "ghost@example.com",
			password: "correct-horse",
			setup: func(userRepo *mockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo := newTestUserService()
			tt.setup(userRepo)

			user, err := svc.Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, int64(7), user.ID)
			}

			userRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	hash, err := HashPassword("old-password")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		svc, userRepo := newTestUserService()
		stored := &domain.User{ID: 3, Email: "hiker@example.com", PasswordHash: hash}
		userRepo.On("GetByID", mock.Anything, int64(3)).Return(stored, nil)
		userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return VerifyPassword(u.PasswordHash, "new-password")
		})).Return(nil)

		err := svc.UpdatePassword(context.Background(), UpdatePasswordInput{
			UserID:      3,
			OldPassword: "old-password",
			NewPassword: "new-password",
		})
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("wrong old password", func(t *testing.T) {
		svc, userRepo := newTestUserService()
		stored := &domain.User{ID: 3, Email: "hiker@example.com", PasswordHash: hash}
		userRepo.On("GetByID", mock.Anything, int64(3)).Return(stored, nil)

		err := svc.UpdatePassword(context.Background(), UpdatePasswordInput{
			UserID:      3,
			OldPassword: "not-it",
			NewPassword: "new-password",
		})
		require.ErrorIs(t, err, ErrInvalidCredentials)
		userRepo.AssertExpectations(t)
	})
}

func TestUserService_BackfillDisplayNames(t *testing.T) {
	svc, userRepo := newTestUserService()

	users := []*domain.User{
		{ID: 1, Email: "alpha@example.com"},
		{ID: 2, Email: "taken@example.com"},
	}
	userRepo.On("ListWithoutDisplayName", mock.Anything).Return(users, nil)
	userRepo.On("ExistsByDisplayName", mock.Anything, "alpha").Return(false, nil)
	userRepo.On("ExistsByDisplayName", mock.Anything, "taken").Return(true, nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == 1 && u.DisplayName != nil && *u.DisplayName == "alpha"
	})).Return(nil)

	out, err := svc.BackfillDisplayNames(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Updated)
	require.Equal(t, 1, out.Skipped)
	userRepo.AssertExpectations(t)
}

func strPtr(s string) *string {
	return &s
}
