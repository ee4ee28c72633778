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

// sessionRepository implements repository.SessionRepository for PostgreSQL.
type sessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session record.
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, return_to, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		session.Token,
		session.UserID,
		session.ReturnTo,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByToken retrieves a session by token.
func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT token, user_id, return_to, expires_at, created_at, updated_at
		FROM sessions
		WHERE token = $1
	`

	session := &domain.Session{}
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.ReturnTo,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// Touch extends the expiry of a session (sliding window).
func (r *sessionRepository) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE sessions SET expires_at = $1, updated_at = $2 WHERE token = $3`,
		expiresAt, time.Now().UTC(), token,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// SetReturnTo stores the post-login return target.
func (r *sessionRepository) SetReturnTo(ctx context.Context, token string, path *string) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE sessions SET return_to = $1, updated_at = $2 WHERE token = $3`,
		path, time.Now().UTC(), token,
	)
	if err != nil {
		return fmt.Errorf("failed to set return target: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session by token. A missing row is not an error.
func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

// Ensure sessionRepository implements repository.SessionRepository.
var _ repository.SessionRepository = (*sessionRepository)(nil)
