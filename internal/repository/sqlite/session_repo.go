package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// sessionRepository implements repository.SessionRepository for SQLite.
// Sessions share the durable store with users so server restarts do not
// invalidate live sessions.
type sessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session record.
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, return_to, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.ReturnTo,
		session.ExpiresAt.Format(time.RFC3339),
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
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
		WHERE token = ?
	`

	session := &domain.Session{}
	var userID sql.NullInt64
	var returnTo sql.NullString
	var expiresAt, createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&userID,
		&returnTo,
		&expiresAt,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if userID.Valid {
		session.UserID = &userID.Int64
	}
	if returnTo.Valid {
		session.ReturnTo = &returnTo.String
	}
	session.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	session.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	session.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return session, nil
}

// Touch extends the expiry of a session (sliding window).
func (r *sessionRepository) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = ?, updated_at = ? WHERE token = ?`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		expiresAt.Format(time.RFC3339),
		now.Format(time.RFC3339),
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// SetReturnTo stores the post-login return target.
func (r *sessionRepository) SetReturnTo(ctx context.Context, token string, path *string) error {
	query := `UPDATE sessions SET return_to = ?, updated_at = ? WHERE token = ?`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query, path, now.Format(time.RFC3339), token)
	if err != nil {
		return fmt.Errorf("failed to set return target: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session by token. A missing row is not an error.
func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Ensure sessionRepository implements repository.SessionRepository.
var _ repository.SessionRepository = (*sessionRepository)(nil)
