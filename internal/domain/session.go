package domain

import (
	"time"
)

// DefaultSessionTTL is the sliding expiry window for sessions.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session is a server-held record binding an opaque token to a user.
// The token is a pure capability: it carries no principal data, so resolving
// it always requires a store lookup, which makes revocation on destroy
// immediate and complete.
type Session struct {
	// Token is the unguessable opaque identifier delivered to the client
	// as a cookie value.
	Token string `json:"-"`

	// UserID is the bound principal, or nil for an anonymous pre-auth
	// session that only carries a return target.
	UserID *int64 `json:"user_id,omitempty"`

	// ReturnTo is the path an anonymous request was trying to reach when it
	// was redirected to login. Consumed (read-once) on the next successful
	// login.
	ReturnTo *string `json:"-"`

	// ExpiresAt is the sliding expiry. Each successful resolve within the
	// window pushes it out by the TTL.
	ExpiresAt time.Time `json:"expires_at"`

	// CreatedAt is the timestamp when the session was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the session was last touched.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session bound to a user.
func NewSession(token string, userID int64, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     token,
		UserID:    &userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewAnonymousSession creates a principal-less session used only to carry a
// post-login return target.
func NewAnonymousSession(token string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsAuthenticated reports whether a principal is bound to this session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil
}
