// Package auth provides cookie-session authentication and ownership guards
// for Wildpitch. A request is authenticated when its session cookie resolves
// to a live session bound to a user; ownership of the target aggregate is
// the sole mutation predicate.
package auth

import (
	"context"

	"github.com/wildpitch/wildpitch/internal/domain"
)

// contextKey is a private type for context keys defined in this package.
type contextKey int

const (
	principalKey contextKey = iota
	sessionTokenKey
)

// Principal is the authenticated user attached to a request.
type Principal struct {
	// UserID is the authenticated user's ID.
	UserID int64

	// User is the full user record.
	User *domain.User
}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom retrieves the authenticated principal from a request
// context. Returns nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

// WithSessionToken returns a context carrying the presented session token.
// Present even for anonymous sessions that only carry a return target.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, token)
}

// SessionTokenFrom retrieves the presented session token, or "" when the
// request carried no valid session cookie.
func SessionTokenFrom(ctx context.Context) string {
	if token, ok := ctx.Value(sessionTokenKey).(string); ok {
		return token
	}
	return ""
}
