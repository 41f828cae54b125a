package ports

import "context"

// TokenStore owns player session tokens. It lives outside the core game
// state machine; the Redis implementation is the authoritative one, but any
// store honoring these semantics can be injected.
type TokenStore interface {
	// Issue creates an opaque token resolving to userID until it expires.
	Issue(ctx context.Context, userID string) (string, error)
	// Resolve returns the user ID a token maps to, or
	// domain.ErrInvalidToken when the token is unknown or expired.
	Resolve(ctx context.Context, token string) (string, error)
	// Revoke invalidates a token. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
}
