package ports

import (
	"context"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// PlayerSession pairs a freshly created or resolved player with their token.
type PlayerSession struct {
	Token string
	User  *domain.User
}

// PlayerAuthService onboards players and resolves their session tokens.
// Tokens are opaque and live in the injected TokenStore, outside the core
// state machine.
type PlayerAuthService interface {
	// RegisterGuest creates an anonymous player and issues a token.
	RegisterGuest(ctx context.Context) (*PlayerSession, error)
	// Register creates a player with an optional phone and username.
	Register(ctx context.Context, phone, username string) (*PlayerSession, error)
	// Resolve maps a token back to a user ID.
	Resolve(ctx context.Context, token string) (string, error)
	// Me returns the player's profile.
	Me(ctx context.Context, userID string) (*domain.User, error)
}
