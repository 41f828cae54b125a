package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

// PlayerAuthService onboards players (guest or registered) and issues their
// session tokens through the injected token store.
type PlayerAuthService struct {
	users  ports.UserRepository
	tokens ports.TokenStore
	logger zerolog.Logger
}

func NewPlayerAuthService(users ports.UserRepository, tokens ports.TokenStore, logger zerolog.Logger) *PlayerAuthService {
	return &PlayerAuthService{users: users, tokens: tokens, logger: logger}
}

// RegisterGuest creates an anonymous player account and issues a token.
func (s *PlayerAuthService) RegisterGuest(ctx context.Context) (*ports.PlayerSession, error) {
	return s.Register(ctx, "", "")
}

// Register creates a player with an optional phone number. An empty username
// falls back to the guest default.
func (s *PlayerAuthService) Register(ctx context.Context, phone, username string) (*ports.PlayerSession, error) {
	if username == "" {
		username = domain.DefaultUsername
	}

	now := time.Now().UTC()
	user := &domain.User{
		Phone:     phone,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("player registered")
	return &ports.PlayerSession{Token: token, User: created}, nil
}

// Resolve maps a session token back to its user ID.
func (s *PlayerAuthService) Resolve(ctx context.Context, token string) (string, error) {
	return s.tokens.Resolve(ctx, token)
}

// Me returns the player's profile.
func (s *PlayerAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
