package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

type stubTokenStore struct {
	mu     sync.Mutex
	byToken map[string]string
	seq    int
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{byToken: make(map[string]string)}
}

func (s *stubTokenStore) Issue(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	token := fmt.Sprintf("token_%d", s.seq)
	s.byToken[token] = userID
	return token, nil
}

func (s *stubTokenStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.byToken[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

func (s *stubTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

func TestPlayerAuthService_RegisterGuest(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenStore()
	svc := NewPlayerAuthService(users, tokens, discardLogger)

	session, err := svc.RegisterGuest(context.Background())
	if err != nil {
		t.Fatalf("guest registration failed: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a session token")
	}
	if session.User.Username != domain.DefaultUsername {
		t.Errorf("expected default username %q, got %q", domain.DefaultUsername, session.User.Username)
	}

	userID, err := svc.Resolve(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if userID != session.User.ID {
		t.Errorf("token resolves to %q, want %q", userID, session.User.ID)
	}
}

func TestPlayerAuthService_Register_KeepsUsername(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenStore()
	svc := NewPlayerAuthService(users, tokens, discardLogger)

	session, err := svc.Register(context.Background(), "13800138000", "pondkeeper")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if session.User.Username != "pondkeeper" || session.User.Phone != "13800138000" {
		t.Errorf("unexpected user: %+v", session.User)
	}
}

func TestPlayerAuthService_Resolve_UnknownToken(t *testing.T) {
	svc := NewPlayerAuthService(newStubUserRepo(), newStubTokenStore(), discardLogger)

	_, err := svc.Resolve(context.Background(), "token_404")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPlayerAuthService_Me(t *testing.T) {
	users := newStubUserRepo()
	svc := NewPlayerAuthService(users, newStubTokenStore(), discardLogger)

	session, err := svc.RegisterGuest(context.Background())
	if err != nil {
		t.Fatalf("guest registration failed: %v", err)
	}

	me, err := svc.Me(context.Background(), session.User.ID)
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if me.ID != session.User.ID {
		t.Errorf("expected user %q, got %q", session.User.ID, me.ID)
	}

	if _, err := svc.Me(context.Background(), "user_404"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
