package ports

import (
	"context"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// FeedOrigin tags a feed request with the caller's network origin, recorded
// in the feeding audit trail.
type FeedOrigin struct {
	IPAddress string
	UserAgent string
}

// GameState is the full per-user view returned to the client.
type GameState struct {
	Fish          []*domain.Fish
	Coupons       []*domain.Coupon // unused only
	RemainingFeed int
}

// FeedResult is returned on a successful feed.
type FeedResult struct {
	Fish          *domain.Fish
	RemainingFeed int
}

// GameService composes the feed quota, the fish lifecycle, and the coupon
// views into the player-facing operations.
type GameService interface {
	// GetState resets the daily quota on day rollover, then returns the
	// user's fish, unused coupons, and remaining feed count.
	GetState(ctx context.Context, userID string) (*GameState, error)
	AddFish(ctx context.Context, userID string, fishType string) (*domain.Fish, error)
	// Feed fails with domain.ErrFishDead on dead fish and
	// domain.ErrQuotaExhausted when the daily allowance is spent; neither
	// failure mutates the fish.
	Feed(ctx context.Context, fishID string, origin FeedOrigin) (*FeedResult, error)
	// ListCoupons returns all of the user's coupons, most-recent-first.
	ListCoupons(ctx context.Context, userID string) ([]*domain.Coupon, error)
}
