package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

const defaultDailyFeedLimit = 10

// GameService implements the player-facing game operations: state snapshot,
// adding fish, feeding within the daily quota, and listing coupons.
type GameService struct {
	users     ports.UserRepository
	fish      ports.FishRepository
	coupons   ports.CouponRepository
	feedings  ports.FeedingRepository
	feedLimit int
	logger    zerolog.Logger
}

func NewGameService(
	users ports.UserRepository,
	fish ports.FishRepository,
	coupons ports.CouponRepository,
	feedings ports.FeedingRepository,
	feedLimit int,
	logger zerolog.Logger,
) *GameService {
	if feedLimit <= 0 {
		feedLimit = defaultDailyFeedLimit
	}
	return &GameService{
		users:     users,
		fish:      fish,
		coupons:   coupons,
		feedings:  feedings,
		feedLimit: feedLimit,
		logger:    logger,
	}
}

// GetState returns the user's fish, unused coupons, and remaining feed
// count, applying the day-rollover quota reset first.
func (s *GameService) GetState(ctx context.Context, userID string) (*ports.GameState, error) {
	if err := s.users.ResetDailyFeed(ctx, userID, today(), s.feedLimit); err != nil {
		return nil, fmt.Errorf("reset daily feed: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fishes, err := s.fish.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list fish: %w", err)
	}

	coupons, err := s.coupons.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	return &ports.GameState{
		Fish:          fishes,
		Coupons:       coupons,
		RemainingFeed: user.DailyFeedCount,
	}, nil
}

// AddFish creates a new baby fish for the user at a random tank position.
func (s *GameService) AddFish(ctx context.Context, userID string, fishType string) (*domain.Fish, error) {
	ft, err := domain.ParseFishType(fishType)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fish := &domain.Fish{
		UserID:    userID,
		Type:      ft,
		Status:    domain.StatusBaby,
		Hunger:    100,
		Health:    100,
		Growth:    0,
		PosX:      10 + rand.Float64()*80,
		PosY:      20 + rand.Float64()*60,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.fish.Create(ctx, fish)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create fish")
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("fish_type", string(ft)).Msg("fish added")
	return created, nil
}

// Feed spends one unit of the owner's daily quota on the fish and applies
// the growth/hunger mutation. Order matters: the dead check precedes the
// quota consume so a dead-fish attempt never burns quota, and the consume is
// a single conditional decrement so two concurrent feeds cannot both take
// the last unit.
func (s *GameService) Feed(ctx context.Context, fishID string, origin ports.FeedOrigin) (*ports.FeedResult, error) {
	fish, err := s.fish.FindByID(ctx, fishID)
	if err != nil {
		return nil, err
	}

	if fish.Status == domain.StatusDead {
		return nil, domain.ErrFishDead
	}

	if err := s.users.ResetDailyFeed(ctx, fish.UserID, today(), s.feedLimit); err != nil {
		return nil, fmt.Errorf("reset daily feed: %w", err)
	}

	remaining, err := s.users.ConsumeFeed(ctx, fish.UserID)
	if err != nil {
		return nil, err
	}

	fish.ApplyFeed()
	fish.UpdatedAt = time.Now().UTC()
	if err := s.fish.Update(ctx, fish); err != nil {
		return nil, fmt.Errorf("persist fish: %w", err)
	}

	// Audit trail for anti-abuse analysis. Failure to record is logged but
	// does not fail the feed.
	record := &domain.FeedingRecord{
		UserID:    fish.UserID,
		FishID:    fish.ID,
		IPAddress: origin.IPAddress,
		UserAgent: origin.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.feedings.Insert(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("fish_id", fish.ID).Msg("failed to insert feeding record")
	}

	s.logger.Info().
		Str("fish_id", fish.ID).
		Str("user_id", fish.UserID).
		Str("status", string(fish.Status)).
		Float64("growth", fish.Growth).
		Int("remaining_feed", remaining).
		Msg("fish fed")

	return &ports.FeedResult{Fish: fish, RemainingFeed: remaining}, nil
}

// ListCoupons returns all of the user's coupons, most-recent-first.
func (s *GameService) ListCoupons(ctx context.Context, userID string) ([]*domain.Coupon, error) {
	return s.coupons.ListByUser(ctx, userID, false)
}

// today is the calendar date the quota keys on.
func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
