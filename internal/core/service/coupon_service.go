package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

// codeIssueAttempts bounds regeneration on unique-code collisions. With 32
// bits of entropy per code a second collision in a row is effectively a
// storage fault, not bad luck.
const codeIssueAttempts = 3

var couponCodePattern = regexp.MustCompile(`^` + domain.CouponCodePrefix + `[0-9A-F]{8}$`)

// CouponService implements issuance (harvest) and redemption.
type CouponService struct {
	coupons ports.CouponRepository
	fish    ports.FishRepository
	admins  ports.AdminRepository
	logger  zerolog.Logger
}

func NewCouponService(
	coupons ports.CouponRepository,
	fish ports.FishRepository,
	admins ports.AdminRepository,
	logger zerolog.Logger,
) *CouponService {
	return &CouponService{coupons: coupons, fish: fish, admins: admins, logger: logger}
}

// Harvest converts an adult fish into a coupon. Mint, fish removal, and the
// owner's lifetime counter increment are one atomic set; a code collision is
// retried with a fresh code.
func (s *CouponService) Harvest(ctx context.Context, fishID string) (*domain.Coupon, error) {
	fish, err := s.fish.FindByID(ctx, fishID)
	if err != nil {
		return nil, err
	}

	if fish.Status != domain.StatusAdult {
		return nil, domain.ErrFishNotAdult
	}

	spec := fish.Type.Spec()
	now := time.Now().UTC()

	var lastErr error
	for attempt := 0; attempt < codeIssueAttempts; attempt++ {
		coupon := &domain.Coupon{
			UserID:    fish.UserID,
			Code:      generateCouponCode(),
			FishType:  fish.Type,
			Value:     spec.CouponValue,
			ExpiresAt: now.Add(domain.CouponTTL),
			CreatedAt: now,
		}

		created, err := s.coupons.IssueForHarvest(ctx, coupon, fish.ID)
		if err != nil {
			if errors.Is(err, domain.ErrCodeCollision) {
				s.logger.Warn().Str("code", coupon.Code).Msg("coupon code collision, regenerating")
				lastErr = err
				continue
			}
			return nil, err
		}

		s.logger.Info().
			Str("fish_id", fish.ID).
			Str("user_id", fish.UserID).
			Str("code", created.Code).
			Int("value", created.Value).
			Msg("fish harvested")
		return created, nil
	}

	return nil, fmt.Errorf("issue coupon: %w", lastErr)
}

// Check looks up a coupon's derived status without mutating it.
func (s *CouponService) Check(ctx context.Context, code string) (*ports.CouponView, error) {
	normalized, err := normalizeCouponCode(code)
	if err != nil {
		return nil, err
	}

	coupon, err := s.coupons.FindByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	view := &ports.CouponView{
		Code:      coupon.Code,
		FishType:  coupon.FishType,
		Value:     coupon.Value,
		Status:    ports.CouponValid,
		UsedAt:    coupon.UsedAt,
		ExpiresAt: coupon.ExpiresAt,
	}
	switch {
	case coupon.Used:
		view.Status = ports.CouponUsed
	case coupon.Expired(time.Now().UTC()):
		view.Status = ports.CouponExpired
	}
	return view, nil
}

// Redeem marks the coupon used exactly once. The decisive write is the
// conditional mark-used in the repository; losing that race is reported as
// already-used with the winner's timestamp.
func (s *CouponService) Redeem(ctx context.Context, code string, staffID string) (*ports.RedemptionResult, error) {
	staff, err := s.admins.FindByID(ctx, staffID)
	if err != nil || !staff.Active {
		return nil, domain.ErrStaffUnauthorized
	}

	normalized, err := normalizeCouponCode(code)
	if err != nil {
		return nil, err
	}

	coupon, err := s.coupons.FindByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if coupon.Used {
		return nil, usedError(coupon)
	}
	if coupon.Expired(time.Now().UTC()) {
		return nil, domain.ErrCouponExpired
	}

	now := time.Now().UTC()
	updated, err := s.coupons.MarkUsed(ctx, normalized, staff.Username, now)
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			// Lost the race: another staff actor redeemed between our read
			// and the conditional write. Report their redemption.
			if winner, ferr := s.coupons.FindByCode(ctx, normalized); ferr == nil && winner.Used {
				return nil, usedError(winner)
			}
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("mark coupon used: %w", err)
	}

	s.logger.Info().
		Str("code", updated.Code).
		Str("staff", staff.Username).
		Int("value", updated.Value).
		Msg("coupon redeemed")

	usedAt := now
	if updated.UsedAt != nil {
		usedAt = *updated.UsedAt
	}
	return &ports.RedemptionResult{
		Code:     updated.Code,
		Value:    updated.Value,
		FishType: updated.FishType,
		UsedAt:   usedAt,
	}, nil
}

func usedError(c *domain.Coupon) error {
	e := &domain.CouponUsedError{UsedBy: c.UsedBy}
	if c.UsedAt != nil {
		e.UsedAt = *c.UsedAt
	}
	return e
}

// normalizeCouponCode uppercases the code and validates the OF + 8 hex
// format. Codes are generated uppercase, so lookups are case-insensitive.
func normalizeCouponCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !couponCodePattern.MatchString(normalized) {
		return "", domain.ErrMalformedCouponCode
	}
	return normalized, nil
}

// generateCouponCode returns a code in the format OFXXXXXXXX (8 hex chars).
func generateCouponCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%s%08X", domain.CouponCodePrefix, time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("%s%08X", domain.CouponCodePrefix, b)
}
