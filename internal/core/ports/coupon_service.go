package ports

import (
	"context"
	"time"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// CouponViewStatus is the derived, read-only status reported by Check.
type CouponViewStatus string

const (
	CouponValid   CouponViewStatus = "valid"
	CouponUsed    CouponViewStatus = "used"
	CouponExpired CouponViewStatus = "expired"
)

// CouponView is the read-only lookup result for a coupon code.
type CouponView struct {
	Code      string
	FishType  domain.FishType
	Value     int
	Status    CouponViewStatus
	UsedAt    *time.Time
	ExpiresAt time.Time
}

// RedemptionResult is returned on a successful redemption.
type RedemptionResult struct {
	Code     string
	Value    int
	FishType domain.FishType
	UsedAt   time.Time
}

// CouponService owns coupon issuance (harvest) and redemption.
type CouponService interface {
	// Harvest converts an adult fish into a coupon: mint, remove the fish,
	// and bump the owner's lifetime counter as one atomic set of effects.
	Harvest(ctx context.Context, fishID string) (*domain.Coupon, error)

	// Check is a read-only status lookup; it never mutates the coupon.
	Check(ctx context.Context, code string) (*CouponView, error)

	// Redeem marks the coupon used exactly once on behalf of an active
	// staff actor. Concurrent attempts on the same code yield one success;
	// all others observe domain.ErrCouponAlreadyUsed.
	Redeem(ctx context.Context, code string, staffID string) (*RedemptionResult, error)
}
