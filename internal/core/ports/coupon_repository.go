package ports

import (
	"context"
	"time"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// CouponTotals aggregates issuance/redemption counters for the dashboard.
type CouponTotals struct {
	TotalIssued      int64
	TotalUsed        int64
	TotalValueIssued int64
	TotalValueUsed   int64
}

// CouponRepository defines persistence operations for coupons, including the
// two concurrency-sensitive writes of the core state machine.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// ListByUser returns the user's coupons most-recent-first. With
	// unusedOnly set, redeemed coupons are filtered out.
	ListByUser(ctx context.Context, userID string, unusedOnly bool) ([]*domain.Coupon, error)

	// IssueForHarvest atomically inserts the coupon, removes the harvested
	// fish, and increments the owner's lifetime coupon counter. A clash on
	// the unique code column returns domain.ErrCodeCollision with no
	// partial effects.
	IssueForHarvest(ctx context.Context, coupon *domain.Coupon, fishID string) (*domain.Coupon, error)

	// MarkUsed performs the conditional "set used where used=false" write
	// and returns the updated coupon. When no unused coupon matches the
	// code it returns domain.ErrCouponNotFound; the caller disambiguates
	// missing from already-used.
	MarkUsed(ctx context.Context, code string, staffUsername string, at time.Time) (*domain.Coupon, error)

	Totals(ctx context.Context) (*CouponTotals, error)
}
