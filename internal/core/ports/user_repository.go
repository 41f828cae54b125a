package ports

import (
	"context"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// UserRepository defines persistence operations for players, including the
// two quota primitives. Both are single conditional writes so concurrent
// feed requests for one user cannot both consume the last quota unit.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// ResetDailyFeed sets the quota back to limit when the stored
	// last_feed_date differs from today (YYYY-MM-DD). Idempotent within a
	// day: a second call on the same date is a no-op.
	ResetDailyFeed(ctx context.Context, id string, today string, limit int) error

	// ConsumeFeed decrements the quota by one and returns the remaining
	// count. Returns domain.ErrQuotaExhausted without mutating anything
	// when the quota is already zero.
	ConsumeFeed(ctx context.Context, id string) (remaining int, err error)

	Count(ctx context.Context) (int64, error)
}
