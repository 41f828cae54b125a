package ports

import (
	"context"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// FishRepository defines persistence operations for fish.
type FishRepository interface {
	Create(ctx context.Context, fish *domain.Fish) (*domain.Fish, error)
	FindByID(ctx context.Context, id string) (*domain.Fish, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Fish, error)
	// Update persists the mutable fields (status, hunger, health, growth).
	Update(ctx context.Context, fish *domain.Fish) error
	Count(ctx context.Context) (int64, error)
}

// FeedingRepository appends feed audit rows.
type FeedingRepository interface {
	Insert(ctx context.Context, record *domain.FeedingRecord) error
}
