package ports

import (
	"context"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// AdminRepository defines persistence operations for staff accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) (*domain.AdminUser, error)
	FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
	FindByID(ctx context.Context, id string) (*domain.AdminUser, error)
}
