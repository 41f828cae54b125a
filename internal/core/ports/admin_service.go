package ports

import (
	"context"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// DashboardStats is the staff dashboard summary.
type DashboardStats struct {
	TotalUsers int64
	TotalFish  int64
	Coupons    CouponTotals
}

// AdminService handles staff authentication and the dashboard.
type AdminService interface {
	// Login verifies credentials against the bcrypt hash and returns a
	// signed JWT plus the account. Inactive accounts cannot log in.
	Login(ctx context.Context, username, password string) (string, *domain.AdminUser, error)
	// Register creates a staff account. Restricted to admins at the
	// transport layer.
	Register(ctx context.Context, username, password, role, storeID string) (*domain.AdminUser, error)
	Stats(ctx context.Context) (*DashboardStats, error)
}
