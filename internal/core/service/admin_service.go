package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

// AdminService implements staff login, staff registration, and the
// dashboard.
type AdminService struct {
	admins    ports.AdminRepository
	users     ports.UserRepository
	fish      ports.FishRepository
	coupons   ports.CouponRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAdminService(
	admins ports.AdminRepository,
	users ports.UserRepository,
	fish ports.FishRepository,
	coupons ports.CouponRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AdminService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AdminService{
		admins:    admins,
		users:     users,
		fish:      fish,
		coupons:   coupons,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *AdminService) Login(ctx context.Context, username, password string) (string, *domain.AdminUser, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !admin.Active {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(admin)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("username", admin.Username).Str("role", admin.Role).Msg("staff logged in")
	return token, admin, nil
}

func (s *AdminService) Register(ctx context.Context, username, password, role, storeID string) (*domain.AdminUser, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &domain.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		StoreID:      storeID,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	return s.admins.Create(ctx, admin)
}

func (s *AdminService) Stats(ctx context.Context) (*ports.DashboardStats, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	fishCount, err := s.fish.Count(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.coupons.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.DashboardStats{
		TotalUsers: userCount,
		TotalFish:  fishCount,
		Coupons:    *totals,
	}, nil
}

func (s *AdminService) generateToken(admin *domain.AdminUser) (string, error) {
	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"username": admin.Username,
		"role":     admin.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
