package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// DefaultUsername is assigned to players who sign in as guests.
const DefaultUsername = "guest"

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrStaffUnauthorized = errors.New("staff actor not authorized")

// User is a player. Created on first visit (guest or registered), never
// deleted in normal flow. DailyFeedCount and LastFeedDate implement the
// per-day feed quota; LastFeedDate is a calendar date string (YYYY-MM-DD).
type User struct {
	ID                 string    `json:"id"`
	OpenID             string    `json:"openid,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Username           string    `json:"username"`
	Avatar             string    `json:"avatar,omitempty"`
	DailyFeedCount     int       `json:"daily_feed_count"`
	LastFeedDate       string    `json:"last_feed_date,omitempty"`
	TotalCouponsEarned int       `json:"total_coupons_earned"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AdminUser is a staff actor, the authorization principal for coupon
// redemption. Inactive accounts cannot log in or redeem.
type AdminUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	StoreID      string    `json:"store_id,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
