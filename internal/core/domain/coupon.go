package domain

import (
	"errors"
	"fmt"
	"time"
)

// Coupon code format: fixed prefix + 8 uppercase hex characters, e.g. OF3FA29B01.
const (
	CouponCodePrefix = "OF"
	CouponCodeLength = 10
)

// CouponTTL is how long a freshly issued coupon stays redeemable.
const CouponTTL = 7 * 24 * time.Hour

var ErrCouponNotFound = errors.New("coupon not found")
var ErrCouponExpired = errors.New("coupon expired")
var ErrMalformedCouponCode = errors.New("malformed coupon code")

// ErrCodeCollision signals a unique-code clash on issuance. Retryable: the
// issuer regenerates the code and tries again.
var ErrCodeCollision = errors.New("coupon code collision")

// ErrCouponAlreadyUsed is the sentinel matched by errors.Is for redemptions
// of an already-redeemed coupon. The concrete error is CouponUsedError.
var ErrCouponAlreadyUsed = errors.New("coupon already used")

// CouponUsedError reports a redemption attempt on a coupon that has already
// been redeemed, carrying the prior redemption details.
type CouponUsedError struct {
	UsedAt time.Time
	UsedBy string
}

func (e *CouponUsedError) Error() string {
	return fmt.Sprintf("coupon already used at %s", e.UsedAt.UTC().Format("2006-01-02 15:04"))
}

func (e *CouponUsedError) Unwrap() error { return ErrCouponAlreadyUsed }

// Coupon is a discount voucher minted when an adult fish is harvested.
// Once Used flips to true it never reverts; UsedAt/UsedBy are set exactly
// when it does. Expiry is a derived predicate, never a stored state.
type Coupon struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Code      string     `json:"code"`
	FishType  FishType   `json:"fish_type"`
	Value     int        `json:"value"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UsedBy    string     `json:"used_by,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the coupon has passed its expiry at the given time.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
