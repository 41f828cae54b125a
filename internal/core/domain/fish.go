package domain

import (
	"errors"
	"strings"
	"time"
)

// FishType identifies a species in the fixed catalog.
type FishType string

const (
	TypeQingjiang FishType = "qingjiang"
	TypeLingbo    FishType = "lingbo"
	TypeBasha     FishType = "basha"
	TypeJinmu     FishType = "jinmu"
)

// FishStatus represents the lifecycle state of a fish.
type FishStatus string

const (
	StatusBaby   FishStatus = "baby"
	StatusAdult  FishStatus = "adult"
	StatusHungry FishStatus = "hungry"
	StatusSick   FishStatus = "sick"
	StatusDead   FishStatus = "dead"
)

// FishSpec is the per-species configuration: display name, how many feeds a
// fish needs to mature (growth threshold = GrowthTime * 10 growth points),
// and the coupon value granted on harvest (currency units).
type FishSpec struct {
	DisplayName string
	GrowthTime  int
	CouponValue int
}

// catalog is the closed set of raisable species.
var catalog = map[FishType]FishSpec{
	TypeQingjiang: {DisplayName: "Qingjiang Fish", GrowthTime: 3, CouponValue: 50},
	TypeLingbo:    {DisplayName: "Lingbo Fish", GrowthTime: 4, CouponValue: 80},
	TypeBasha:     {DisplayName: "Basha Fish", GrowthTime: 5, CouponValue: 100},
	TypeJinmu:     {DisplayName: "Barramundi", GrowthTime: 7, CouponValue: 150},
}

var ErrUnknownFishType = errors.New("unknown fish type")
var ErrFishNotFound = errors.New("fish not found")
var ErrFishDead = errors.New("fish is dead")
var ErrFishNotAdult = errors.New("only adult fish can be harvested")
var ErrQuotaExhausted = errors.New("daily feed quota exhausted")

// ParseFishType validates a raw species string against the catalog.
func ParseFishType(s string) (FishType, error) {
	t := FishType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := catalog[t]; !ok {
		return "", ErrUnknownFishType
	}
	return t, nil
}

// Spec returns the catalog entry for the type. Unknown types return the zero
// spec; callers are expected to have validated via ParseFishType.
func (t FishType) Spec() FishSpec {
	return catalog[t]
}

// GrowthThreshold is the growth value at which a baby becomes an adult.
func (t FishType) GrowthThreshold() float64 {
	return float64(catalog[t].GrowthTime) * 10
}

// Fish is a single fish owned by a player.
type Fish struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      FishType   `json:"fish_type"`
	Status    FishStatus `json:"status"`
	Hunger    float64    `json:"hunger"`
	Health    float64    `json:"health"`
	Growth    float64    `json:"growth"`
	PosX      float64    `json:"pos_x"`
	PosY      float64    `json:"pos_y"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ApplyFeed mutates the fish with one feeding: hunger is topped up (capped at
// 100), growth advances by 10, and the status transitions run:
//   - baby -> adult once growth reaches the species threshold
//   - hungry recovers to adult or baby (by growth) once hunger exceeds 30
//
// The caller must reject dead fish before calling; ApplyFeed assumes the fish
// is alive.
func (f *Fish) ApplyFeed() {
	f.Hunger = min(100, f.Hunger+30)
	f.Growth += 10

	threshold := f.Type.GrowthThreshold()
	if f.Status == StatusBaby && f.Growth >= threshold {
		f.Status = StatusAdult
	}
	if f.Status == StatusHungry && f.Hunger > 30 {
		if f.Growth >= threshold {
			f.Status = StatusAdult
		} else {
			f.Status = StatusBaby
		}
	}
}
