package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

type stubAdminRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.AdminUser
	byName map[string]*domain.AdminUser
	seq    int
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{
		byID:   make(map[string]*domain.AdminUser),
		byName: make(map[string]*domain.AdminUser),
	}
}

func (r *stubAdminRepo) Create(_ context.Context, a *domain.AdminUser) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	clone := *a
	clone.ID = fmt.Sprintf("admin_%d", r.seq)
	r.byID[clone.ID] = &clone
	r.byName[clone.Username] = &clone
	out := clone
	return &out, nil
}

func (r *stubAdminRepo) FindByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAdminRepo) FindByID(_ context.Context, id string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *a
	return &clone, nil
}

type couponFixture struct {
	users   *stubUserRepo
	fish    *stubFishRepo
	coupons *stubCouponRepo
	admins  *stubAdminRepo
	svc     *CouponService
}

func newCouponFixture() *couponFixture {
	users := newStubUserRepo()
	fish := newStubFishRepo()
	coupons := newStubCouponRepo(fish, users)
	admins := newStubAdminRepo()
	return &couponFixture{
		users:   users,
		fish:    fish,
		coupons: coupons,
		admins:  admins,
		svc:     NewCouponService(coupons, fish, admins, discardLogger),
	}
}

func (fx *couponFixture) seedUser() *domain.User {
	u, _ := fx.users.Create(context.Background(), &domain.User{Username: "tester"})
	return u
}

func (fx *couponFixture) seedAdultFish(userID string, fishType domain.FishType) *domain.Fish {
	f, _ := fx.fish.Create(context.Background(), &domain.Fish{
		UserID: userID,
		Type:   fishType,
		Status: domain.StatusAdult,
		Hunger: 80,
		Health: 100,
		Growth: fishType.GrowthThreshold(),
	})
	return f
}

func (fx *couponFixture) seedStaff(active bool) *domain.AdminUser {
	a, _ := fx.admins.Create(context.Background(), &domain.AdminUser{
		Username: "clerk",
		Role:     domain.RoleStaff,
		Active:   active,
	})
	return a
}

func (fx *couponFixture) seedCoupon(userID string, expiresAt time.Time) *domain.Coupon {
	fx.coupons.mu.Lock()
	defer fx.coupons.mu.Unlock()
	fx.coupons.seq++
	c := &domain.Coupon{
		ID:        fmt.Sprintf("coupon_%d", fx.coupons.seq),
		UserID:    userID,
		Code:      fmt.Sprintf("OF%08X", fx.coupons.seq),
		FishType:  domain.TypeQingjiang,
		Value:     50,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	fx.coupons.byCode[c.Code] = c
	clone := *c
	return &clone
}

// ---------------------------------------------------------------------------
// Harvest tests
// ---------------------------------------------------------------------------

func TestCouponService_Harvest_Success(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	fish := fx.seedAdultFish(user.ID, domain.TypeQingjiang)

	before := time.Now().UTC()
	coupon, err := fx.svc.Harvest(context.Background(), fish.ID)
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}

	if coupon.Value != 50 {
		t.Errorf("expected qingjiang value 50, got %d", coupon.Value)
	}
	if coupon.FishType != domain.TypeQingjiang {
		t.Errorf("unexpected fish type %q", coupon.FishType)
	}
	if !couponCodePattern.MatchString(coupon.Code) {
		t.Errorf("malformed coupon code %q", coupon.Code)
	}
	wantExpiry := coupon.CreatedAt.Add(domain.CouponTTL)
	if !coupon.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expected expiry %v, got %v", wantExpiry, coupon.ExpiresAt)
	}
	if coupon.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("created_at too early: %v", coupon.CreatedAt)
	}

	// The fish must be gone and the lifetime counter bumped.
	if _, err := fx.fish.FindByID(context.Background(), fish.ID); !errors.Is(err, domain.ErrFishNotFound) {
		t.Errorf("harvested fish must be removed, got %v", err)
	}
	owner, _ := fx.users.FindByID(context.Background(), user.ID)
	if owner.TotalCouponsEarned != 1 {
		t.Errorf("expected total_coupons_earned 1, got %d", owner.TotalCouponsEarned)
	}
}

func TestCouponService_Harvest_ValuesPerType(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()

	want := map[domain.FishType]int{
		domain.TypeQingjiang: 50,
		domain.TypeLingbo:    80,
		domain.TypeBasha:     100,
		domain.TypeJinmu:     150,
	}
	for fishType, value := range want {
		fish := fx.seedAdultFish(user.ID, fishType)
		coupon, err := fx.svc.Harvest(context.Background(), fish.ID)
		if err != nil {
			t.Fatalf("harvest %s failed: %v", fishType, err)
		}
		if coupon.Value != value {
			t.Errorf("%s: expected value %d, got %d", fishType, value, coupon.Value)
		}
	}
}

func TestCouponService_Harvest_NotAdult(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	fish, _ := fx.fish.Create(context.Background(), &domain.Fish{
		UserID: user.ID,
		Type:   domain.TypeQingjiang,
		Status: domain.StatusBaby,
	})

	_, err := fx.svc.Harvest(context.Background(), fish.ID)
	if !errors.Is(err, domain.ErrFishNotAdult) {
		t.Fatalf("expected ErrFishNotAdult, got %v", err)
	}

	if _, err := fx.fish.FindByID(context.Background(), fish.ID); err != nil {
		t.Errorf("rejected harvest must keep the fish: %v", err)
	}
}

func TestCouponService_Harvest_UnknownFish(t *testing.T) {
	fx := newCouponFixture()

	_, err := fx.svc.Harvest(context.Background(), "fish_404")
	if !errors.Is(err, domain.ErrFishNotFound) {
		t.Fatalf("expected ErrFishNotFound, got %v", err)
	}
}

func TestCouponService_Harvest_RetriesOnCodeCollision(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	fish := fx.seedAdultFish(user.ID, domain.TypeLingbo)
	fx.coupons.collideNext = 1

	coupon, err := fx.svc.Harvest(context.Background(), fish.ID)
	if err != nil {
		t.Fatalf("harvest must survive a single collision: %v", err)
	}
	if coupon.Value != 80 {
		t.Errorf("expected lingbo value 80, got %d", coupon.Value)
	}
}

func TestCouponService_Harvest_GivesUpAfterRepeatedCollisions(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	fish := fx.seedAdultFish(user.ID, domain.TypeLingbo)
	fx.coupons.collideNext = codeIssueAttempts

	_, err := fx.svc.Harvest(context.Background(), fish.ID)
	if !errors.Is(err, domain.ErrCodeCollision) {
		t.Fatalf("expected wrapped ErrCodeCollision, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Check tests
// ---------------------------------------------------------------------------

func TestCouponService_Check_Valid(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	view, err := fx.svc.Check(context.Background(), coupon.Code)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if view.Status != ports.CouponValid {
		t.Errorf("expected valid, got %q", view.Status)
	}
	if view.Value != 50 || view.FishType != domain.TypeQingjiang {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestCouponService_Check_CaseInsensitiveLookup(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	view, err := fx.svc.Check(context.Background(), "  "+strings.ToLower(coupon.Code)+" ")
	if err != nil {
		t.Fatalf("lowercase lookup failed: %v", err)
	}
	if view.Code != coupon.Code {
		t.Errorf("expected canonical code %s, got %s", coupon.Code, view.Code)
	}
}

func TestCouponService_Check_Expired(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(-time.Hour))

	view, err := fx.svc.Check(context.Background(), coupon.Code)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if view.Status != ports.CouponExpired {
		t.Errorf("expected expired, got %q", view.Status)
	}
}

func TestCouponService_Check_Used(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))
	if _, err := fx.coupons.MarkUsed(context.Background(), coupon.Code, "clerk", time.Now().UTC()); err != nil {
		t.Fatalf("mark used failed: %v", err)
	}

	view, err := fx.svc.Check(context.Background(), coupon.Code)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if view.Status != ports.CouponUsed {
		t.Errorf("expected used, got %q", view.Status)
	}
	if view.UsedAt == nil {
		t.Error("used view must carry used_at")
	}
}

func TestCouponService_Check_Malformed(t *testing.T) {
	fx := newCouponFixture()

	for _, code := range []string{"", "XY12345678", "OF1234", "OF12345G78"} {
		if _, err := fx.svc.Check(context.Background(), code); !errors.Is(err, domain.ErrMalformedCouponCode) {
			t.Errorf("code %q: expected ErrMalformedCouponCode, got %v", code, err)
		}
	}
}

func TestCouponService_Check_NotFound(t *testing.T) {
	fx := newCouponFixture()

	_, err := fx.svc.Check(context.Background(), "OFDEADBEEF")
	if !errors.Is(err, domain.ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Redeem tests
// ---------------------------------------------------------------------------

func TestCouponService_Redeem_Success(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	staff := fx.seedStaff(true)
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	result, err := fx.svc.Redeem(context.Background(), coupon.Code, staff.ID)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.Code != coupon.Code || result.Value != 50 {
		t.Errorf("unexpected result: %+v", result)
	}

	stored, _ := fx.coupons.FindByCode(context.Background(), coupon.Code)
	if !stored.Used || stored.UsedAt == nil {
		t.Errorf("coupon must be marked used: %+v", stored)
	}
	if stored.UsedBy != staff.Username {
		t.Errorf("expected used_by %q, got %q", staff.Username, stored.UsedBy)
	}
}

func TestCouponService_Redeem_ReportsFirstRedemption(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	staff := fx.seedStaff(true)
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	first, err := fx.svc.Redeem(context.Background(), coupon.Code, staff.ID)
	if err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}

	_, err = fx.svc.Redeem(context.Background(), coupon.Code, staff.ID)
	var used *domain.CouponUsedError
	if !errors.As(err, &used) {
		t.Fatalf("expected CouponUsedError, got %v", err)
	}
	if !errors.Is(err, domain.ErrCouponAlreadyUsed) {
		t.Error("CouponUsedError must unwrap to ErrCouponAlreadyUsed")
	}
	if !used.UsedAt.Equal(first.UsedAt) {
		t.Errorf("expected first redemption timestamp %v, got %v", first.UsedAt, used.UsedAt)
	}
}

func TestCouponService_Redeem_Expired(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	staff := fx.seedStaff(true)
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(-time.Hour))

	_, err := fx.svc.Redeem(context.Background(), coupon.Code, staff.ID)
	if !errors.Is(err, domain.ErrCouponExpired) {
		t.Fatalf("expected ErrCouponExpired, got %v", err)
	}

	// Expiry is a lazy predicate: the stored coupon stays unused.
	stored, _ := fx.coupons.FindByCode(context.Background(), coupon.Code)
	if stored.Used {
		t.Error("expired coupon must not be flipped to used")
	}
}

func TestCouponService_Redeem_InactiveStaff(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	staff := fx.seedStaff(false)
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	_, err := fx.svc.Redeem(context.Background(), coupon.Code, staff.ID)
	if !errors.Is(err, domain.ErrStaffUnauthorized) {
		t.Fatalf("expected ErrStaffUnauthorized, got %v", err)
	}
}

func TestCouponService_Redeem_UnknownStaff(t *testing.T) {
	fx := newCouponFixture()
	user := fx.seedUser()
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	_, err := fx.svc.Redeem(context.Background(), coupon.Code, "admin_404")
	if !errors.Is(err, domain.ErrStaffUnauthorized) {
		t.Fatalf("expected ErrStaffUnauthorized, got %v", err)
	}
}

func TestCouponService_Redeem_NotFound(t *testing.T) {
	fx := newCouponFixture()
	staff := fx.seedStaff(true)

	_, err := fx.svc.Redeem(context.Background(), "OFDEADBEEF", staff.ID)
	if !errors.Is(err, domain.ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestCouponService_Redeem_ExactlyOnce(t *testing.T) {
	// N staff actors race on one coupon: exactly one redemption may land.
	fx := newCouponFixture()
	user := fx.seedUser()
	staff := fx.seedStaff(true)
	coupon := fx.seedCoupon(user.ID, time.Now().UTC().Add(24*time.Hour))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Redeem(context.Background(), coupon.Code, staff.ID)
		}(i)
	}
	wg.Wait()

	successes, alreadyUsed := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrCouponAlreadyUsed):
			alreadyUsed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful redemption, got %d", successes)
	}
	if alreadyUsed != workers-1 {
		t.Fatalf("expected %d already-used failures, got %d", workers-1, alreadyUsed)
	}
}

// ---------------------------------------------------------------------------
// Code generation
// ---------------------------------------------------------------------------

func TestGenerateCouponCode_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateCouponCode()
		if !couponCodePattern.MatchString(code) {
			t.Fatalf("malformed code %q", code)
		}
		seen[code] = true
	}
	// 100 draws from a 32-bit space colliding would point at a broken RNG.
	if len(seen) < 99 {
		t.Errorf("suspiciously many duplicate codes: %d unique of 100", len(seen))
	}
}
