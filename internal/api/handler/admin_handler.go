package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oceanflame/fishpond/internal/api/metrics"
	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

// AdminHandler handles the staff console endpoints: login, coupon check and
// redemption, and the dashboard.
type AdminHandler struct {
	admin   ports.AdminService
	coupons ports.CouponService
}

func NewAdminHandler(admin ports.AdminService, coupons ports.CouponService) *AdminHandler {
	return &AdminHandler{admin: admin, coupons: coupons}
}

// --- Request / Response types ---

type staffLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type staffLoginResponse struct {
	Token string            `json:"token"`
	Admin *domain.AdminUser `json:"admin"`
}

type staffRegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
	StoreID  string `json:"store_id,omitempty"`
}

type verifyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type couponViewResponse struct {
	Code      string `json:"code"`
	FishType  string `json:"fish_type"`
	Value     int    `json:"value"`
	Status    string `json:"status"`
	UsedAt    string `json:"used_at,omitempty"`
	ExpiresAt string `json:"expires_at"`
}

type redemptionResponse struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Value    int    `json:"value"`
	FishType string `json:"fish_type"`
	UsedAt   string `json:"used_at"`
}

type dashboardResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalFish     int64 `json:"total_fish"`
	CouponsIssued int64 `json:"coupons_issued"`
	CouponsUsed   int64 `json:"coupons_used"`
	ValueIssued   int64 `json:"value_issued"`
	ValueUsed     int64 `json:"value_used"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// Login handles POST /api/admin/login.
//
// @Summary      Staff login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      staffLoginRequest  true  "Credentials"
// @Success      200   {object}  staffLoginResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	var req staffLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, admin, err := h.admin.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, staffLoginResponse{Token: token, Admin: admin})
}

// Register handles POST /api/admin/register (admin role only).
func (h *AdminHandler) Register(c echo.Context) error {
	var req staffRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	admin, err := h.admin.Register(c.Request().Context(), req.Username, req.Password, req.Role, req.StoreID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, admin)
}

// CheckCoupon handles GET /api/admin/coupons/:code — read-only status lookup.
//
// @Summary      Check a coupon's status without redeeming it
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Coupon code (e.g. OF3FA29B01)"
// @Success      200   {object}  couponViewResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/coupons/{code} [get]
func (h *AdminHandler) CheckCoupon(c echo.Context) error {
	view, err := h.coupons.Check(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}

	resp := couponViewResponse{
		Code:      view.Code,
		FishType:  string(view.FishType),
		Value:     view.Value,
		Status:    string(view.Status),
		ExpiresAt: view.ExpiresAt.UTC().Format(timeLayout),
	}
	if view.UsedAt != nil {
		resp.UsedAt = view.UsedAt.UTC().Format(timeLayout)
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyCoupon handles POST /api/admin/coupons/verify — the staff-side
// redemption. The acting staff id comes from the JWT claims.
//
// @Summary      Redeem a coupon
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      verifyCouponRequest  true  "Coupon code"
// @Success      200   {object}  redemptionResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Router       /api/admin/coupons/verify [post]
func (h *AdminHandler) VerifyCoupon(c echo.Context) error {
	var req verifyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	staffID, _ := c.Get("admin_id").(string)
	result, err := h.coupons.Redeem(c.Request().Context(), req.Code, staffID)
	if err != nil {
		metrics.RedemptionsTotal.WithLabelValues(redeemResultLabel(err)).Inc()
		return err
	}

	metrics.RedemptionsTotal.WithLabelValues("success").Inc()
	metrics.RedeemedValueTotal.Add(float64(result.Value))

	return c.JSON(http.StatusOK, redemptionResponse{
		Message:  "coupon redeemed",
		Code:     result.Code,
		Value:    result.Value,
		FishType: string(result.FishType),
		UsedAt:   result.UsedAt.UTC().Format(timeLayout),
	})
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		TotalUsers:    stats.TotalUsers,
		TotalFish:     stats.TotalFish,
		CouponsIssued: stats.Coupons.TotalIssued,
		CouponsUsed:   stats.Coupons.TotalUsed,
		ValueIssued:   stats.Coupons.TotalValueIssued,
		ValueUsed:     stats.Coupons.TotalValueUsed,
	})
}

func redeemResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrCouponAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrCouponExpired):
		return "expired"
	case errors.Is(err, domain.ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStaffUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
