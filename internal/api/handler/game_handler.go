package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oceanflame/fishpond/internal/api/metrics"
	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

// GameHandler handles the player-facing game endpoints.
type GameHandler struct {
	game    ports.GameService
	coupons ports.CouponService
}

func NewGameHandler(game ports.GameService, coupons ports.CouponService) *GameHandler {
	return &GameHandler{game: game, coupons: coupons}
}

// --- Request / Response types ---

type addFishRequest struct {
	FishType string `json:"fish_type" validate:"required"`
}

type gameStateResponse struct {
	Fish          []*domain.Fish   `json:"fish"`
	Coupons       []*domain.Coupon `json:"coupons"`
	RemainingFeed int              `json:"remaining_feed"`
}

type feedResponse struct {
	Message       string       `json:"message"`
	Fish          *domain.Fish `json:"fish"`
	RemainingFeed int          `json:"remaining_feed"`
}

type harvestResponse struct {
	Message string         `json:"message"`
	Coupon  *domain.Coupon `json:"coupon"`
}

// State handles GET /api/game/state.
//
// @Summary      Get the player's game state
// @Tags         game
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  gameStateResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/game/state [get]
func (h *GameHandler) State(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	state, err := h.game.GetState(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gameStateResponse{
		Fish:          state.Fish,
		Coupons:       state.Coupons,
		RemainingFeed: state.RemainingFeed,
	})
}

// AddFish handles POST /api/game/fish.
//
// @Summary      Add a fish to the player's tank
// @Tags         game
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addFishRequest  true  "Species to add"
// @Success      201   {object}  domain.Fish
// @Failure      400   {object}  map[string]string
// @Router       /api/game/fish [post]
func (h *GameHandler) AddFish(c echo.Context) error {
	var req addFishRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, _ := c.Get("user_id").(string)
	fish, err := h.game.AddFish(c.Request().Context(), userID, req.FishType)
	if err != nil {
		return err
	}

	metrics.FishAddedTotal.WithLabelValues(string(fish.Type)).Inc()
	return c.JSON(http.StatusCreated, fish)
}

// Feed handles POST /api/game/fish/:id/feed.
//
// @Summary      Feed a fish
// @Tags         game
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Fish ID"
// @Success      200  {object}  feedResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/game/fish/{id}/feed [post]
func (h *GameHandler) Feed(c echo.Context) error {
	origin := ports.FeedOrigin{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}

	result, err := h.game.Feed(c.Request().Context(), c.Param("id"), origin)
	if err != nil {
		metrics.FeedsTotal.WithLabelValues(feedResultLabel(err)).Inc()
		return err
	}

	metrics.FeedsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, feedResponse{
		Message:       "fish fed",
		Fish:          result.Fish,
		RemainingFeed: result.RemainingFeed,
	})
}

// Harvest handles POST /api/game/fish/:id/harvest.
//
// @Summary      Harvest an adult fish for a coupon
// @Tags         game
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Fish ID"
// @Success      200  {object}  harvestResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/game/fish/{id}/harvest [post]
func (h *GameHandler) Harvest(c echo.Context) error {
	coupon, err := h.coupons.Harvest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.HarvestsTotal.WithLabelValues(string(coupon.FishType)).Inc()
	return c.JSON(http.StatusOK, harvestResponse{
		Message: "coupon issued",
		Coupon:  coupon,
	})
}

// ListCoupons handles GET /api/game/coupons.
//
// @Summary      List the player's coupons, most recent first
// @Tags         game
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Coupon
// @Router       /api/game/coupons [get]
func (h *GameHandler) ListCoupons(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	coupons, err := h.game.ListCoupons(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, coupons)
}

func feedResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, domain.ErrFishDead):
		return "fish_dead"
	default:
		return "error"
	}
}
