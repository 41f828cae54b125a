package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/ports"
)

// AuthHandler handles player onboarding and session resolution.
type AuthHandler struct {
	auth ports.PlayerAuthService
}

func NewAuthHandler(auth ports.PlayerAuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
}

type sessionResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// Register creates a player account and returns a session token.
//
// @Summary      Register a player
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Optional phone and username"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	session, err := h.auth.Register(c.Request().Context(), req.Phone, req.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		User:        session.User,
	})
}

// Guest creates an anonymous player account and returns a session token.
//
// @Summary      Guest login
// @Tags         auth
// @Produce      json
// @Success      201  {object}  sessionResponse
// @Router       /api/auth/guest [post]
func (h *AuthHandler) Guest(c echo.Context) error {
	session, err := h.auth.RegisterGuest(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		User:        session.User,
	})
}

// Me returns the authenticated player's profile.
//
// @Summary      Current player
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}

	user, err := h.auth.Me(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
