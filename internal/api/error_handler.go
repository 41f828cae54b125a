package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oceanflame/fishpond/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Every failure kind
	// gets its own message so no blocked operation is ambiguous to the
	// caller.
	var usedErr *domain.CouponUsedError
	if errors.As(err, &usedErr) {
		return http.StatusConflict, usedErr.Error()
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrFishNotFound):
		return http.StatusNotFound, "fish not found"
	case errors.Is(err, domain.ErrCouponNotFound):
		return http.StatusNotFound, "coupon not found"
	case errors.Is(err, domain.ErrUnknownFishType):
		return http.StatusBadRequest, "unknown fish type"
	case errors.Is(err, domain.ErrMalformedCouponCode):
		return http.StatusBadRequest, "malformed coupon code"
	case errors.Is(err, domain.ErrFishDead):
		return http.StatusConflict, "this fish is dead"
	case errors.Is(err, domain.ErrFishNotAdult):
		return http.StatusConflict, "only adult fish can be harvested"
	case errors.Is(err, domain.ErrQuotaExhausted):
		return http.StatusConflict, "daily feed quota exhausted, come back tomorrow"
	case errors.Is(err, domain.ErrCouponAlreadyUsed):
		return http.StatusConflict, "coupon already used"
	case errors.Is(err, domain.ErrCouponExpired):
		return http.StatusGone, "coupon expired"
	case errors.Is(err, domain.ErrCodeCollision):
		return http.StatusServiceUnavailable, "could not issue coupon, try again"
	case errors.Is(err, domain.ErrStaffUnauthorized):
		return http.StatusForbidden, "staff account not authorized"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "account already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
