package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// domainStatus fixes the HTTP mapping for each known domain sentinel.
var domainStatus = []struct {
	err  error
	code int
	msg  string
}{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrSessionExpired, http.StatusUnauthorized, "session expired"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "order not found"},
}

// NewHTTPErrorHandler renders every error as the {"error": "..."} envelope.
// Known domain errors get deterministic status codes; anything unexpected is
// logged with its real cause and reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// Echo's own errors: bind failures, 404 from the router, middleware
		// rejections.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)})
			return
		}

		for _, m := range domainStatus {
			if errors.Is(err, m.err) {
				_ = c.JSON(m.code, errorResponse{Error: m.msg})
				return
			}
		}

		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
