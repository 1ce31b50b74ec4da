package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// ctxActor extracts the acting identity injected by the Auth middleware.
// A missing uid means the middleware did not run; fail fast with 401. Email
// may legitimately be absent — commands then audit as the unknown actor.
func ctxActor(c echo.Context) (ports.Actor, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ := c.Get("email").(string)
	return ports.Actor{UID: uid, Email: email}, nil
}
