package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/navigation"
	"github.com/orderdesk/order-management/internal/core/ports"
)

type AuthHandler struct {
	auth  ports.AuthService
	roles ports.RoleResolver
}

func NewAuthHandler(auth ports.AuthService, roles ports.RoleResolver) *AuthHandler {
	return &AuthHandler{auth: auth, roles: roles}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse tells the client who it is and which view to render.
// Notice carries the unknown-role warning; Route is then the login screen.
type sessionResponse struct {
	Token  string `json:"token,omitempty"`
	UID    string `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Route  string `json:"route"`
	Notice string `json:"notice,omitempty"`
}

// Register creates a new identity and its profile document.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}

	err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		// Partial failures (identity created, profile write failed) land here
		// too: the write error is surfaced rather than hidden.
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{Route: string(navigation.RouteLogin)})
}

// Login authenticates and resolves the role in one round trip.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	// Role resolution failure is not a login failure: the session stands,
	// the role stays empty and the client remains on the login screen.
	role, _ := h.roles.ResolveRole(c.Request().Context(), sess.UID)

	resp := sessionResponse{
		Token: sess.Token,
		UID:   sess.UID,
		Email: sess.Email,
		Role:  role,
	}
	if route, ok := navigation.RouteForRole(role); ok {
		resp.Route = string(route)
	} else {
		resp.Route = string(navigation.RouteLogin)
		resp.Notice = navigation.NoticeUnknownRole
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout invalidates the presented session. Idempotent: an already-dead
// token still gets a 204.
//
// @Summary      Logout
// @Tags         auth
// @Success      204  "session invalidated"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := bearerTokenOptional(c)
	if err == nil && token != "" {
		_ = h.auth.Logout(c.Request().Context(), token)
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports the last known session behind the presented token.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	token, err := bearerTokenOptional(c)
	if err != nil || token == "" {
		return c.JSON(http.StatusOK, sessionResponse{Route: string(navigation.RouteWelcome)})
	}

	uid, ok := h.auth.CurrentIdentity(c.Request().Context(), token)
	if !ok {
		return c.JSON(http.StatusOK, sessionResponse{Route: string(navigation.RouteWelcome)})
	}

	role, _ := h.roles.ResolveRole(c.Request().Context(), uid)
	resp := sessionResponse{UID: uid, Role: role}
	if route, ok := navigation.RouteForRole(role); ok {
		resp.Route = string(route)
	} else {
		resp.Route = string(navigation.RouteLogin)
		resp.Notice = navigation.NoticeUnknownRole
	}
	return c.JSON(http.StatusOK, resp)
}

func bearerTokenOptional(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
