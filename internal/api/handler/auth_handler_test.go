package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/navigation"
	"github.com/orderdesk/order-management/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) error
	loginFn    func(ctx context.Context, email, password string) (ports.Session, error)
	logoutFn   func(ctx context.Context, token string) error
	currentFn  func(ctx context.Context, token string) (string, bool)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) error {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) CurrentIdentity(ctx context.Context, token string) (string, bool) {
	if s.currentFn == nil {
		return "", false
	}
	return s.currentFn(ctx, token)
}

type stubRoleResolver struct {
	roles map[string]string
}

func (s *stubRoleResolver) ResolveRole(_ context.Context, uid string) (string, bool) {
	role, ok := s.roles[uid]
	return role, ok
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) error {
			if input.Email != "ana@example.com" || input.Name != "Ana" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if input.Role != domain.RoleUser {
				t.Fatalf("expected the default role, got %q", input.Role)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"secret1","name":"Ana"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["route"] != string(navigation.RouteLogin) {
		t.Fatalf("route = %v", resp["route"])
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) error {
			return domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"secret1","name":"Ana"}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/register", "not-json")

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	// Password below the minimum length.
	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"pw","name":"Ana"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_SuccessRoutesByRole(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (ports.Session, error) {
			if email != "ana@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return ports.Session{UID: "uid_1", Email: email, Token: "token123", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{roles: map[string]string{"uid_1": domain.RoleAdmin}})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"secret1"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["role"] != domain.RoleAdmin {
		t.Fatalf("payload: %+v", resp)
	}
	if resp["route"] != string(navigation.RouteAdminDashboard) {
		t.Fatalf("route = %v", resp["route"])
	}
	if _, hasNotice := resp["notice"]; hasNotice {
		t.Fatalf("unexpected notice: %+v", resp)
	}
}

func TestAuthHandler_Login_UnresolvedRoleStaysOnLogin(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, _ string) (ports.Session, error) {
			return ports.Session{UID: "uid_1", Email: email, Token: "token123"}, nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"secret1"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// The session stands but the client is told to stay on login.
	if resp["token"] != "token123" {
		t.Fatalf("payload: %+v", resp)
	}
	if resp["route"] != string(navigation.RouteLogin) || resp["notice"] != navigation.NoticeUnknownRole {
		t.Fatalf("payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (ports.Session, error) {
			return ports.Session{}, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"bad1234"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (ports.Session, error) {
			t.Fatalf("should not be called")
			return ports.Session{}, nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", "{")

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout_Idempotent(t *testing.T) {
	var tokens []string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, token string) error {
			tokens = append(tokens, token)
			return nil
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer token123")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(tokens) != 1 || tokens[0] != "token123" {
		t.Fatalf("tokens = %v", tokens)
	}

	// No token at all still gets a 204.
	c, rec = newTestContext(t, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(tokens) != 1 {
		t.Fatalf("no upstream logout expected, tokens = %v", tokens)
	}
}

func TestAuthHandler_Session_NoTokenLandsOnWelcome(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubRoleResolver{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["route"] != string(navigation.RouteWelcome) {
		t.Fatalf("route = %v", resp["route"])
	}
}

func TestAuthHandler_Session_LiveTokenRoutesByRole(t *testing.T) {
	stub := &stubAuthService{
		currentFn: func(_ context.Context, token string) (string, bool) {
			if token != "token123" {
				t.Fatalf("token = %q", token)
			}
			return "uid_1", true
		},
	}
	h := NewAuthHandler(stub, &stubRoleResolver{roles: map[string]string{"uid_1": domain.RoleUser}})

	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")
	c.Request().Header.Set("Authorization", "Bearer token123")
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["uid"] != "uid_1" || resp["route"] != string(navigation.RouteUserHome) {
		t.Fatalf("payload: %+v", resp)
	}
}
