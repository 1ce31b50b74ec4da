// Package navigation implements the route state machine that sits between
// the session store and the screens: it decides which view an authenticated
// principal lands on and keeps unauthenticated clients out of protected
// routes.
package navigation

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/session"
)

// Route names a navigable view.
type Route string

const (
	RouteWelcome        Route = "welcome"
	RouteLogin          Route = "login"
	RouteRegister       Route = "register"
	RouteUserHome       Route = "user_home"
	RouteAdminDashboard Route = "admin_dashboard"
	RouteAuditLog       Route = "audit_log"
)

// AuthState is the gate's view of the principal.
type AuthState int

const (
	Unauthenticated AuthState = iota
	AuthenticatedUser
	AuthenticatedAdmin
)

// NoticeUnknownRole is shown when a login succeeds with a role the gate does
// not recognize. The principal stays unauthenticated; this is a dead end, not
// a retryable transition.
const NoticeUnknownRole = "unknown role"

// protectedRoutes require an authenticated session.
var protectedRoutes = map[Route]AuthState{
	RouteUserHome:       AuthenticatedUser,
	RouteAdminDashboard: AuthenticatedAdmin,
	RouteAuditLog:       AuthenticatedAdmin,
}

// RouteForRole maps a resolved role to its landing route. ok is false for
// unrecognized roles.
func RouteForRole(role string) (Route, bool) {
	switch domain.ParseRole(role).Kind {
	case domain.RoleKindAdmin:
		return RouteAdminDashboard, true
	case domain.RoleKindUser:
		return RouteUserHome, true
	default:
		return "", false
	}
}

// Gate tracks the current route, the back stack, and the auth state. All
// transitions that grant or revoke access truncate the back segment so the
// previous view cannot be re-entered via back navigation.
type Gate struct {
	mu     sync.Mutex
	stack  []Route
	state  AuthState
	notice string
	store  *session.Store
	log    zerolog.Logger
}

func NewGate(store *session.Store, log zerolog.Logger) *Gate {
	return &Gate{
		stack: []Route{RouteWelcome},
		store: store,
		log:   log,
	}
}

// Current returns the route on top of the stack.
func (g *Gate) Current() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stack[len(g.stack)-1]
}

// State returns the current auth state.
func (g *Gate) State() AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Notice returns and clears the pending notification, if any.
func (g *Gate) Notice() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.notice
	g.notice = ""
	return n
}

// Depth reports the back-stack depth.
func (g *Gate) Depth() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stack)
}

// Enter attempts to navigate to route. Entering a protected route without the
// required auth state redirects to login and replaces the history segment, so
// the denied view is not reachable via back.
func (g *Gate) Enter(route Route) Route {
	g.mu.Lock()
	defer g.mu.Unlock()

	required, protected := protectedRoutes[route]
	if protected && !g.allows(required) {
		g.log.Debug().Str("route", string(route)).Msg("access denied, redirecting to login")
		g.stack = []Route{RouteLogin}
		return RouteLogin
	}

	g.stack = append(g.stack, route)
	return route
}

// Back pops the current route. Returns false at the bottom of the stack.
func (g *Gate) Back() (Route, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.stack) <= 1 {
		return g.stack[0], false
	}
	g.stack = g.stack[:len(g.stack)-1]
	return g.stack[len(g.stack)-1], true
}

// Apply consumes one session snapshot. A success with a recognized role lands
// on the role's home route with history cleared up to and including the auth
// screens; an unrecognized role posts a notice and stays unauthenticated. The
// store is reset after a consumed success so the transition cannot re-fire.
func (g *Gate) Apply(snap session.Snapshot) {
	if snap.Outcome != session.OutcomeSuccess {
		return
	}

	// A success with no session is a completed registration: hand the
	// principal to the login screen, nothing is authenticated yet.
	if snap.Session.Token == "" && snap.Role == "" {
		g.mu.Lock()
		g.state = Unauthenticated
		g.stack = []Route{RouteLogin}
		g.mu.Unlock()
		g.store.Reset()
		return
	}

	g.mu.Lock()
	route, ok := RouteForRole(snap.Role)
	if !ok {
		g.notice = NoticeUnknownRole
		g.state = Unauthenticated
		g.mu.Unlock()
		g.log.Warn().Str("role", snap.Role).Msg("login with unrecognized role")
		g.store.Reset()
		return
	}

	if route == RouteAdminDashboard {
		g.state = AuthenticatedAdmin
	} else {
		g.state = AuthenticatedUser
	}
	g.stack = []Route{route}
	g.mu.Unlock()

	g.store.Reset()
}

// Logout forces the gate back to unauthenticated and clears history down to
// the login screen.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.state = Unauthenticated
	g.stack = []Route{RouteLogin}
	g.mu.Unlock()
}

// Run observes the session store until ctx ends, applying every snapshot.
func (g *Gate) Run(done <-chan struct{}) {
	w := g.store.Watch()
	defer w.Cancel()
	for {
		select {
		case <-done:
			return
		case snap := <-w.C:
			g.Apply(snap)
		}
	}
}

func (g *Gate) allows(required AuthState) bool {
	switch required {
	case AuthenticatedAdmin:
		return g.state == AuthenticatedAdmin
	case AuthenticatedUser:
		return g.state == AuthenticatedUser || g.state == AuthenticatedAdmin
	default:
		return true
	}
}
