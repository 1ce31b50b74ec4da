package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/ports"
)

// Manager drives the Store through the credential gateway and role resolver.
// Login composes authentication with role resolution; a failed resolution
// still yields a success snapshot, just with an empty role.
type Manager struct {
	auth  ports.AuthService
	roles ports.RoleResolver
	store *Store
	log   zerolog.Logger
}

func NewManager(auth ports.AuthService, roles ports.RoleResolver, store *Store, log zerolog.Logger) *Manager {
	return &Manager{auth: auth, roles: roles, store: store, log: log}
}

func (m *Manager) Store() *Store { return m.store }

// Register creates the identity and profile. The snapshot carries no session:
// the flow returns to login before any authenticated navigation happens.
func (m *Manager) Register(ctx context.Context, input ports.RegisterInput) {
	if err := m.auth.Register(ctx, input); err != nil {
		m.store.SetFailure(err)
		return
	}
	m.store.SetSuccess(ports.Session{}, "")
}

// Login authenticates and resolves the role in one flow.
func (m *Manager) Login(ctx context.Context, email, password string) {
	sess, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.store.SetFailure(err)
		return
	}

	role, ok := m.roles.ResolveRole(ctx, sess.UID)
	if !ok {
		m.log.Warn().Str("uid", sess.UID).Msg("role resolution failed, continuing without role")
		role = ""
	}
	m.store.SetSuccess(sess, role)
}

// Logout invalidates the session and clears the store. Idempotent.
func (m *Manager) Logout(ctx context.Context) {
	token := m.store.Get().Session.Token
	if token != "" {
		if err := m.auth.Logout(ctx, token); err != nil {
			m.log.Warn().Err(err).Msg("logout failed upstream, clearing local state anyway")
		}
	}
	m.store.Reset()
}
