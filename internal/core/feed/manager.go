package feed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/metrics"
)

// Manager owns the long-lived feeds: all users, all orders, and the audit
// trail (admin views), plus per-user order feeds opened on demand. Each feed
// pumps repository watch snapshots into a State; an upstream error leaves the
// last good snapshot in place.
type Manager struct {
	users  ports.UserRepository
	orders ports.OrderRepository
	audit  ports.AuditRepository
	log    zerolog.Logger

	allUsers  *State[domain.User]
	allOrders *State[domain.Order]
	auditLogs *State[domain.AuditLogEntry]
}

func NewManager(users ports.UserRepository, orders ports.OrderRepository, audit ports.AuditRepository, log zerolog.Logger) *Manager {
	return &Manager{
		users:     users,
		orders:    orders,
		audit:     audit,
		log:       log,
		allUsers:  NewState[domain.User](),
		allOrders: NewState[domain.Order](),
		auditLogs: NewState[domain.AuditLogEntry](),
	}
}

func (m *Manager) Users() *State[domain.User]           { return m.allUsers }
func (m *Manager) Orders() *State[domain.Order]         { return m.allOrders }
func (m *Manager) AuditLogs() *State[domain.AuditLogEntry] { return m.auditLogs }

// Start opens the shared admin feeds. They live until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	usersHandle, err := m.users.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch users: %w", err)
	}
	ordersHandle, err := m.orders.Watch(ctx, "")
	if err != nil {
		usersHandle.Cancel()
		return fmt.Errorf("watch orders: %w", err)
	}
	auditHandle, err := m.audit.Watch(ctx)
	if err != nil {
		usersHandle.Cancel()
		ordersHandle.Cancel()
		return fmt.Errorf("watch audit logs: %w", err)
	}

	go pump(ctx, usersHandle, m.allUsers, "users", m.log)
	go pump(ctx, ordersHandle, m.allOrders, "orders", m.log)
	go pump(ctx, auditHandle, m.auditLogs, "audit_logs", m.log)
	return nil
}

// OpenUserOrders opens a feed scoped to one user's orders. The returned
// release func tears the subscription down and must be called when the
// observing screen goes away.
func (m *Manager) OpenUserOrders(ctx context.Context, uid string) (*State[domain.Order], func(), error) {
	handle, err := m.orders.Watch(ctx, uid)
	if err != nil {
		return nil, nil, fmt.Errorf("watch user orders: %w", err)
	}

	st := NewState[domain.Order]()
	pumpCtx, cancel := context.WithCancel(ctx)
	go pump(pumpCtx, handle, st, "user_orders", m.log)

	release := func() {
		cancel()
		handle.Cancel()
	}
	return st, release, nil
}

// pump drains one watch handle into a State. Error snapshots are logged and
// skipped so the previous snapshot stays published: the feed goes stale, not
// broken.
func pump[T any](ctx context.Context, handle *ports.FeedHandle[T], st *State[T], name string, log zerolog.Logger) {
	defer handle.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-handle.Updates:
			if !ok {
				return
			}
			if snap.Err != nil {
				log.Warn().Err(snap.Err).Str("feed", name).Msg("feed delivery error, keeping last snapshot")
				metrics.FeedErrorsTotal.WithLabelValues(name).Inc()
				continue
			}
			st.Publish(snap.Items)
			metrics.FeedSnapshotsTotal.WithLabelValues(name).Inc()
		}
	}
}
