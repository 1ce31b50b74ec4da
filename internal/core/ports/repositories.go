package ports

import (
	"context"

	"github.com/orderdesk/order-management/internal/core/domain"
)

// Snapshot is one complete result set delivered by a live query. Err is set on
// delivery failures; consumers keep their previous snapshot in that case.
type Snapshot[T any] struct {
	Items []T
	Err   error
}

// FeedHandle is a live-query subscription. Updates carries full-replacement
// snapshots and is closed after Cancel or when the owning context ends.
// Callers own the handle and must Cancel it when no longer observing.
type FeedHandle[T any] struct {
	Updates <-chan Snapshot[T]
	Cancel  context.CancelFunc
}

// UserRepository persists user profiles in the users collection, keyed by the
// identity id.
type UserRepository interface {
	Get(ctx context.Context, uid string) (*domain.User, error)
	// Put writes the full profile document for user.UID, creating it when absent.
	Put(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, uid string) error
	List(ctx context.Context) ([]domain.User, error)
	Watch(ctx context.Context) (*FeedHandle[domain.User], error)
}

// OrderRepository persists orders. IDs are assigned by the store on Create.
type OrderRepository interface {
	// Create inserts a transient order and returns the assigned id.
	Create(ctx context.Context, order *domain.Order) (string, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	// Put replaces the full order document for order.ID.
	Put(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, uid string) ([]domain.Order, error)
	// Watch opens a live query over orders; a non-empty uid scopes the feed to
	// that user's orders.
	Watch(ctx context.Context, uid string) (*FeedHandle[domain.Order], error)
}

// AuditRepository appends to and reads the append-only audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	// List returns entries ordered by timestamp descending.
	List(ctx context.Context) ([]domain.AuditLogEntry, error)
	Watch(ctx context.Context) (*FeedHandle[domain.AuditLogEntry], error)
}
