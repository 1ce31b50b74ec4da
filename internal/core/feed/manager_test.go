package feed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
)

// watchSource hands out one live handle backed by an unbuffered channel so
// tests can drive deliveries synchronously.
type watchSource[T any] struct {
	ch        chan ports.Snapshot[T]
	cancelled atomic.Bool
	watchErr  error
	lastUID   string
}

func newWatchSource[T any]() *watchSource[T] {
	return &watchSource[T]{ch: make(chan ports.Snapshot[T])}
}

func (w *watchSource[T]) handle() (*ports.FeedHandle[T], error) {
	if w.watchErr != nil {
		return nil, w.watchErr
	}
	return &ports.FeedHandle[T]{Updates: w.ch, Cancel: func() { w.cancelled.Store(true) }}, nil
}

type watchUserRepo struct{ src *watchSource[domain.User] }

func (r *watchUserRepo) Get(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (r *watchUserRepo) Put(context.Context, *domain.User) error    { return nil }
func (r *watchUserRepo) Delete(context.Context, string) error       { return nil }
func (r *watchUserRepo) List(context.Context) ([]domain.User, error) { return nil, nil }
func (r *watchUserRepo) Watch(context.Context) (*ports.FeedHandle[domain.User], error) {
	return r.src.handle()
}

type watchOrderRepo struct{ src *watchSource[domain.Order] }

func (r *watchOrderRepo) Create(context.Context, *domain.Order) (string, error) { return "", nil }
func (r *watchOrderRepo) Get(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}
func (r *watchOrderRepo) Put(context.Context, *domain.Order) error { return nil }
func (r *watchOrderRepo) UpdateStatus(context.Context, string, domain.OrderStatus) error {
	return nil
}
func (r *watchOrderRepo) Delete(context.Context, string) error          { return nil }
func (r *watchOrderRepo) ListAll(context.Context) ([]domain.Order, error) { return nil, nil }
func (r *watchOrderRepo) ListByUser(context.Context, string) ([]domain.Order, error) {
	return nil, nil
}
func (r *watchOrderRepo) Watch(_ context.Context, uid string) (*ports.FeedHandle[domain.Order], error) {
	r.src.lastUID = uid
	return r.src.handle()
}

type watchAuditRepo struct{ src *watchSource[domain.AuditLogEntry] }

func (r *watchAuditRepo) Append(context.Context, *domain.AuditLogEntry) error { return nil }
func (r *watchAuditRepo) List(context.Context) ([]domain.AuditLogEntry, error) {
	return nil, nil
}
func (r *watchAuditRepo) Watch(context.Context) (*ports.FeedHandle[domain.AuditLogEntry], error) {
	return r.src.handle()
}

func newFeedFixture() (*Manager, *watchSource[domain.User], *watchSource[domain.Order], *watchSource[domain.AuditLogEntry]) {
	users := newWatchSource[domain.User]()
	orders := newWatchSource[domain.Order]()
	audit := newWatchSource[domain.AuditLogEntry]()
	m := NewManager(&watchUserRepo{src: users}, &watchOrderRepo{src: orders}, &watchAuditRepo{src: audit}, zerolog.Nop())
	return m, users, orders, audit
}

func recvSnapshot[T any](t *testing.T, sub *Sub[T]) []T {
	t.Helper()
	select {
	case items := <-sub.C:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestManager_StartPumpsSharedFeeds(t *testing.T) {
	m, users, orders, audit := newFeedFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if orders.lastUID != "" {
		t.Fatalf("shared order feed must be unscoped, got uid %q", orders.lastUID)
	}

	userSub := m.Users().Subscribe()
	orderSub := m.Orders().Subscribe()
	auditSub := m.AuditLogs().Subscribe()
	defer userSub.Cancel()
	defer orderSub.Cancel()
	defer auditSub.Cancel()
	recvSnapshot(t, userSub)
	recvSnapshot(t, orderSub)
	recvSnapshot(t, auditSub)

	users.ch <- ports.Snapshot[domain.User]{Items: []domain.User{{UID: "uid_1"}}}
	orders.ch <- ports.Snapshot[domain.Order]{Items: []domain.Order{{ID: "order_1"}}}
	audit.ch <- ports.Snapshot[domain.AuditLogEntry]{Items: []domain.AuditLogEntry{{Action: "Created order: Widget"}}}

	if got := recvSnapshot(t, userSub); len(got) != 1 || got[0].UID != "uid_1" {
		t.Fatalf("users snapshot = %+v", got)
	}
	if got := recvSnapshot(t, orderSub); len(got) != 1 || got[0].ID != "order_1" {
		t.Fatalf("orders snapshot = %+v", got)
	}
	if got := recvSnapshot(t, auditSub); len(got) != 1 {
		t.Fatalf("audit snapshot = %+v", got)
	}
}

func TestManager_ErrorDeliveryKeepsLastSnapshot(t *testing.T) {
	m, _, orders, _ := newFeedFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub := m.Orders().Subscribe()
	defer sub.Cancel()
	recvSnapshot(t, sub)

	orders.ch <- ports.Snapshot[domain.Order]{Items: []domain.Order{{ID: "good"}}}
	if got := recvSnapshot(t, sub); got[0].ID != "good" {
		t.Fatalf("first delivery = %+v", got)
	}

	orders.ch <- ports.Snapshot[domain.Order]{Err: errors.New("stream reset")}
	orders.ch <- ports.Snapshot[domain.Order]{Items: []domain.Order{{ID: "after"}}}

	// The error must not surface as a publication: the next delivery the
	// subscriber sees is the snapshot that followed it.
	if got := recvSnapshot(t, sub); len(got) != 1 || got[0].ID != "after" {
		t.Fatalf("post-error delivery = %+v", got)
	}
}

func TestManager_StartFailureCleansUpEarlierHandles(t *testing.T) {
	m, users, orders, _ := newFeedFixture()
	orders.watchErr = errors.New("watch unsupported")

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail")
	}
	if !users.cancelled.Load() {
		t.Fatal("users handle should be cancelled when a later watch fails")
	}
}

func TestManager_OpenUserOrdersScopesAndReleases(t *testing.T) {
	m, _, orders, _ := newFeedFixture()
	ctx := context.Background()

	st, release, err := m.OpenUserOrders(ctx, "uid_7")
	if err != nil {
		t.Fatalf("OpenUserOrders: %v", err)
	}
	if orders.lastUID != "uid_7" {
		t.Fatalf("watch uid = %q", orders.lastUID)
	}

	sub := st.Subscribe()
	defer sub.Cancel()
	recvSnapshot(t, sub)

	orders.ch <- ports.Snapshot[domain.Order]{Items: []domain.Order{{ID: "order_1", UserID: "uid_7"}}}
	if got := recvSnapshot(t, sub); len(got) != 1 || got[0].UserID != "uid_7" {
		t.Fatalf("scoped snapshot = %+v", got)
	}

	release()
	if !orders.cancelled.Load() {
		t.Fatal("release must cancel the underlying handle")
	}
}
