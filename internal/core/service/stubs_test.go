package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub backends shared across the service tests.
// ---------------------------------------------------------------------------

type stubProvider struct {
	mu         sync.Mutex
	identities map[string]string // email -> uid
	passwords  map[string]string // email -> password
	sessions   map[string]string // token -> uid
	nextUID    int
	createErr  error
	authErr    error
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		identities: make(map[string]string),
		passwords:  make(map[string]string),
		sessions:   make(map[string]string),
	}
}

func (p *stubProvider) CreateIdentity(_ context.Context, email, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return "", p.createErr
	}
	if _, exists := p.identities[email]; exists {
		return "", domain.ErrUserExists
	}
	p.nextUID++
	uid := "uid_" + strconv.Itoa(p.nextUID)
	p.identities[email] = uid
	p.passwords[email] = password
	return uid, nil
}

func (p *stubProvider) Authenticate(_ context.Context, email, password string) (ports.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.authErr != nil {
		return ports.Session{}, p.authErr
	}
	uid, ok := p.identities[email]
	if !ok {
		return ports.Session{}, domain.ErrUserNotFound
	}
	if p.passwords[email] != password {
		return ports.Session{}, domain.ErrInvalidCredentials
	}
	token := "token_" + uid
	p.sessions[token] = uid
	return ports.Session{UID: uid, Email: email, Token: token, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (p *stubProvider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, token)
	return nil
}

func (p *stubProvider) CurrentIdentity(_ context.Context, token string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	uid, ok := p.sessions[token]
	return uid, ok
}

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]domain.User
	putErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]domain.User)}
}

func (r *stubUserRepo) Get(_ context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) Put(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.users[user.UID] = *user
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, uid)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (r *stubUserRepo) Watch(ctx context.Context) (*ports.FeedHandle[domain.User], error) {
	return nil, errors.New("not watchable")
}

type stubOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	nextID    int
	createErr error
	updateErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.nextID++
	id := "order_" + strconv.Itoa(r.nextID)
	stored := *order
	stored.ID = id
	r.orders[id] = stored
	return id, nil
}

func (r *stubOrderRepo) Get(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) Put(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubOrderRepo) ListByUser(ctx context.Context, uid string) ([]domain.Order, error) {
	all, _ := r.ListAll(ctx)
	var out []domain.Order
	for _, o := range all {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) Watch(ctx context.Context, uid string) (*ports.FeedHandle[domain.Order], error) {
	return nil, errors.New("not watchable")
}

type stubAuditRepo struct {
	mu        sync.Mutex
	entries   []domain.AuditLogEntry
	appendErr error
}

func (r *stubAuditRepo) Append(_ context.Context, entry *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	// Newest first, matching the repository's descending sort.
	r.entries = append([]domain.AuditLogEntry{*entry}, r.entries...)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context) ([]domain.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditLogEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *stubAuditRepo) Watch(ctx context.Context) (*ports.FeedHandle[domain.AuditLogEntry], error) {
	return nil, errors.New("not watchable")
}
