package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/metrics"
)

// CommandService executes one-shot mutations against the document store.
// Failures are logged and reported on the CommandResult but never surfaced as
// request errors; callers that want fire-and-forget simply drop the result.
type CommandService struct {
	orders ports.OrderRepository
	users  ports.UserRepository
	audit  ports.AuditRepository
	log    zerolog.Logger
}

func NewCommandService(orders ports.OrderRepository, users ports.UserRepository, audit ports.AuditRepository, log zerolog.Logger) *CommandService {
	return &CommandService{orders: orders, users: users, audit: audit, log: log}
}

func (s *CommandService) CreateOrder(ctx context.Context, actor ports.Actor, itemName string) ports.CommandResult {
	const cmd = "create_order"
	if actor.UID == "" {
		return s.noop(cmd, "")
	}

	order := domain.NewOrder(actor.UID, itemName)
	id, err := s.orders.Create(ctx, &order)
	if err != nil {
		return s.failed(cmd, "", err)
	}
	s.logAction(ctx, actor, "Created order: "+itemName)
	return s.done(cmd, id)
}

func (s *CommandService) EditOrder(ctx context.Context, actor ports.Actor, order domain.Order) ports.CommandResult {
	const cmd = "edit_order"
	if order.ID == "" {
		return s.noop(cmd, "")
	}

	if err := s.orders.Put(ctx, &order); err != nil {
		return s.failed(cmd, order.ID, err)
	}
	s.logAction(ctx, actor, "Edited order: "+order.ItemName)
	return s.done(cmd, order.ID)
}

func (s *CommandService) DeleteOrder(ctx context.Context, actor ports.Actor, order domain.Order) ports.CommandResult {
	const cmd = "delete_order"
	if order.ID == "" {
		return s.noop(cmd, "")
	}

	if err := s.orders.Delete(ctx, order.ID); err != nil {
		return s.failed(cmd, order.ID, err)
	}
	s.logAction(ctx, actor, "Deleted order: "+order.ItemName)
	return s.done(cmd, order.ID)
}

// AdvanceOrderStatus applies the fixed cycle Pending → Processing → Delivered
// → Pending to the given order's current status.
func (s *CommandService) AdvanceOrderStatus(ctx context.Context, actor ports.Actor, order domain.Order) ports.CommandResult {
	const cmd = "advance_order_status"
	if order.ID == "" {
		return s.noop(cmd, "")
	}

	next := order.Status.Next()
	if err := s.orders.UpdateStatus(ctx, order.ID, next); err != nil {
		return s.failed(cmd, order.ID, err)
	}
	s.logAction(ctx, actor, fmt.Sprintf("Updated order status: %s -> %s", order.ItemName, next))
	return s.done(cmd, order.ID)
}

func (s *CommandService) EditUser(ctx context.Context, actor ports.Actor, user domain.User) ports.CommandResult {
	const cmd = "edit_user"
	if user.UID == "" {
		return s.noop(cmd, "")
	}

	if err := s.users.Put(ctx, &user); err != nil {
		return s.failed(cmd, user.UID, err)
	}
	s.logAction(ctx, actor, "Edited user: "+user.Email)
	return s.done(cmd, user.UID)
}

// DeleteUser removes the profile document only. Existing orders that
// reference the user are deliberately left in place.
func (s *CommandService) DeleteUser(ctx context.Context, actor ports.Actor, user domain.User) ports.CommandResult {
	const cmd = "delete_user"
	if user.UID == "" {
		return s.noop(cmd, "")
	}

	if err := s.users.Delete(ctx, user.UID); err != nil {
		return s.failed(cmd, user.UID, err)
	}
	s.logAction(ctx, actor, "Deleted user: "+user.Email)
	return s.done(cmd, user.UID)
}

// logAction appends the single audit entry for a successful mutation. Audit
// failures are non-fatal: the mutation already happened.
func (s *CommandService) logAction(ctx context.Context, actor ports.Actor, action string) {
	entry := domain.NewAuditLogEntry(actor.Email, action)
	if err := s.audit.Append(ctx, &entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to append audit entry")
		return
	}
	metrics.AuditEntriesTotal.Inc()
}

func (s *CommandService) noop(cmd, target string) ports.CommandResult {
	metrics.CommandsExecutedTotal.WithLabelValues(cmd, "noop").Inc()
	return ports.CommandResult{Command: cmd, Target: target, NoOp: true, Err: domain.ErrBlankTarget}
}

func (s *CommandService) failed(cmd, target string, err error) ports.CommandResult {
	s.log.Error().Err(err).Str("command", cmd).Str("target", target).Msg("command failed")
	metrics.CommandsExecutedTotal.WithLabelValues(cmd, "error").Inc()
	return ports.CommandResult{Command: cmd, Target: target, Err: err}
}

func (s *CommandService) done(cmd, target string) ports.CommandResult {
	metrics.CommandsExecutedTotal.WithLabelValues(cmd, "ok").Inc()
	return ports.CommandResult{Command: cmd, Target: target}
}
