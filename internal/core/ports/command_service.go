package ports

import (
	"context"

	"github.com/orderdesk/order-management/internal/core/domain"
)

// Actor identifies the session on whose behalf a command runs. Email may be
// empty; audit entries then record the unknown actor placeholder.
type Actor struct {
	UID   string
	Email string
}

// CommandResult reports the outcome of a single command. Commands are
// fire-and-forget from the caller's perspective, but the outcome is always
// observable here: NoOp marks a precondition miss (blank target), Err carries
// any backend failure. Callers are free to discard the result.
type CommandResult struct {
	Command string
	Target  string
	NoOp    bool
	Err     error
}

// CommandService executes one-shot mutations. Every successful mutation
// appends exactly one audit entry; failures are logged and reported on the
// result but never retried.
type CommandService interface {
	CreateOrder(ctx context.Context, actor Actor, itemName string) CommandResult
	EditOrder(ctx context.Context, actor Actor, order domain.Order) CommandResult
	DeleteOrder(ctx context.Context, actor Actor, order domain.Order) CommandResult
	// AdvanceOrderStatus moves the order one step along the status cycle.
	AdvanceOrderStatus(ctx context.Context, actor Actor, order domain.Order) CommandResult
	EditUser(ctx context.Context, actor Actor, user domain.User) CommandResult
	// DeleteUser removes the profile only; the user's orders are untouched.
	DeleteUser(ctx context.Context, actor Actor, user domain.User) CommandResult
}
