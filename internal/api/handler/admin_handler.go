package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/infrastructure/queue"
)

// AdminHandler exposes the admin operations: user management, the full order
// book with status advancement, and the audit trail.
type AdminHandler struct {
	commands   ports.CommandService
	users      ports.UserRepository
	orders     ports.OrderRepository
	audit      ports.AuditRepository
	dispatcher *queue.Dispatcher
}

func NewAdminHandler(
	commands ports.CommandService,
	users ports.UserRepository,
	orders ports.OrderRepository,
	audit ports.AuditRepository,
	dispatcher *queue.Dispatcher,
) *AdminHandler {
	return &AdminHandler{
		commands:   commands,
		users:      users,
		orders:     orders,
		audit:      audit,
		dispatcher: dispatcher,
	}
}

type editUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// ListUsers returns all user profiles.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// EditUser queues a full-profile edit.
//
// @Summary      Edit a user
// @Tags         admin
// @Accept       json
// @Success      202  "command queued"
// @Failure      400  {object}  errorResponse
// @Router       /admin/users/{uid} [put]
func (h *AdminHandler) EditUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req editUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user := domain.User{
		UID:   c.Param("uid"),
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	h.dispatcher.Enqueue(queue.Command{
		Name:   "edit_user",
		Target: user.UID,
		Run: func(ctx context.Context) ports.CommandResult {
			return h.commands.EditUser(ctx, actor, user)
		},
	})
	return c.NoContent(http.StatusAccepted)
}

// DeleteUser queues removal of a profile. The user's orders are not touched.
//
// @Summary      Delete a user
// @Tags         admin
// @Success      202  "command queued"
// @Router       /admin/users/{uid} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	uid := c.Param("uid")
	user, err := h.users.Get(c.Request().Context(), uid)
	if err != nil {
		// Profile already gone: deleting again audits with what we have.
		user = &domain.User{UID: uid}
	}

	target := *user
	h.dispatcher.Enqueue(queue.Command{
		Name:   "delete_user",
		Target: uid,
		Run: func(ctx context.Context) ports.CommandResult {
			return h.commands.DeleteUser(ctx, actor, target)
		},
	})
	return c.NoContent(http.StatusAccepted)
}

// ListOrders returns the full order book.
//
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Order
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.orders.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// AdvanceOrder queues one step along the status cycle for an order.
//
// @Summary      Advance an order's status
// @Tags         admin
// @Success      202  "command queued"
// @Failure      404  {object}  errorResponse
// @Router       /admin/orders/{id}/advance [post]
func (h *AdminHandler) AdvanceOrder(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	target := *order
	h.dispatcher.Enqueue(queue.Command{
		Name:   "advance_order_status",
		Target: target.ID,
		Run: func(ctx context.Context) ports.CommandResult {
			return h.commands.AdvanceOrderStatus(ctx, actor, target)
		},
	})
	return c.NoContent(http.StatusAccepted)
}

// ListAuditLogs returns the audit trail, newest first.
//
// @Summary      List audit log entries
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.AuditLogEntry
// @Router       /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c echo.Context) error {
	entries, err := h.audit.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
