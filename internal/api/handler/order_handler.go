package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/domain"
	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/infrastructure/queue"
)

// OrderHandler exposes the user-scoped order operations. Mutations are
// dispatched fire-and-forget: the handler acknowledges with 202 and backend
// failures stay on the logged, observable-but-unsurfaced path.
type OrderHandler struct {
	commands   ports.CommandService
	orders     ports.OrderRepository
	dispatcher *queue.Dispatcher
}

func NewOrderHandler(commands ports.CommandService, orders ports.OrderRepository, dispatcher *queue.Dispatcher) *OrderHandler {
	return &OrderHandler{commands: commands, orders: orders, dispatcher: dispatcher}
}

type createOrderRequest struct {
	ItemName string `json:"itemName" validate:"required"`
}

type editOrderRequest struct {
	ItemName string `json:"itemName" validate:"required"`
	Status   string `json:"status"`
}

// List returns the caller's orders.
//
// @Summary      List own orders
// @Tags         orders
// @Produce      json
// @Success      200  {array}  domain.Order
// @Router       /orders/mine [get]
func (h *OrderHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListByUser(c.Request().Context(), actor.UID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// Create queues a create-order command for the caller.
//
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Success      202  "command queued"
// @Failure      400  {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	h.dispatcher.Enqueue(queue.Command{
		Name:   "create_order",
		Target: actor.UID,
		Run: func(ctx context.Context) ports.CommandResult {
			return h.commands.CreateOrder(ctx, actor, req.ItemName)
		},
	})
	return c.NoContent(http.StatusAccepted)
}

// Edit queues a full-document edit of one of the caller's orders.
//
// @Summary      Edit an order
// @Tags         orders
// @Accept       json
// @Success      202  "command queued"
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [put]
func (h *OrderHandler) Edit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req editOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	order, err := h.ownedOrder(c, actor)
	if err != nil {
		return err
	}
	order.ItemName = req.ItemName
	if req.Status != "" {
		order.Status = domain.OrderStatus(req.Status)
	}

	h.dispatcher.Enqueue(queue.Command{
		Name:   "edit_order",
		Target: order.ID,
		Run: func(ctx context.Context) ports.CommandResult {
			return h.commands.EditOrder(ctx, actor, *order)
		},
	})
	return c.NoContent(http.StatusAccepted)
}

// Delete queues deletion of one of the caller's orders.
//
// @Summary      Delete an order
// @Tags         orders
// @Success      202  "command queued"
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	order, err := h.ownedOrder(c, actor)
	if err != nil {
		return err
	}

	h.dispatcher.Enqueue(queue.Command{
		Name:   "delete_order",
		Target: order.ID,
		Run: func(ctx context.Context) ports.CommandResult {
			return h.commands.DeleteOrder(ctx, actor, *order)
		},
	})
	return c.NoContent(http.StatusAccepted)
}

// ownedOrder loads the path order and hides other users' orders behind a 404.
func (h *OrderHandler) ownedOrder(c echo.Context, actor ports.Actor) (*domain.Order, error) {
	order, err := h.orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
