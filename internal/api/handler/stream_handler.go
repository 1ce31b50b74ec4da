package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/order-management/internal/core/feed"
)

// StreamHandler delivers live feed snapshots as server-sent events. Every
// event is a full-replacement JSON array, mirroring the feed's snapshot
// semantics. The feed subscription is released when the client disconnects.
type StreamHandler struct {
	feeds *feed.Manager
}

func NewStreamHandler(feeds *feed.Manager) *StreamHandler {
	return &StreamHandler{feeds: feeds}
}

// MyOrders streams the caller's order list.
//
// @Summary      Stream own orders
// @Tags         streams
// @Produce      text/event-stream
// @Router       /stream/orders [get]
func (h *StreamHandler) MyOrders(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	st, release, err := h.feeds.OpenUserOrders(c.Request().Context(), actor.UID)
	if err != nil {
		return err
	}
	defer release()

	return stream(c, st)
}

// AllOrders streams the full order book (admin).
func (h *StreamHandler) AllOrders(c echo.Context) error {
	return stream(c, h.feeds.Orders())
}

// Users streams all user profiles (admin).
func (h *StreamHandler) Users(c echo.Context) error {
	return stream(c, h.feeds.Users())
}

// AuditLogs streams the audit trail (admin).
func (h *StreamHandler) AuditLogs(c echo.Context) error {
	return stream(c, h.feeds.AuditLogs())
}

// stream subscribes to st and writes one SSE data event per snapshot until
// the client goes away.
func stream[T any](c echo.Context, st *feed.State[T]) error {
	sub := st.Subscribe()
	defer sub.Cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case items := <-sub.C:
			if items == nil {
				items = []T{}
			}
			payload, err := json.Marshal(items)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
				return err
			}
			res.Flush()
		}
	}
}
