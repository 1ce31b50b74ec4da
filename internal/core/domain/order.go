package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusDelivered  OrderStatus = "Delivered"
)

var ErrOrderNotFound = errors.New("order not found")
var ErrBlankTarget = errors.New("blank target identifier")

// Next returns the status that follows s in the fixed progression
// Pending → Processing → Delivered → Pending. Any value outside the known
// set resets to Pending; the cycle has an implicit default, not an error case.
func (s OrderStatus) Next() OrderStatus {
	switch s {
	case StatusPending:
		return StatusProcessing
	case StatusProcessing:
		return StatusDelivered
	default:
		return StatusPending
	}
}

// Order is a single order document. ID is assigned by the storage layer on
// creation; a zero ID marks a transient record that has not been persisted.
// UserID is immutable once created.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	ItemName  string      `json:"itemName"`
	Status    OrderStatus `json:"status"`
	Timestamp int64       `json:"timestamp"`
}

// NewOrder builds a transient order in the initial status, stamped now.
func NewOrder(userID, itemName string) Order {
	return Order{
		UserID:    userID,
		ItemName:  itemName,
		Status:    StatusPending,
		Timestamp: time.Now().UnixMilli(),
	}
}
