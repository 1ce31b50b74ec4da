package queue

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/ports"
)

const (
	intakeQueue    = "order_management_orders"
	intakeExchange = "order_placed"
)

// orderCreator is the slice of the command service the intake needs.
type orderCreator interface {
	CreateOrder(ctx context.Context, actor ports.Actor, itemName string) ports.CommandResult
}

// placedOrderMessage is the payload published by sibling services when an
// order is placed on their side.
type placedOrderMessage struct {
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	ItemName  string `json:"itemName"`
}

// OrderIntake consumes placed-order messages from an AMQP fanout exchange and
// turns each into a create-order command. Malformed messages are logged and
// dropped; command failures follow the usual logged, fire-and-forget path.
type OrderIntake struct {
	commands orderCreator
	log      zerolog.Logger
}

func NewOrderIntake(commands orderCreator, log zerolog.Logger) *OrderIntake {
	return &OrderIntake{commands: commands, log: log}
}

// Start declares the queue, binds it to the fanout exchange, and consumes
// until ctx ends or the channel closes.
func (i *OrderIntake) Start(ctx context.Context, ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(intakeExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(intakeQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	// Fanout exchanges ignore the routing key.
	if err := ch.QueueBind(q.Name, "", intakeExchange, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				i.handle(ctx, m.Body)
			}
		}
	}()

	i.log.Info().Str("exchange", intakeExchange).Msg("order intake consuming")
	return nil
}

func (i *OrderIntake) handle(ctx context.Context, body []byte) {
	var msg placedOrderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		i.log.Warn().Err(err).Msg("dropping malformed intake message")
		return
	}
	if msg.UserID == "" || msg.ItemName == "" {
		i.log.Warn().Msg("dropping intake message without userId or itemName")
		return
	}

	res := i.commands.CreateOrder(ctx, ports.Actor{UID: msg.UserID, Email: msg.UserEmail}, msg.ItemName)
	if res.Err != nil {
		i.log.Error().Err(res.Err).Str("userId", msg.UserID).Msg("intake order creation failed")
	}
}
