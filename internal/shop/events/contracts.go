// Package events defines the order events the shop emits through its
// transactional outbox and the relay that publishes them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

const (
	TopicOrders     = "shop.orders"
	TypeOrderPlaced = "order.placed"
)

type OrderPlaced struct {
	Type          string          `json:"type"`
	EventID       string          `json:"event_id"`
	OrderID       int64           `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   string          `json:"total_amount"`
	Items         []OrderLineJSON `json:"items"`
	DeliveryDate  string          `json:"delivery_date"`
	DeliveryTime  string          `json:"delivery_time"`
	OccurredAt    time.Time       `json:"occurred_at"`
	TraceInfo
}

type OrderLineJSON struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// NewOrderPlaced builds the outbox record for a placed order. The order
// id is the message key so all events of one order land on one partition,
// and the span in ctx, if any, is recorded so consumers can join the trace.
func NewOrderPlaced(ctx context.Context, o domain.Order, at time.Time) (domain.Event, error) {
	ev := OrderPlaced{
		Type:          TypeOrderPlaced,
		EventID:       uuid.NewString(),
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Items:         make([]OrderLineJSON, 0, len(o.Items)),
		DeliveryDate:  o.DeliveryDate,
		DeliveryTime:  o.DeliveryTime,
		OccurredAt:    at.UTC(),
		TraceInfo:     ExtractTraceInfo(ctx),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderLineJSON{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return domain.Event{}, fmt.Errorf("events: marshal %s: %w", TypeOrderPlaced, err)
	}
	return domain.Event{
		EventID:   ev.EventID,
		Topic:     TopicOrders,
		Key:       strconv.FormatInt(o.ID, 10),
		Payload:   payload,
		CreatedAt: ev.OccurredAt,
	}, nil
}
