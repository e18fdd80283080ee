package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/events"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
)

// CheckoutEngine converts a session's cart into an order.
type CheckoutEngine struct {
	uow ports.UnitOfWork
	now func() time.Time
}

func NewCheckoutEngine(uow ports.UnitOfWork) *CheckoutEngine {
	return &CheckoutEngine{uow: uow, now: time.Now}
}

// PlaceOrder creates the order, reserves stock for every cart line and
// deletes the cart, all in one transaction. Any failure leaves orders,
// stock and the cart untouched. Conflicts are not retried.
func (e *CheckoutEngine) PlaceOrder(ctx context.Context, sessionID string, info domain.CustomerInfo) (domain.PlacedOrder, error) {
	ctx, span := tracer.Start(ctx, "checkout.place_order")
	defer span.End()

	if err := info.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.PlacedOrder{}, err
	}

	var placed domain.PlacedOrder
	err := e.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		placed, err = placeOrder(ctx, repos, sessionID, info, e.now())
		return err
	})
	if err != nil {
		err = domain.Wrap(err, "place order")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "checkout failed", "session_id", sessionID, "kind", domain.KindOf(err), "error", err)
		return domain.PlacedOrder{}, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", placed.OrderID),
		attribute.String("order.total", placed.TotalAmount.StringFixed(2)),
	)
	slog.InfoContext(ctx, "order placed", "session_id", sessionID, "order_id", placed.OrderID, "total_amount", placed.TotalAmount.StringFixed(2))
	return placed, nil
}

func placeOrder(ctx context.Context, repos ports.Repositories, sessionID string, info domain.CustomerInfo, now time.Time) (domain.PlacedOrder, error) {
	cart, err := repos.Carts.FindBySession(ctx, sessionID)
	if err != nil {
		return domain.PlacedOrder{}, err
	}
	lines, err := repos.Carts.Lines(ctx, cart.ID)
	if err != nil {
		return domain.PlacedOrder{}, err
	}

	order := domain.Order{
		CustomerName:  info.Name,
		CustomerEmail: info.Email,
		CustomerPhone: info.Phone,
		TotalAmount:   decimal.Zero,
		Status:        domain.OrderStatusPending,
		OrderedAt:     now.UTC(),
		DeliveryDate:  info.DeliveryDate,
		DeliveryTime:  info.DeliveryTime,
	}
	if order.ID, err = repos.Orders.Create(ctx, order); err != nil {
		return domain.PlacedOrder{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		ok, err := repos.Inventory.HasStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return domain.PlacedOrder{}, err
		}
		if !ok {
			return domain.PlacedOrder{}, domain.NewInsufficientStock(line.ProductName)
		}

		// The cart's price is the order price, even if the catalog changed since.
		item := domain.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: line.UnitPrice}
		if err := repos.Orders.AddItem(ctx, order.ID, item); err != nil {
			return domain.PlacedOrder{}, err
		}
		order.Items = append(order.Items, item)
		total = total.Add(line.Total())

		if err := repos.Inventory.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return domain.PlacedOrder{}, err
		}
	}

	order.TotalAmount = total.Round(2)
	order.Status = domain.OrderStatusPlaced
	if err := repos.Orders.Finalize(ctx, order.ID, order.TotalAmount, order.Status); err != nil {
		return domain.PlacedOrder{}, err
	}

	ev, err := events.NewOrderPlaced(ctx, order, now)
	if err != nil {
		return domain.PlacedOrder{}, err
	}
	if err := repos.Events.Append(ctx, ev); err != nil {
		return domain.PlacedOrder{}, err
	}

	if err := repos.Carts.Delete(ctx, cart.ID); err != nil {
		return domain.PlacedOrder{}, err
	}
	return domain.PlacedOrder{OrderID: order.ID, TotalAmount: order.TotalAmount}, nil
}
