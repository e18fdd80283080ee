// Package app holds the shop's use cases: the session cart, the checkout
// engine, the catalog and order lookup. Every operation runs in one
// ports.UnitOfWork transaction and keeps its state in local values.
package app

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
)

var tracer = otel.Tracer("github.com/jcmexdev/shop-checkout/internal/shop/app")

// CartService manages the cart bound to a session key.
type CartService struct {
	uow ports.UnitOfWork
}

func NewCartService(uow ports.UnitOfWork) *CartService {
	return &CartService{uow: uow}
}

// AddItem sets the quantity of productID in the session's cart, creating the
// cart if needed. An existing line is overwritten, not incremented.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) error {
	ctx, span := tracer.Start(ctx, "cart.add_item")
	defer span.End()

	if quantity <= 0 {
		return domain.NewValidation(domain.ErrMsgQuantityPositive)
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Products.Get(ctx, productID); err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				return domain.NewValidation(domain.ErrMsgProductNotFound)
			}
			return err
		}
		cart, err := repos.Carts.GetOrCreate(ctx, sessionID)
		if err != nil {
			return err
		}
		return repos.Carts.UpsertItem(ctx, cart.ID, productID, quantity)
	})
	if err != nil {
		return domain.Wrap(err, "add cart item")
	}

	slog.DebugContext(ctx, "cart item set", "session_id", sessionID, "product_id", productID, "quantity", quantity)
	return nil
}

// Items returns the session's cart lines, or an empty slice when the
// session has no cart.
func (s *CartService) Items(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		cart, err := repos.Carts.FindBySession(ctx, sessionID)
		if domain.IsKind(err, domain.KindNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		lines, err = repos.Carts.Lines(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, domain.Wrap(err, "list cart items")
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// RemoveItem deletes productID from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) error {
	ctx, span := tracer.Start(ctx, "cart.remove_item")
	defer span.End()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		cart, err := repos.Carts.FindBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		removed, err := repos.Carts.RemoveItem(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.NewNotFound(domain.ErrMsgCartItemNotFound)
		}
		return nil
	})
	return domain.Wrap(err, "remove cart item")
}

// DeleteCart drops the session's cart and its items. It is a no-op when the
// session has no cart.
func (s *CartService) DeleteCart(ctx context.Context, sessionID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		cart, err := repos.Carts.FindBySession(ctx, sessionID)
		if domain.IsKind(err, domain.KindNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return repos.Carts.Delete(ctx, cart.ID)
	})
	return domain.Wrap(err, "delete cart")
}
