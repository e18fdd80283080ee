package app

import (
	"context"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
)

// OrderService reads placed orders.
type OrderService struct {
	uow ports.UnitOfWork
}

func NewOrderService(uow ports.UnitOfWork) *OrderService {
	return &OrderService{uow: uow}
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		o, err = repos.Orders.Get(ctx, id)
		return err
	})
	if err != nil {
		return domain.Order{}, domain.Wrap(err, "get order")
	}
	return o, nil
}
