package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-checkout/internal/shop/app"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
	"github.com/jcmexdev/shop-checkout/internal/storage/sqlite"
)

type fixture struct {
	store    *sqlite.Store
	carts    *app.CartService
	checkout *app.CheckoutEngine
	catalog  *app.CatalogService
	orders   *app.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return &fixture{
		store:    st,
		carts:    app.NewCartService(st),
		checkout: app.NewCheckoutEngine(st),
		catalog:  app.NewCatalogService(st),
		orders:   app.NewOrderService(st),
	}
}

func (f *fixture) product(t *testing.T, name, price string, qty int) domain.Product {
	t.Helper()
	desc := name + " description"
	p := decimal.RequireFromString(price)
	created, err := f.catalog.Create(context.Background(), domain.NewProduct{
		Name:        name,
		Description: &desc,
		Price:       &p,
		Quantity:    &qty,
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	var qty int
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		p, err := repos.Products.Get(ctx, id)
		qty = p.Quantity
		return err
	})
	require.NoError(t, err)
	return qty
}

func (f *fixture) pendingEvents(t *testing.T) []domain.Event {
	t.Helper()
	var out []domain.Event
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		var err error
		out, err = repos.Events.FetchPending(ctx, 100)
		return err
	})
	require.NoError(t, err)
	return out
}

func customer() domain.CustomerInfo {
	return domain.CustomerInfo{
		Name:         "Grace Hopper",
		Email:        "grace@example.com",
		Phone:        "+1-555-0100",
		DeliveryDate: "2026-11-02",
		DeliveryTime: "09:30",
	}
}

// conflictOnDecrement makes DecrementStock of productID fail as if another
// checkout had taken the stock between the check and the update.
type conflictOnDecrement struct {
	ports.UnitOfWork
	productID int64
}

func (u conflictOnDecrement) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return u.UnitOfWork.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		repos.Inventory = conflictInventory{Inventory: repos.Inventory, productID: u.productID}
		return fn(ctx, repos)
	})
}

type conflictInventory struct {
	ports.Inventory
	productID int64
}

func (i conflictInventory) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	if productID == i.productID {
		return domain.NewConflict(domain.ErrMsgStockConflict)
	}
	return i.Inventory.DecrementStock(ctx, productID, quantity)
}
