package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-checkout/internal/shop/app"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
)

// openTestStore connects to DATABASE_URL and empties every shop table.
// Tests are skipped when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	st, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = st.pool.Exec(ctx, `TRUNCATE outbox, order_items, orders, cart_items, carts, products RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return st
}

func seedProduct(t *testing.T, st *Store, name, price string, qty int) domain.Product {
	t.Helper()
	var p domain.Product
	err := st.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		var err error
		p, err = repos.Products.Create(ctx, domain.Product{
			Name:     name,
			Price:    decimal.RequireFromString(price),
			Quantity: qty,
		})
		return err
	})
	require.NoError(t, err)
	return p
}

func TestDecrementStock_Guarded(t *testing.T) {
	st := openTestStore(t)
	p := seedProduct(t, st, "Chair", "40.00", 2)

	err := st.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		ok, err := repos.Inventory.HasStock(ctx, p.ID, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repos.Inventory.HasStock(ctx, p.ID, 3)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, repos.Inventory.DecrementStock(ctx, p.ID, 2))
		err = repos.Inventory.DecrementStock(ctx, p.ID, 1)
		assert.True(t, domain.IsKind(err, domain.KindConflict), "got %v", err)

		got, err := repos.Products.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
		assert.Equal(t, "40.00", got.Price.StringFixed(2))
		return nil
	})
	require.NoError(t, err)
}

func TestProducts_LiveNameUnique(t *testing.T) {
	st := openTestStore(t)
	p := seedProduct(t, st, "Desk", "99.99", 1)

	err := st.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.Products.Create(ctx, domain.Product{Name: "Desk", Price: decimal.NewFromInt(1), Quantity: 1})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrMsgProductNameTaken, err.Error())

	err = st.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		if err := repos.Products.SoftDelete(ctx, p.ID); err != nil {
			return err
		}
		_, err := repos.Products.Create(ctx, domain.Product{Name: "Desk", Price: decimal.NewFromInt(1), Quantity: 1})
		return err
	})
	require.NoError(t, err)
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, st, "Last one", "9.99", 1)

	carts := app.NewCartService(st)
	checkout := app.NewCheckoutEngine(st)

	const buyers = 8
	for i := range buyers {
		require.NoError(t, carts.AddItem(ctx, fmt.Sprintf("buyer-%d", i), p.ID, 1))
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, buyers)
	for i := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = checkout.PlaceOrder(ctx, fmt.Sprintf("buyer-%d", i), domain.CustomerInfo{
				Name:         "Buyer",
				Email:        "buyer@example.com",
				Phone:        "555",
				DeliveryDate: "2026-11-02",
				DeliveryTime: "09:30",
			})
		}()
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Contains(t, []domain.Kind{domain.KindInsufficientStock, domain.KindConflict}, domain.KindOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	err := st.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		got, err := repos.Products.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)

		pending, err := repos.Events.FetchPending(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
		return nil
	})
	require.NoError(t, err)
}
