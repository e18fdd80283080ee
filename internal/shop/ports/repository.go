// Package ports declares the persistence contracts the shop services depend
// on. Implementations live under internal/storage.
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

// CartRepository stores carts keyed by session.
type CartRepository interface {
	// FindBySession returns a NotFound error when the session has no cart.
	FindBySession(ctx context.Context, sessionKey string) (domain.Cart, error)
	GetOrCreate(ctx context.Context, sessionKey string) (domain.Cart, error)
	// UpsertItem sets the line quantity, inserting the line if needed.
	UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error
	Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	// RemoveItem reports whether a line was deleted.
	RemoveItem(ctx context.Context, cartID, productID int64) (bool, error)
	// Delete removes the cart and its items.
	Delete(ctx context.Context, cartID int64) error
}

// Inventory is the stock contract consumed by the checkout engine.
type Inventory interface {
	// HasStock is false for missing and soft-deleted products.
	HasStock(ctx context.Context, productID int64, quantity int) (bool, error)
	// DecrementStock subtracts quantity only if enough stock remains at the
	// moment of the update, failing with a Conflict error otherwise.
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// ProductRepository is the catalog. Soft-deleted rows are invisible to Get
// and List.
type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	// NameTaken ignores the product with id excludeID (0 for none).
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, p domain.Product) error
	SoftDelete(ctx context.Context, id int64) error
	Count(ctx context.Context, keyword string) (int, error)
	// List returns products newest first. A limit of zero means no limit.
	List(ctx context.Context, keyword string, limit, offset int) ([]domain.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) (int64, error)
	AddItem(ctx context.Context, orderID int64, item domain.OrderItem) error
	Finalize(ctx context.Context, orderID int64, total decimal.Decimal, status domain.OrderStatus) error
	Get(ctx context.Context, id int64) (domain.Order, error)
}

// EventRepository is the transactional outbox.
type EventRepository interface {
	Append(ctx context.Context, e domain.Event) error
	FetchPending(ctx context.Context, limit int) ([]domain.Event, error)
	MarkSent(ctx context.Context, id int64) error
}

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Carts     CartRepository
	Products  ProductRepository
	Inventory Inventory
	Orders    OrderRepository
	Events    EventRepository
}

// UnitOfWork runs fn inside one transaction. The transaction commits when
// fn returns nil and rolls back on any error or panic.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
