package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

// --- carts ---

type cartRepo struct {
	q querier
}

func (r *cartRepo) FindBySession(ctx context.Context, sessionKey string) (domain.Cart, error) {
	var c domain.Cart
	err := r.q.QueryRow(ctx, `SELECT id, session_key, created_at FROM carts WHERE session_key = $1`, sessionKey).
		Scan(&c.ID, &c.SessionKey, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, domain.NewNotFound(domain.ErrMsgCartNotFound)
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("postgres: find cart for session %q: %w", sessionKey, err)
	}
	return c, nil
}

func (r *cartRepo) GetOrCreate(ctx context.Context, sessionKey string) (domain.Cart, error) {
	const q = `INSERT INTO carts (session_key) VALUES ($1) ON CONFLICT (session_key) DO NOTHING`

	if _, err := r.q.Exec(ctx, q, sessionKey); err != nil {
		return domain.Cart{}, fmt.Errorf("postgres: create cart for session %q: %w", sessionKey, err)
	}
	return r.FindBySession(ctx, sessionKey)
}

func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	const q = `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	if _, err := r.q.Exec(ctx, q, cartID, productID, quantity); err != nil {
		return fmt.Errorf("postgres: upsert item %d in cart %d: %w", productID, cartID, err)
	}
	return nil
}

func (r *cartRepo) Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	const q = `
		SELECT ci.product_id, p.name, ci.quantity, p.price::text
		FROM   cart_items ci
		JOIN   products p ON p.id = ci.product_id
		WHERE  ci.cart_id = $1
		ORDER  BY ci.id`

	rows, err := r.q.Query(ctx, q, cartID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list lines of cart %d: %w", cartID, err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		var price string
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &price); err != nil {
			return nil, fmt.Errorf("postgres: scan cart line: %w", err)
		}
		if l.UnitPrice, err = parseMoney(price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return false, fmt.Errorf("postgres: remove item %d from cart %d: %w", productID, cartID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *cartRepo) Delete(ctx context.Context, cartID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("postgres: delete cart %d: %w", cartID, err)
	}
	return nil
}

// --- products / inventory ---

type productRepo struct {
	q querier
}

const productColumns = `id, name, description, price::text, quantity, is_deleted, created_at`

func (r *productRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	const q = `
		INSERT INTO products (name, description, price, quantity)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, q, p.Name, p.Description, p.Price.StringFixed(2), p.Quantity).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Product{}, domain.NewValidation(domain.ErrMsgProductNameTaken)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("postgres: create product %q: %w", p.Name, err)
	}
	p.Price = p.Price.Round(2)
	return p, nil
}

func (r *productRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND NOT is_deleted`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.NewNotFound(domain.ErrMsgProductNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("postgres: get product %d: %w", id, err)
	}
	return p, nil
}

func (r *productRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND NOT is_deleted AND id <> $2)`

	var taken bool
	if err := r.q.QueryRow(ctx, q, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres: check product name %q: %w", name, err)
	}
	return taken, nil
}

func (r *productRepo) Update(ctx context.Context, p domain.Product) error {
	const q = `
		UPDATE products SET name = $1, description = $2, price = $3::numeric, quantity = $4
		WHERE  id = $5 AND NOT is_deleted`

	tag, err := r.q.Exec(ctx, q, p.Name, p.Description, p.Price.StringFixed(2), p.Quantity, p.ID)
	if isUniqueViolation(err) {
		return domain.NewValidation(domain.ErrMsgProductNameTaken)
	}
	if err != nil {
		return fmt.Errorf("postgres: update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrMsgProductNotFound)
	}
	return nil
}

func (r *productRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrMsgProductNotFound)
	}
	return nil
}

func (r *productRepo) Count(ctx context.Context, keyword string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE NOT is_deleted AND name ILIKE $1`, likePattern(keyword)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count products: %w", err)
	}
	return n, nil
}

func (r *productRepo) List(ctx context.Context, keyword string, limit, offset int) ([]domain.Product, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	q := `SELECT ` + productColumns + `
		FROM   products
		WHERE  NOT is_deleted AND name ILIKE $1
		ORDER  BY id DESC
		LIMIT  $2 OFFSET $3`

	rows, err := r.q.Query(ctx, q, likePattern(keyword), lim, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepo) HasStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND NOT is_deleted AND quantity >= $2)`

	var ok bool
	if err := r.q.QueryRow(ctx, q, productID, quantity).Scan(&ok); err != nil {
		return false, fmt.Errorf("postgres: check stock of product %d: %w", productID, err)
	}
	return ok, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	const q = `
		UPDATE products SET quantity = quantity - $1
		WHERE  id = $2 AND NOT is_deleted AND quantity >= $1`

	tag, err := r.q.Exec(ctx, q, quantity, productID)
	if err != nil {
		return fmt.Errorf("postgres: decrement stock of product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConflict(domain.ErrMsgStockConflict)
	}
	return nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Quantity, &p.Deleted, &p.CreatedAt); err != nil {
		return domain.Product{}, err
	}
	var err error
	p.Price, err = parseMoney(price)
	return p, err
}

// --- orders ---

type orderRepo struct {
	q querier
}

func (r *orderRepo) Create(ctx context.Context, o domain.Order) (int64, error) {
	const q = `
		INSERT INTO orders
			(customer_name, customer_email, customer_phone, total_amount, status, ordered_at, delivery_date, delivery_time)
		VALUES
			($1, $2, $3, $4::numeric, $5, $6, $7::date, $8::time)
		RETURNING id`

	var id int64
	err := r.q.QueryRow(ctx, q,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.TotalAmount.StringFixed(2),
		string(o.Status),
		o.OrderedAt,
		o.DeliveryDate,
		o.DeliveryTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: create order: %w", err)
	}
	return id, nil
}

func (r *orderRepo) AddItem(ctx context.Context, orderID int64, item domain.OrderItem) error {
	const q = `INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4::numeric)`

	if _, err := r.q.Exec(ctx, q, orderID, item.ProductID, item.Quantity, item.UnitPrice.StringFixed(2)); err != nil {
		return fmt.Errorf("postgres: add item %d to order %d: %w", item.ProductID, orderID, err)
	}
	return nil
}

func (r *orderRepo) Finalize(ctx context.Context, orderID int64, total decimal.Decimal, status domain.OrderStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET total_amount = $1::numeric, status = $2 WHERE id = $3`,
		total.StringFixed(2), string(status), orderID)
	if err != nil {
		return fmt.Errorf("postgres: finalize order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrMsgOrderNotFound)
	}
	return nil
}

func (r *orderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	const q = `
		SELECT id, customer_name, customer_email, customer_phone, total_amount::text, status,
		       ordered_at, delivery_date::text, delivery_time::text
		FROM   orders
		WHERE  id = $1`

	var o domain.Order
	var total, status string
	err := r.q.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &total, &status,
		&o.OrderedAt, &o.DeliveryDate, &o.DeliveryTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.NewNotFound(domain.ErrMsgOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("postgres: get order %d: %w", id, err)
	}
	o.Status = domain.OrderStatus(status)
	if o.TotalAmount, err = parseMoney(total); err != nil {
		return domain.Order{}, err
	}

	rows, err := r.q.Query(ctx, `SELECT product_id, quantity, unit_price::text FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("postgres: list items of order %d: %w", id, err)
	}
	defer rows.Close()

	o.Items = []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		var price string
		if err := rows.Scan(&it.ProductID, &it.Quantity, &price); err != nil {
			return domain.Order{}, fmt.Errorf("postgres: scan order item: %w", err)
		}
		if it.UnitPrice, err = parseMoney(price); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// --- outbox ---

type eventRepo struct {
	q querier
}

func (r *eventRepo) Append(ctx context.Context, e domain.Event) error {
	const q = `INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`

	if _, err := r.q.Exec(ctx, q, e.EventID, e.Topic, e.Key, []byte(e.Payload)); err != nil {
		return fmt.Errorf("postgres: append event %q: %w", e.EventID, err)
	}
	return nil
}

func (r *eventRepo) FetchPending(ctx context.Context, limit int) ([]domain.Event, error) {
	const q = `
		SELECT id, event_id, topic, key, payload, created_at
		FROM   outbox
		WHERE  sent_at IS NULL
		ORDER  BY id
		LIMIT  $1`

	rows, err := r.q.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch pending events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.Topic, &e.Key, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan event: %w", err)
		}
		e.Payload = payload
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) MarkSent(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `UPDATE outbox SET sent_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("postgres: mark event %d sent: %w", id, err)
	}
	return nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("postgres: parse amount %q: %w", s, err)
	}
	return d, nil
}

func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}
