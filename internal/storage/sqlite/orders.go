package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

type orderRepo struct {
	q querier
}

func (r *orderRepo) Create(ctx context.Context, o domain.Order) (int64, error) {
	const q = `
		INSERT INTO orders
			(customer_name, customer_email, customer_phone, total_amount, status, ordered_at, delivery_date, delivery_time)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, q,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.TotalAmount.StringFixed(2),
		string(o.Status),
		formatTime(o.OrderedAt),
		o.DeliveryDate,
		o.DeliveryTime,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: create order id: %w", err)
	}
	return id, nil
}

func (r *orderRepo) AddItem(ctx context.Context, orderID int64, item domain.OrderItem) error {
	const q = `INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`

	if _, err := r.q.ExecContext(ctx, q, orderID, item.ProductID, item.Quantity, item.UnitPrice.StringFixed(2)); err != nil {
		return fmt.Errorf("sqlite: add item %d to order %d: %w", item.ProductID, orderID, err)
	}
	return nil
}

func (r *orderRepo) Finalize(ctx context.Context, orderID int64, total decimal.Decimal, status domain.OrderStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE orders SET total_amount = ?, status = ? WHERE id = ?`,
		total.StringFixed(2), string(status), orderID)
	if err != nil {
		return fmt.Errorf("sqlite: finalize order %d: %w", orderID, err)
	}
	return expectOne(res, domain.ErrMsgOrderNotFound)
}

func (r *orderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	const q = `
		SELECT id, customer_name, customer_email, customer_phone, total_amount, status,
		       ordered_at, delivery_date, delivery_time
		FROM   orders
		WHERE  id = ?`

	var o domain.Order
	var orderedAt string
	err := r.q.QueryRowContext(ctx, q, id).Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.TotalAmount,
		&o.Status,
		&orderedAt,
		&o.DeliveryDate,
		&o.DeliveryTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NewNotFound(domain.ErrMsgOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: get order %d: %w", id, err)
	}
	if o.OrderedAt, err = parseRFC3339(orderedAt); err != nil {
		return domain.Order{}, err
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT product_id, quantity, unit_price FROM order_items WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: list items of order %d: %w", id, err)
	}
	defer rows.Close()

	o.Items = []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return domain.Order{}, fmt.Errorf("sqlite: scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}
