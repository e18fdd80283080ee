package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

type cartRepo struct {
	q querier
}

func (r *cartRepo) FindBySession(ctx context.Context, sessionKey string) (domain.Cart, error) {
	const q = `SELECT id, session_key, created_at FROM carts WHERE session_key = ?`

	var c domain.Cart
	var createdAt string
	err := r.q.QueryRowContext(ctx, q, sessionKey).Scan(&c.ID, &c.SessionKey, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, domain.NewNotFound(domain.ErrMsgCartNotFound)
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("sqlite: find cart for session %q: %w", sessionKey, err)
	}
	if c.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

func (r *cartRepo) GetOrCreate(ctx context.Context, sessionKey string) (domain.Cart, error) {
	const q = `INSERT INTO carts (session_key, created_at) VALUES (?, ?) ON CONFLICT (session_key) DO NOTHING`

	if _, err := r.q.ExecContext(ctx, q, sessionKey, formatTime(time.Now())); err != nil {
		return domain.Cart{}, fmt.Errorf("sqlite: create cart for session %q: %w", sessionKey, err)
	}
	return r.FindBySession(ctx, sessionKey)
}

func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	const q = `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = excluded.quantity`

	if _, err := r.q.ExecContext(ctx, q, cartID, productID, quantity); err != nil {
		return fmt.Errorf("sqlite: upsert item %d in cart %d: %w", productID, cartID, err)
	}
	return nil
}

func (r *cartRepo) Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	const q = `
		SELECT ci.product_id, p.name, ci.quantity, p.price
		FROM   cart_items ci
		JOIN   products p ON p.id = ci.product_id
		WHERE  ci.cart_id = ?
		ORDER  BY ci.id`

	rows, err := r.q.QueryContext(ctx, q, cartID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list lines of cart %d: %w", cartID, err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID int64) (bool, error) {
	const q = `DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`

	res, err := r.q.ExecContext(ctx, q, cartID, productID)
	if err != nil {
		return false, fmt.Errorf("sqlite: remove item %d from cart %d: %w", productID, cartID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: remove item rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *cartRepo) Delete(ctx context.Context, cartID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, cartID); err != nil {
		return fmt.Errorf("sqlite: delete cart %d: %w", cartID, err)
	}
	return nil
}
