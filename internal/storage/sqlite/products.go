package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

// productRepo serves both the catalog and the inventory contract.
type productRepo struct {
	q querier
}

const productColumns = `id, name, description, price, quantity, is_deleted, created_at`

func (r *productRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	const q = `
		INSERT INTO products (name, description, price, quantity, is_deleted, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`

	p.CreatedAt = time.Now().UTC()
	res, err := r.q.ExecContext(ctx, q, p.Name, p.Description, p.Price.StringFixed(2), p.Quantity, formatTime(p.CreatedAt))
	if err != nil {
		return domain.Product{}, fmt.Errorf("sqlite: create product %q: %w", p.Name, err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return domain.Product{}, fmt.Errorf("sqlite: create product id: %w", err)
	}
	p.Price = p.Price.Round(2)
	return p, nil
}

func (r *productRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = ? AND is_deleted = 0`

	p, err := scanProduct(r.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NewNotFound(domain.ErrMsgProductNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("sqlite: get product %d: %w", id, err)
	}
	return p, nil
}

func (r *productRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM products WHERE name = ? AND is_deleted = 0 AND id <> ?)`

	var taken bool
	if err := r.q.QueryRowContext(ctx, q, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("sqlite: check product name %q: %w", name, err)
	}
	return taken, nil
}

func (r *productRepo) Update(ctx context.Context, p domain.Product) error {
	const q = `
		UPDATE products SET name = ?, description = ?, price = ?, quantity = ?
		WHERE  id = ? AND is_deleted = 0`

	res, err := r.q.ExecContext(ctx, q, p.Name, p.Description, p.Price.StringFixed(2), p.Quantity, p.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update product %d: %w", p.ID, err)
	}
	return expectOne(res, domain.ErrMsgProductNotFound)
}

func (r *productRepo) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `UPDATE products SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete product %d: %w", id, err)
	}
	return expectOne(res, domain.ErrMsgProductNotFound)
}

func (r *productRepo) Count(ctx context.Context, keyword string) (int, error) {
	const q = `SELECT COUNT(*) FROM products WHERE is_deleted = 0 AND name LIKE ? ESCAPE '\'`

	var n int
	if err := r.q.QueryRowContext(ctx, q, likePattern(keyword)).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count products: %w", err)
	}
	return n, nil
}

func (r *productRepo) List(ctx context.Context, keyword string, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}
	q := `SELECT ` + productColumns + `
		FROM   products
		WHERE  is_deleted = 0 AND name LIKE ? ESCAPE '\'
		ORDER  BY id DESC
		LIMIT  ? OFFSET ?`

	rows, err := r.q.QueryContext(ctx, q, likePattern(keyword), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepo) HasStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM products WHERE id = ? AND is_deleted = 0 AND quantity >= ?)`

	var ok bool
	if err := r.q.QueryRowContext(ctx, q, productID, quantity).Scan(&ok); err != nil {
		return false, fmt.Errorf("sqlite: check stock of product %d: %w", productID, err)
	}
	return ok, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	const q = `
		UPDATE products SET quantity = quantity - ?
		WHERE  id = ? AND is_deleted = 0 AND quantity >= ?`

	res, err := r.q.ExecContext(ctx, q, quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("sqlite: decrement stock of product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: decrement stock rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewConflict(domain.ErrMsgStockConflict)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (domain.Product, error) {
	var p domain.Product
	var createdAt string
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.Deleted, &createdAt); err != nil {
		return domain.Product{}, err
	}
	t, err := parseRFC3339(createdAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = t
	return p, nil
}

func expectOne(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewNotFound(notFoundMsg)
	}
	return nil
}

// likePattern builds a contains-pattern; SQLite LIKE is case-insensitive
// for ASCII.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}
