package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
)

type eventRepo struct {
	q querier
}

func (r *eventRepo) Append(ctx context.Context, e domain.Event) error {
	const q = `INSERT INTO outbox (event_id, topic, key, payload, created_at) VALUES (?, ?, ?, ?, ?)`

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if _, err := r.q.ExecContext(ctx, q, e.EventID, e.Topic, e.Key, string(e.Payload), formatTime(e.CreatedAt)); err != nil {
		return fmt.Errorf("sqlite: append event %q: %w", e.EventID, err)
	}
	return nil
}

func (r *eventRepo) FetchPending(ctx context.Context, limit int) ([]domain.Event, error) {
	const q = `
		SELECT id, event_id, topic, key, payload, created_at
		FROM   outbox
		WHERE  sent_at IS NULL
		ORDER  BY id
		LIMIT  ?`

	rows, err := r.q.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch pending events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var payload, createdAt string
		if err := rows.Scan(&e.ID, &e.EventID, &e.Topic, &e.Key, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}
		e.Payload = []byte(payload)
		if e.CreatedAt, err = parseRFC3339(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `UPDATE outbox SET sent_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("sqlite: mark event %d sent: %w", id, err)
	}
	return nil
}
