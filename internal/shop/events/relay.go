package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jcmexdev/shop-checkout/internal/pkg/kafka"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
)

const defaultBatchSize = 100

type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// Relay moves outbox rows to the broker. Delivery is at least once: a
// crash between publish and mark-sent republishes the batch.
type Relay struct {
	uow       ports.UnitOfWork
	publisher Publisher
	interval  time.Duration
	batchSize int
}

func NewRelay(uow ports.UnitOfWork, publisher Publisher, interval time.Duration) *Relay {
	return &Relay{uow: uow, publisher: publisher, interval: interval, batchSize: defaultBatchSize}
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "outbox relay flush failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "outbox events published", "count", n)
			}
		}
	}
}

// Start runs the relay in a goroutine. The returned channel is closed once
// Run has returned, i.e. after any in-flight Flush has finished.
func (r *Relay) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "outbox relay stopped", "error", err)
		}
	}()
	return done
}

// Flush publishes one batch of pending events and reports how many were
// sent. The store is not held while talking to the broker.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	var pending []domain.Event
	err := r.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		pending, err = repos.Events.FetchPending(ctx, r.batchSize)
		return err
	})
	if err != nil || len(pending) == 0 {
		return 0, err
	}

	msgs := make([]kafka.Message, 0, len(pending))
	for _, e := range pending {
		msgs = append(msgs, kafka.Message{Topic: e.Topic, Key: e.Key, Value: e.Payload})
	}
	if err := r.publisher.Publish(ctx, msgs...); err != nil {
		return 0, err
	}

	err = r.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		for _, e := range pending {
			if err := repos.Events.MarkSent(ctx, e.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}
