package events_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-checkout/internal/pkg/kafka"
	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/events"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
	"github.com/jcmexdev/shop-checkout/internal/storage/sqlite"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *fakePublisher) published() []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Message(nil), p.msgs...)
}

func newStoreWithEvents(t *testing.T, n int) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	err = st.WithinTx(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		for i := 1; i <= n; i++ {
			ev, err := events.NewOrderPlaced(ctx, domain.Order{ID: int64(i), CustomerEmail: "c@example.com"}, time.Now())
			if err != nil {
				return err
			}
			if err := repos.Events.Append(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return st
}

func TestFlush_PublishesAndMarksSent(t *testing.T) {
	st := newStoreWithEvents(t, 3)
	pub := &fakePublisher{}
	relay := events.NewRelay(st, pub, time.Hour)

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	msgs := pub.published()
	require.Len(t, msgs, 3)
	assert.Equal(t, events.TopicOrders, msgs[0].Topic)
	assert.Equal(t, "1", msgs[0].Key)
	assert.Contains(t, string(msgs[0].Value), `"type":"order.placed"`)

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "sent events are not republished")
	assert.Len(t, pub.published(), 3)
}

func TestFlush_PublishFailureKeepsEventsPending(t *testing.T) {
	st := newStoreWithEvents(t, 2)
	pub := &fakePublisher{err: errors.New("broker down")}
	relay := events.NewRelay(st, pub, time.Hour)

	_, err := relay.Flush(context.Background())
	require.Error(t, err)

	pub.err = nil
	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := newStoreWithEvents(t, 1)
	pub := &fakePublisher{}
	relay := events.NewRelay(st, pub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return len(pub.published()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestNewOrderPlaced_KeyAndPayload(t *testing.T) {
	ev, err := events.NewOrderPlaced(context.Background(), domain.Order{
		ID:    42,
		Items: []domain.OrderItem{{ProductID: 7, Quantity: 2, UnitPrice: decimal.RequireFromString("1.25")}},
	}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "42", ev.Key)
	assert.NotEmpty(t, ev.EventID)
	assert.JSONEq(t, `{
		"type": "order.placed",
		"event_id": "`+ev.EventID+`",
		"order_id": 42,
		"customer_email": "",
		"total_amount": "0.00",
		"items": [{"product_id": 7, "quantity": 2, "unit_price": "1.25", "subtotal": "2.50"}],
		"delivery_date": "",
		"delivery_time": "",
		"occurred_at": "2026-01-02T03:04:05Z"
	}`, string(ev.Payload))
}

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *blockingPublisher) Publish(context.Context, ...kafka.Message) error {
	p.once.Do(func() { close(p.entered) })
	<-p.release
	return nil
}

func TestStart_DoneWaitsForInFlightFlush(t *testing.T) {
	st := newStoreWithEvents(t, 1)
	pub := &blockingPublisher{entered: make(chan struct{}), release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := events.NewRelay(st, pub, 10*time.Millisecond).Start(ctx)

	select {
	case <-pub.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("relay never published")
	}
	cancel()

	select {
	case <-done:
		t.Fatal("done closed while a flush was still publishing")
	case <-time.After(50 * time.Millisecond):
	}

	close(pub.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after the flush finished")
	}
}
