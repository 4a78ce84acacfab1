package aggregation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/aggregation"
	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

type recordingHandler struct {
	mu    sync.Mutex
	seen  []uuid.UUID
	err   error
	delay time.Duration
}

func (h *recordingHandler) Handle(ctx context.Context, change invoice.Change) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seen = append(h.seen, change.InvoiceID)

	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.seen)
}

// chanSubscriber hands out a prepared channel of deliveries.
type chanSubscriber struct {
	ch  chan changefeed.Delivery
	err error
}

func (s *chanSubscriber) Subscribe(context.Context) (<-chan changefeed.Delivery, error) {
	return s.ch, s.err
}

func TestWorker_DrainsMemoryFeed(t *testing.T) {
	feed := changefeed.NewMemory(64)
	handler := &recordingHandler{}
	worker := aggregation.NewWorker(feed, handler, 4)

	ctx := context.Background()

	for range 25 {
		require.NoError(t, feed.Publish(ctx, invoice.Change{InvoiceID: uuid.New(), Op: invoice.OpCreate}))
	}

	require.NoError(t, feed.Close())
	require.NoError(t, worker.Run(ctx))

	assert.Equal(t, 25, handler.count())
}

func TestWorker_AcksEveryDelivery(t *testing.T) {
	type testCase struct {
		name       string
		handlerErr error
		ackErr     error
	}

	tests := []testCase{
		{name: "Success"},
		{name: "RecomputationFailure", handlerErr: &aggregation.RecomputationFailure{Op: "write", Err: errors.New("boom")}},
		{name: "Orphan", handlerErr: &aggregation.MissingAssociationError{InvoiceID: uuid.New()}},
		{name: "AckFailure", ackErr: errors.New("redis gone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acked atomic.Int32

			sub := &chanSubscriber{ch: make(chan changefeed.Delivery, 3)}
			for range 3 {
				sub.ch <- changefeed.Delivery{
					Change: invoice.Change{InvoiceID: uuid.New()},
					Ack: func(context.Context) error {
						acked.Add(1)
						return tt.ackErr
					},
				}
			}

			close(sub.ch)

			handler := &recordingHandler{err: tt.handlerErr}
			err := aggregation.NewWorker(sub, handler, 2).Run(context.Background())

			require.NoError(t, err)
			assert.Equal(t, 3, handler.count())
			assert.Equal(t, int32(3), acked.Load())
		})
	}
}

func TestWorker_SubscribeError(t *testing.T) {
	sub := &chanSubscriber{err: errors.New("no group")}

	err := aggregation.NewWorker(sub, &recordingHandler{}, 1).Run(context.Background())

	assert.EqualError(t, err, "no group")
}

func TestWorker_ShutdownFinishesInFlight(t *testing.T) {
	sub := &chanSubscriber{ch: make(chan changefeed.Delivery)}
	handler := &recordingHandler{delay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- aggregation.NewWorker(sub, handler, 1).Run(ctx)
	}()

	sub.ch <- changefeed.Delivery{Change: invoice.Change{InvoiceID: uuid.New()}}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Equal(t, 1, handler.count())
}

func TestWorker_EndToEndWithTrigger(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	feed := changefeed.NewMemory(16)

	projectID := uuid.New()

	for i := range 5 {
		change := store.put(&invoice.Invoice{
			ID:        uuid.New(),
			ProjectID: &projectID,
			Amount:    int64(100 * (i + 1)),
			Status:    invoice.StatusPendingPayment,
		})
		require.NoError(t, feed.Publish(ctx, change))
		require.NoError(t, feed.Publish(ctx, change))
	}

	require.NoError(t, feed.Close())

	worker := aggregation.NewWorker(feed, aggregation.NewTrigger(store, store), 3)
	require.NoError(t, worker.Run(ctx))

	assert.Equal(t, int64(1500), store.totals[projectID])
}
