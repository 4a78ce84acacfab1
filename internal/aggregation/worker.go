package aggregation

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

type Handler interface {
	Handle(ctx context.Context, change invoice.Change) error
}

// Worker feeds invoice changes from a subscription into a Handler, running
// up to concurrency handlers at once.
type Worker struct {
	sub         changefeed.Subscriber
	handler     Handler
	concurrency int
	log         zerolog.Logger
}

func NewWorker(sub changefeed.Subscriber, handler Handler, concurrency int) *Worker {
	return &Worker{
		sub:         sub,
		handler:     handler,
		concurrency: max(concurrency, 1),
		log:         logger.WithComponent("aggregation-worker"),
	}
}

// Run consumes deliveries until ctx is done or the feed is closed, then
// waits for in-flight handlers. Handlers are not cancelled by ctx.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.sub.Subscribe(ctx)
	if err != nil {
		return err
	}

	handlerCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(w.concurrency)

	w.log.Info().Int("concurrency", w.concurrency).Msg("aggregation worker started")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case d, ok := <-deliveries:
			if !ok {
				break loop
			}

			g.Go(func() error {
				w.process(handlerCtx, d)
				return nil
			})
		}
	}

	_ = g.Wait()

	w.log.Info().Msg("aggregation worker stopped")

	return nil
}

func (w *Worker) process(ctx context.Context, d changefeed.Delivery) {
	err := w.handler.Handle(ctx, d.Change)

	var missing *MissingAssociationError

	switch {
	case err == nil:
	case errors.As(err, &missing):
		w.log.Debug().
			Str("invoice_id", d.Change.InvoiceID.String()).
			Msg("invoice has no project, skipping")
	default:
		w.log.Error().
			Err(err).
			Str("invoice_id", d.Change.InvoiceID.String()).
			Str("op", string(d.Change.Op)).
			Msg("project total recomputation failed")
	}

	if d.Ack == nil {
		return
	}

	if err := d.Ack(ctx); err != nil {
		w.log.Warn().
			Err(err).
			Str("invoice_id", d.Change.InvoiceID.String()).
			Msg("failed to acknowledge change")
	}
}
