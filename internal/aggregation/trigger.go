package aggregation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/tally/internal/invoice"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

//go:generate mockgen -source=trigger.go -destination=trigger_mock.go -package=aggregation
type InvoiceLister interface {
	ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]*invoice.Invoice, error)
}

type TotalWriter interface {
	SetInvoiceTotal(ctx context.Context, id uuid.UUID, total int64) error
}

// Trigger keeps a project's non-cancelled invoice total in line with its
// invoices. It holds no state between calls, so replays are harmless.
type Trigger struct {
	invoices InvoiceLister
	projects TotalWriter
	log      zerolog.Logger
}

func NewTrigger(invoices InvoiceLister, projects TotalWriter) *Trigger {
	return &Trigger{
		invoices: invoices,
		projects: projects,
		log:      logger.WithComponent("aggregation"),
	}
}

// Handle recomputes every project touched by the change.
func (t *Trigger) Handle(ctx context.Context, change invoice.Change) error {
	projectIDs := change.AffectedProjects()
	if len(projectIDs) == 0 {
		return &MissingAssociationError{InvoiceID: change.InvoiceID}
	}

	var errs []error

	for _, id := range projectIDs {
		if _, err := t.Recompute(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Recompute rescans all live non-cancelled invoices of the project and
// overwrites the stored total with their sum. The previous total is never read.
func (t *Trigger) Recompute(ctx context.Context, projectID uuid.UUID) (int64, error) {
	invs, err := t.invoices.ListActiveByProject(ctx, projectID)
	if err != nil {
		return 0, &RecomputationFailure{ProjectID: projectID, Op: "query", Err: err}
	}

	var total int64

	for _, inv := range invs {
		if inv == nil || inv.Status == invoice.StatusCancelled {
			continue
		}

		total += inv.Amount
	}

	if err := t.projects.SetInvoiceTotal(ctx, projectID, total); err != nil {
		return 0, &RecomputationFailure{ProjectID: projectID, Op: "write", Err: err}
	}

	t.log.Debug().
		Str("project_id", projectID.String()).
		Int("invoices", len(invs)).
		Int64("total", total).
		Msg("project invoice total recomputed")

	return total, nil
}
