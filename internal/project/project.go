package project

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/finance"
)

var ErrNotFound = errors.New("project not found")

// Project represents a budgeted piece of work that invoices are booked against.
type Project struct {
	ID         uuid.UUID
	Name       string
	Financials finance.Financials

	// TotalNonCancelledInvoiceAmount is maintained by the aggregation worker only.
	TotalNonCancelledInvoiceAmount int64

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Summary is the on-demand financial view of a project.
type Summary struct {
	ProjectID    uuid.UUID `json:"project_id"`
	InvoiceCount int       `json:"invoice_count"`
	InvoiceTotal int64     `json:"invoice_total"` // Sum of the live non-cancelled invoices, in cents
	finance.Summary
}
