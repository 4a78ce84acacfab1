package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("invoice not found")

// Status represents the payment state of an invoice.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusOverdue        Status = "overdue"
	StatusCancelled      Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}

	return false
}

// Invoice represents a supplier invoice booked against a project.
type Invoice struct {
	ID          uuid.UUID
	ProjectID   *uuid.UUID // Nil invoices never count towards a project total
	SupplierID  *uuid.UUID
	Number      string
	Description string
	Amount      int64 // Amount in cents
	Status      Status
	IssueDate   time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Clone returns a copy that shares no pointers with the original.
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}

	c := *i

	if i.ProjectID != nil {
		c.ProjectID = new(*i.ProjectID)
	}

	if i.SupplierID != nil {
		c.SupplierID = new(*i.SupplierID)
	}

	if i.DueDate != nil {
		c.DueDate = new(*i.DueDate)
	}

	if i.UpdatedAt != nil {
		c.UpdatedAt = new(*i.UpdatedAt)
	}

	return &c
}

// Op names the kind of write that produced a Change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes a single invoice write. Before is nil for creates and
// After is nil for deletes.
type Change struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Op        Op        `json:"op"`
	Before    *Invoice  `json:"before,omitempty"`
	After     *Invoice  `json:"after,omitempty"`
	At        time.Time `json:"at"`
}

// ProjectID returns the project the change belongs to, preferring the
// post-write state.
func (c Change) ProjectID() (uuid.UUID, bool) {
	if c.After != nil {
		if c.After.ProjectID == nil {
			return uuid.Nil, false
		}

		return *c.After.ProjectID, true
	}

	if c.Before != nil && c.Before.ProjectID != nil {
		return *c.Before.ProjectID, true
	}

	return uuid.Nil, false
}

// AffectedProjects returns every project whose total the change can alter:
// the project from ProjectID first, then the pre-write project when the
// invoice was moved away from it.
func (c Change) AffectedProjects() []uuid.UUID {
	var ids []uuid.UUID

	primary, ok := c.ProjectID()
	if ok {
		ids = append(ids, primary)
	}

	if c.After != nil && c.Before != nil && c.Before.ProjectID != nil {
		prev := *c.Before.ProjectID
		if !ok || prev != primary {
			ids = append(ids, prev)
		}
	}

	return ids
}

// ValidationError reports invoice input rejected before it reaches storage.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (value: %v)", e.Field, e.Message, e.Value)
}
