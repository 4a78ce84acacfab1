package aggregation

import (
	"fmt"

	"github.com/google/uuid"
)

// MissingAssociationError means the written invoice belongs to no project,
// so there was nothing to recompute.
type MissingAssociationError struct {
	InvoiceID uuid.UUID
}

func (e *MissingAssociationError) Error() string {
	return fmt.Sprintf("invoice %s is not associated with a project", e.InvoiceID)
}

// RecomputationFailure means a project total could not be refreshed. It is
// not retried; the next write on the project recomputes it.
type RecomputationFailure struct {
	ProjectID uuid.UUID
	Op        string // "query" or "write"
	Err       error
}

func (e *RecomputationFailure) Error() string {
	return fmt.Sprintf("recompute project %s: %s: %v", e.ProjectID, e.Op, e.Err)
}

func (e *RecomputationFailure) Unwrap() error {
	return e.Err
}
