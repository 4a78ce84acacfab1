package supplier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxBatchSize is the largest id set the store accepts in one lookup.
const MaxBatchSize = 30

var (
	ErrNotFound      = errors.New("supplier not found")
	ErrBatchTooLarge = fmt.Errorf("lookup batch exceeds %d ids", MaxBatchSize)
)

// Supplier is a read-mostly reference entity shown next to invoices.
type Supplier struct {
	ID        uuid.UUID
	Name      *string
	CreatedAt time.Time
}

// DisplayName returns the supplier name or "" when it has none.
func (s *Supplier) DisplayName() string {
	if s == nil || s.Name == nil {
		return ""
	}

	return *s.Name
}

// PartialResolutionError reports ids whose lookup batches failed. It is only
// returned when nothing at all could be resolved.
type PartialResolutionError struct {
	Failed []uuid.UUID
	Err    error
}

func (e *PartialResolutionError) Error() string {
	ids := make([]string, 0, min(len(e.Failed), 3))
	for _, id := range e.Failed[:min(len(e.Failed), 3)] {
		ids = append(ids, id.String())
	}

	if len(e.Failed) > 3 {
		ids = append(ids, "...")
	}

	return fmt.Sprintf("resolving %d suppliers [%s]: %v", len(e.Failed), strings.Join(ids, ", "), e.Err)
}

func (e *PartialResolutionError) Unwrap() error {
	return e.Err
}
