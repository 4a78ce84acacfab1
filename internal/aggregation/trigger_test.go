package aggregation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/aggregation"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

func TestTrigger_Handle(t *testing.T) {
	projectID := uuid.New()
	otherID := uuid.New()

	type testCase struct {
		name      string
		change    invoice.Change
		setupMock func(l *aggregation.MockInvoiceLister, w *aggregation.MockTotalWriter)
		verify    func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name: "CreateSumsActiveInvoices",
			change: invoice.Change{
				Op:    invoice.OpCreate,
				After: &invoice.Invoice{ProjectID: &projectID, Amount: 300},
			},
			setupMock: func(l *aggregation.MockInvoiceLister, w *aggregation.MockTotalWriter) {
				l.EXPECT().ListActiveByProject(gomock.Any(), projectID).Return([]*invoice.Invoice{
					{Amount: 300, Status: invoice.StatusPendingPayment},
					{Amount: 1200, Status: invoice.StatusPaid},
					{Amount: 0, Status: invoice.StatusOverdue},
				}, nil)
				w.EXPECT().SetInvoiceTotal(gomock.Any(), projectID, int64(1500)).Return(nil)
			},
			verify: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "DeleteUsesPreWriteProject",
			change: invoice.Change{
				Op:     invoice.OpDelete,
				Before: &invoice.Invoice{ProjectID: &projectID, Amount: 999},
			},
			setupMock: func(l *aggregation.MockInvoiceLister, w *aggregation.MockTotalWriter) {
				l.EXPECT().ListActiveByProject(gomock.Any(), projectID).Return(nil, nil)
				w.EXPECT().SetInvoiceTotal(gomock.Any(), projectID, int64(0)).Return(nil)
			},
			verify: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "MovedInvoiceRecomputesBothProjects",
			change: invoice.Change{
				Op:     invoice.OpUpdate,
				Before: &invoice.Invoice{ProjectID: &otherID, Amount: 50},
				After:  &invoice.Invoice{ProjectID: &projectID, Amount: 50},
			},
			setupMock: func(l *aggregation.MockInvoiceLister, w *aggregation.MockTotalWriter) {
				l.EXPECT().ListActiveByProject(gomock.Any(), projectID).
					Return([]*invoice.Invoice{{Amount: 50}}, nil)
				w.EXPECT().SetInvoiceTotal(gomock.Any(), projectID, int64(50)).Return(nil)
				l.EXPECT().ListActiveByProject(gomock.Any(), otherID).Return(nil, nil)
				w.EXPECT().SetInvoiceTotal(gomock.Any(), otherID, int64(0)).Return(nil)
			},
			verify: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "OrphanIsNoOp",
			change: invoice.Change{
				InvoiceID: uuid.New(),
				Op:        invoice.OpCreate,
				After:     &invoice.Invoice{Amount: 100},
			},
			verify: func(t *testing.T, err error) {
				var missing *aggregation.MissingAssociationError
				assert.ErrorAs(t, err, &missing)
			},
		},
		{
			name: "QueryFailure",
			change: invoice.Change{
				After: &invoice.Invoice{ProjectID: &projectID},
			},
			setupMock: func(l *aggregation.MockInvoiceLister, _ *aggregation.MockTotalWriter) {
				l.EXPECT().ListActiveByProject(gomock.Any(), projectID).Return(nil, errors.New("conn reset"))
			},
			verify: func(t *testing.T, err error) {
				var failure *aggregation.RecomputationFailure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, "query", failure.Op)
				assert.Equal(t, projectID, failure.ProjectID)
			},
		},
		{
			name: "WriteFailure",
			change: invoice.Change{
				After: &invoice.Invoice{ProjectID: &projectID},
			},
			setupMock: func(l *aggregation.MockInvoiceLister, w *aggregation.MockTotalWriter) {
				l.EXPECT().ListActiveByProject(gomock.Any(), projectID).Return(nil, nil)
				w.EXPECT().SetInvoiceTotal(gomock.Any(), projectID, int64(0)).Return(errors.New("read only"))
			},
			verify: func(t *testing.T, err error) {
				var failure *aggregation.RecomputationFailure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, "write", failure.Op)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			lister := aggregation.NewMockInvoiceLister(ctrl)
			writer := aggregation.NewMockTotalWriter(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(lister, writer)
			}

			trigger := aggregation.NewTrigger(lister, writer)
			tt.verify(t, trigger.Handle(context.Background(), tt.change))
		})
	}
}

// memStore is an in-memory invoice and project store used to check the
// trigger against whole invoice sets.
type memStore struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*invoice.Invoice
	totals   map[uuid.UUID]int64
	writes   int
}

func newMemStore() *memStore {
	return &memStore{
		invoices: make(map[uuid.UUID]*invoice.Invoice),
		totals:   make(map[uuid.UUID]int64),
	}
}

func (m *memStore) ListActiveByProject(_ context.Context, projectID uuid.UUID) ([]*invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*invoice.Invoice

	for _, inv := range m.invoices {
		if inv.ProjectID != nil && *inv.ProjectID == projectID && inv.Status != invoice.StatusCancelled {
			out = append(out, inv.Clone())
		}
	}

	return out, nil
}

func (m *memStore) SetInvoiceTotal(_ context.Context, id uuid.UUID, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totals[id] = total
	m.writes++

	return nil
}

// put stores inv and returns the change describing the write.
func (m *memStore) put(inv *invoice.Invoice) invoice.Change {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.invoices[inv.ID]
	m.invoices[inv.ID] = inv.Clone()

	op := invoice.OpUpdate
	if before == nil {
		op = invoice.OpCreate
	}

	return invoice.Change{InvoiceID: inv.ID, Op: op, Before: before, After: inv.Clone()}
}

func (m *memStore) expectedTotal(projectID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum int64

	for _, inv := range m.invoices {
		if inv.ProjectID != nil && *inv.ProjectID == projectID && inv.Status != invoice.StatusCancelled {
			sum += inv.Amount
		}
	}

	return sum
}

func TestTrigger_Properties(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	trigger := aggregation.NewTrigger(store, store)

	projectID := uuid.New()
	statuses := []invoice.Status{
		invoice.StatusCancelled, invoice.StatusPendingPayment, invoice.StatusPaid, invoice.StatusOverdue,
	}

	var last invoice.Change

	for i := range 12 {
		last = store.put(&invoice.Invoice{
			ID:        uuid.New(),
			ProjectID: &projectID,
			Amount:    int64(1000 * (i + 1)),
			Status:    statuses[i%len(statuses)],
		})
		require.NoError(t, trigger.Handle(ctx, last))
	}

	t.Run("Correctness", func(t *testing.T) {
		assert.Equal(t, store.expectedTotal(projectID), store.totals[projectID])
	})

	t.Run("Idempotency", func(t *testing.T) {
		first := store.totals[projectID]

		require.NoError(t, trigger.Handle(ctx, last))
		require.NoError(t, trigger.Handle(ctx, last))
		assert.Equal(t, first, store.totals[projectID])
	})

	t.Run("CancelledExclusion", func(t *testing.T) {
		target := last.After.Clone()
		require.NotEqual(t, invoice.StatusCancelled, target.Status)

		before := store.totals[projectID]

		target.Status = invoice.StatusCancelled
		require.NoError(t, trigger.Handle(ctx, store.put(target)))
		assert.Equal(t, before-target.Amount, store.totals[projectID])

		target.Status = invoice.StatusPaid
		require.NoError(t, trigger.Handle(ctx, store.put(target)))
		assert.Equal(t, before, store.totals[projectID])
	})

	t.Run("OrphanNeverWrites", func(t *testing.T) {
		writes := store.writes

		err := trigger.Handle(ctx, store.put(&invoice.Invoice{ID: uuid.New(), Amount: 5000}))

		var missing *aggregation.MissingAssociationError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, writes, store.writes)
	})

	t.Run("OutOfOrderReplay", func(t *testing.T) {
		stale := invoice.Change{After: &invoice.Invoice{ProjectID: &projectID, Amount: 1}}
		require.NoError(t, trigger.Handle(ctx, stale))
		assert.Equal(t, store.expectedTotal(projectID), store.totals[projectID])
	})
}

func TestTrigger_ConcurrentRecomputationsConverge(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	trigger := aggregation.NewTrigger(store, store)

	projectID := uuid.New()

	var changes []invoice.Change
	for i := range 20 {
		changes = append(changes, store.put(&invoice.Invoice{
			ID:        uuid.New(),
			ProjectID: &projectID,
			Amount:    int64(i * 10),
			Status:    invoice.StatusPaid,
		}))
	}

	var wg sync.WaitGroup
	for _, c := range changes {
		wg.Go(func() {
			assert.NoError(t, trigger.Handle(ctx, c))
		})
	}

	wg.Wait()

	assert.Equal(t, int64(1900), store.totals[projectID])
}
