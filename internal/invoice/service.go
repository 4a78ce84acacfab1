package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	CreateInvoices(ctx context.Context, invs []*Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Invoice, error)
	ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]*Invoice, error)
}

// Publisher delivers invoice changes to whoever keeps project totals in sync.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

type Service struct {
	repo Repository
	pub  Publisher
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, pub Publisher) *Service {
	return &Service{
		repo: repo,
		pub:  pub,
		log:  logger.WithComponent("invoice"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type CreateParams struct {
	ProjectID   *uuid.UUID
	SupplierID  *uuid.UUID
	Number      string
	Description string
	Amount      int64
	Status      Status
	IssueDate   time.Time
	DueDate     *time.Time
}

// UpdateParams carries a partial update. Nil fields are left untouched.
type UpdateParams struct {
	ProjectID     *uuid.UUID
	ClearProject  bool
	SupplierID    *uuid.UUID
	ClearSupplier bool
	Number        *string
	Description   *string
	Amount        *int64
	Status        *Status
	IssueDate     *time.Time
	DueDate       *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	inv := fromParams(params)
	if err := validate(inv); err != nil {
		return nil, err
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	s.publish(ctx, Change{InvoiceID: inv.ID, Op: OpCreate, After: inv.Clone()})

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Invoice, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	before, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	after := before.Clone()
	params.apply(after)

	if err := validate(after); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInvoice(ctx, after); err != nil {
		return nil, err
	}

	s.publish(ctx, Change{InvoiceID: id, Op: OpUpdate, Before: before, After: after.Clone()})

	return after, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	before, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, Change{InvoiceID: id, Op: OpDelete, Before: before})

	return nil
}

// Import creates all invoices for the project in one batch. Nothing is
// written if any row fails validation.
func (s *Service) Import(ctx context.Context, projectID uuid.UUID, params []CreateParams) ([]*Invoice, error) {
	if len(params) == 0 {
		return nil, nil
	}

	invs := make([]*Invoice, len(params))
	for i, p := range params {
		p.ProjectID = new(projectID)

		inv := fromParams(p)
		if err := validate(inv); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		invs[i] = inv
	}

	if err := s.repo.CreateInvoices(ctx, invs); err != nil {
		return nil, fmt.Errorf("create invoices: %w", err)
	}

	for _, inv := range invs {
		s.publish(ctx, Change{InvoiceID: inv.ID, Op: OpCreate, After: inv.Clone()})
	}

	return invs, nil
}

// publish never fails the write that produced the change: the next write on
// the same project recomputes its total from scratch anyway.
func (s *Service) publish(ctx context.Context, change Change) {
	change.At = s.now()

	if err := s.pub.Publish(ctx, change); err != nil {
		s.log.Error().
			Err(err).
			Str("invoice_id", change.InvoiceID.String()).
			Str("op", string(change.Op)).
			Msg("failed to publish invoice change")
	}
}

func fromParams(p CreateParams) *Invoice {
	status := p.Status
	if status == "" {
		status = StatusPendingPayment
	}

	return &Invoice{
		ProjectID:   p.ProjectID,
		SupplierID:  p.SupplierID,
		Number:      p.Number,
		Description: p.Description,
		Amount:      p.Amount,
		Status:      status,
		IssueDate:   p.IssueDate,
		DueDate:     p.DueDate,
	}
}

func (p UpdateParams) apply(inv *Invoice) {
	switch {
	case p.ClearProject:
		inv.ProjectID = nil
	case p.ProjectID != nil:
		inv.ProjectID = new(*p.ProjectID)
	}

	switch {
	case p.ClearSupplier:
		inv.SupplierID = nil
	case p.SupplierID != nil:
		inv.SupplierID = new(*p.SupplierID)
	}

	if p.Number != nil {
		inv.Number = *p.Number
	}

	if p.Description != nil {
		inv.Description = *p.Description
	}

	if p.Amount != nil {
		inv.Amount = *p.Amount
	}

	if p.Status != nil {
		inv.Status = *p.Status
	}

	if p.IssueDate != nil {
		inv.IssueDate = *p.IssueDate
	}

	if p.DueDate != nil {
		inv.DueDate = new(*p.DueDate)
	}
}

func validate(inv *Invoice) error {
	if inv.Amount < 0 {
		return &ValidationError{Field: "amount", Value: inv.Amount, Message: "must not be negative"}
	}

	if !inv.Status.Valid() {
		return &ValidationError{Field: "status", Value: inv.Status, Message: "unknown status"}
	}

	if inv.ProjectID != nil && *inv.ProjectID == uuid.Nil {
		return &ValidationError{Field: "project_id", Value: inv.ProjectID, Message: "must not be the nil id"}
	}

	if inv.DueDate != nil && !inv.IssueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		return &ValidationError{Field: "due_date", Value: *inv.DueDate, Message: "must not precede the issue date"}
	}

	return nil
}
