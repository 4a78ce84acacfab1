package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/finance"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error

	SetInvoiceTotal(ctx context.Context, id uuid.UUID, total int64) error
}

// InvoiceAmounts reads the live non-cancelled invoice amounts of a project.
type InvoiceAmounts interface {
	ActiveAmounts(ctx context.Context, projectID uuid.UUID) ([]int64, error)
}

type Service struct {
	repo     Repository
	invoices InvoiceAmounts
}

func NewService(repo Repository, invoices InvoiceAmounts) *Service {
	return &Service{repo: repo, invoices: invoices}
}

type CreateParams struct {
	Name       string
	Financials finance.Financials
}

// UpdateParams carries a partial update. The invoice total is deliberately
// absent: only the aggregation worker writes it.
type UpdateParams struct {
	Name           *string
	PlannedBudget  *int64
	ActualBudget   *int64
	PlannedRevenue *int64
	ActualRevenue  *int64
	USNTax         *int64
	NDSTax         *int64
}

var ErrNameRequired = errors.New("project name is required")

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	p := &Project{
		Name:       name,
		Financials: params.Financials,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, ErrNameRequired
		}

		p.Name = name
	}

	setIf(&p.Financials.PlannedBudget, params.PlannedBudget)
	setIf(&p.Financials.ActualBudget, params.ActualBudget)
	setIf(&p.Financials.PlannedRevenue, params.PlannedRevenue)
	setIf(&p.Financials.ActualRevenue, params.ActualRevenue)
	setIf(&p.Financials.USNTax, params.USNTax)
	setIf(&p.Financials.NDSTax, params.NDSTax)

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Summary computes the financial metrics from the current project figures and
// a fresh read of its non-cancelled invoices. The stored aggregate is not used.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	amounts, err := s.invoices.ActiveAmounts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading invoice amounts: %w", err)
	}

	var total int64
	for _, a := range amounts {
		total += a
	}

	return &Summary{
		ProjectID:    p.ID,
		InvoiceCount: len(amounts),
		InvoiceTotal: total,
		Summary:      finance.Compute(p.Financials, amounts),
	}, nil
}

func setIf(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}
