package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/project"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, planned_budget, actual_budget, planned_revenue, actual_revenue,
// usn_tax, nds_tax, total_non_cancelled_invoice_amount, created_at, updated_at
func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	f := &p.Financials
	if err := s.Scan(
		&p.ID, &p.Name,
		&f.PlannedBudget, &f.ActualBudget, &f.PlannedRevenue, &f.ActualRevenue, &f.USNTax, &f.NDSTax,
		&p.TotalNonCancelledInvoiceAmount, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

const selectProjectColumns = `
	id, name, planned_budget, actual_budget, planned_revenue, actual_revenue,
	usn_tax, nds_tax, total_non_cancelled_invoice_amount, created_at, updated_at
`

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (name, planned_budget, actual_budget, planned_revenue, actual_revenue, usn_tax, nds_tax, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	f := p.Financials

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		f.PlannedBudget,
		f.ActualBudget,
		f.PlannedRevenue,
		f.ActualRevenue,
		f.USNTax,
		f.NDSTax,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, project.ErrNotFound
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, nil
}

// UpdateProject writes the name and planned/actual figures. The invoice total
// column is never part of this statement.
func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = $1, planned_budget = $2, actual_budget = $3, planned_revenue = $4,
			actual_revenue = $5, usn_tax = $6, nds_tax = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	f := p.Financials

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		f.PlannedBudget,
		f.ActualBudget,
		f.PlannedRevenue,
		f.ActualRevenue,
		f.USNTax,
		f.NDSTax,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return project.ErrNotFound
		}

		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

// SetInvoiceTotal overwrites the aggregate column only.
func (s *Store) SetInvoiceTotal(ctx context.Context, id uuid.UUID, total int64) error {
	query := `
		UPDATE projects
		SET total_non_cancelled_invoice_amount = $1
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, total, id)
	if err != nil {
		return fmt.Errorf("setting invoice total: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting invoice total: %w", err)
	}

	if n == 0 {
		return project.ErrNotFound
	}

	return nil
}
