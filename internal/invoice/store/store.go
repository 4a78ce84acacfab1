package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, project_id, supplier_id, number, description, amount, status,
// issue_date, due_date, created_at, updated_at
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var amount sql.NullInt64

	var issueDate sql.NullTime

	if err := s.Scan(
		&inv.ID, &inv.ProjectID, &inv.SupplierID, &inv.Number, &inv.Description, &amount, &statusStr,
		&issueDate, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// A missing amount counts as zero.
	inv.Amount = amount.Int64
	inv.Status = invoice.Status(statusStr)
	inv.IssueDate = issueDate.Time

	return &inv, nil
}

const selectInvoiceColumns = `
	id, project_id, supplier_id, number, description, amount, status,
	issue_date, due_date, created_at, updated_at
`

const insertInvoice = `
	INSERT INTO invoices (project_id, supplier_id, number, description, amount, status, issue_date, due_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, e execer, inv *invoice.Invoice) error {
	return e.QueryRowContext(ctx, insertInvoice,
		inv.ProjectID,
		inv.SupplierID,
		inv.Number,
		inv.Description,
		inv.Amount,
		inv.Status,
		nullDate(inv.IssueDate),
		inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if err := insert(ctx, s.db, inv); err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

// CreateInvoices inserts all invoices in a single database transaction.
func (s *Store) CreateInvoices(ctx context.Context, invs []*invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, inv := range invs {
		if err := insert(ctx, dbTx, inv); err != nil {
			return fmt.Errorf("creating invoice %q: %w", inv.Number, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE id = $1 AND deleted_at IS NULL`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET project_id = $1, supplier_id = $2, number = $3, description = $4, amount = $5,
			status = $6, issue_date = $7, due_date = $8, updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.ProjectID,
		inv.SupplierID,
		inv.Number,
		inv.Description,
		inv.Amount,
		inv.Status,
		nullDate(inv.IssueDate),
		inv.DueDate,
		inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

func (s *Store) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY issue_date ASC NULLS LAST, created_at ASC`

	return s.list(ctx, query, projectID)
}

// ListActiveByProject returns every live invoice of the project that is not cancelled.
func (s *Store) ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE project_id = $1 AND status <> $2 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	return s.list(ctx, query, projectID, invoice.StatusCancelled)
}

// ActiveAmounts returns the amounts of the project's non-cancelled invoices.
func (s *Store) ActiveAmounts(ctx context.Context, projectID uuid.UUID) ([]int64, error) {
	invs, err := s.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	amounts := make([]int64, len(invs))
	for i, inv := range invs {
		amounts[i] = inv.Amount
	}

	return amounts, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invs, nil
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
