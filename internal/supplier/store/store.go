package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/supplier"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	query := `
		INSERT INTO suppliers (name, created_at)
		VALUES ($1, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, sup.Name).Scan(&sup.ID, &sup.CreatedAt); err != nil {
		return fmt.Errorf("creating supplier: %w", err)
	}

	return nil
}

func (s *Store) GetSupplier(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	query := `SELECT id, name, created_at FROM suppliers WHERE id = $1`

	var sup supplier.Supplier

	err := s.db.QueryRowContext(ctx, query, id).Scan(&sup.ID, &sup.Name, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, supplier.ErrNotFound
		}

		return nil, fmt.Errorf("getting supplier: %w", err)
	}

	return &sup, nil
}

// GetByIDs runs one set-membership query. Ids that do not exist are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*supplier.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if len(ids) > supplier.MaxBatchSize {
		return nil, supplier.ErrBatchTooLarge
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))

	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT id, name, created_at FROM suppliers WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("looking up suppliers: %w", err)
	}
	defer rows.Close()

	var out []*supplier.Supplier

	for rows.Next() {
		var sup supplier.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning supplier: %w", err)
		}

		out = append(out, &sup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating supplier rows: %w", err)
	}

	return out, nil
}
