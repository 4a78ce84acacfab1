package supplier

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=supplier
type Repository interface {
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Supplier, error)
}

type Service struct {
	repo     Repository
	resolver *Resolver
}

func NewService(repo Repository, batchConcurrency int) *Service {
	return &Service{
		repo:     repo,
		resolver: NewResolver(repo, batchConcurrency),
	}
}

type CreateParams struct {
	Name string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Supplier, error) {
	sup := &Supplier{}

	if name := strings.TrimSpace(params.Name); name != "" {
		sup.Name = &name
	}

	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}

	return sup, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// Resolve looks up the given ids with no prior cache.
func (s *Service) Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Supplier, error) {
	return s.resolver.Resolve(ctx, ids, nil)
}

// NewCache returns a fresh per-request cache backed by this service.
func (s *Service) NewCache() *Cache {
	return NewCache(s.resolver)
}
