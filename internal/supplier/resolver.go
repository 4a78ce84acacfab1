package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

// Lookup fetches suppliers by id. Callers never pass more than MaxBatchSize ids.
type Lookup interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Supplier, error)
}

// Resolver turns supplier ids into entities using bounded lookup batches.
type Resolver struct {
	lookup      Lookup
	concurrency int
	log         zerolog.Logger
}

// NewResolver returns a resolver running at most concurrency batches at a
// time. A concurrency below one runs batches one after another.
func NewResolver(lookup Lookup, concurrency int) *Resolver {
	return &Resolver{
		lookup:      lookup,
		concurrency: max(concurrency, 1),
		log:         logger.WithComponent("supplier-resolver"),
	}
}

type batchResult struct {
	suppliers []*Supplier
	err       error
}

// Resolve fetches every id that is not already in cached. Failed batches are
// skipped; when every batch fails a *PartialResolutionError is returned.
func (r *Resolver) Resolve(ctx context.Context, ids []uuid.UUID, cached map[uuid.UUID]*Supplier) (map[uuid.UUID]*Supplier, error) {
	missing := missingIDs(ids, cached)

	resolved := make(map[uuid.UUID]*Supplier)
	if len(missing) == 0 {
		return resolved, nil
	}

	batches := chunk(missing, MaxBatchSize)
	results := make([]batchResult, len(batches))

	// Errors stay in results so one failed batch never cancels the rest.
	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, batch := range batches {
		g.Go(func() error {
			found, err := r.lookup.GetByIDs(ctx, batch)
			results[i] = batchResult{suppliers: found, err: err}

			return nil
		})
	}

	_ = g.Wait()

	var (
		failed []uuid.UUID
		errs   []error
	)

	for i, res := range results {
		if res.err != nil {
			r.log.Warn().
				Err(res.err).
				Int("batch", i).
				Int("size", len(batches[i])).
				Msg("supplier lookup batch failed")

			failed = append(failed, batches[i]...)
			errs = append(errs, fmt.Errorf("batch %d: %w", i, res.err))

			continue
		}

		for _, s := range res.suppliers {
			if s != nil {
				resolved[s.ID] = s
			}
		}
	}

	if len(errs) == len(batches) {
		return nil, &PartialResolutionError{Failed: failed, Err: errors.Join(errs...)}
	}

	return resolved, nil
}

// missingIDs returns the distinct ids absent from cached, in first-seen order.
func missingIDs(ids []uuid.UUID, cached map[uuid.UUID]*Supplier) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))

	var missing []uuid.UUID

	for _, id := range ids {
		if _, ok := cached[id]; ok {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		missing = append(missing, id)
	}

	return missing
}

func chunk(ids []uuid.UUID, size int) [][]uuid.UUID {
	batches := make([][]uuid.UUID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}

	return batches
}

// Cache is a caller-owned, short-lived view of resolved suppliers. It is
// meant to live for one request and is never authoritative.
type Cache struct {
	resolver *Resolver
	known    map[uuid.UUID]*Supplier
}

func NewCache(resolver *Resolver) *Cache {
	return &Cache{resolver: resolver, known: make(map[uuid.UUID]*Supplier)}
}

// Resolve loads the ids not seen yet and returns everything known so far.
// On a partial failure the cache keeps what it had and returns the error.
func (c *Cache) Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Supplier, error) {
	fresh, err := c.resolver.Resolve(ctx, ids, c.known)
	for id, s := range fresh {
		c.known[id] = s
	}

	return c.known, err
}

// Name returns the known display name for id, or "".
func (c *Cache) Name(id uuid.UUID) string {
	return c.known[id].DisplayName()
}
