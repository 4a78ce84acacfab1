package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/supplier"
	"github.com/MrJamesThe3rd/tally/internal/supplier/store"
)

func TestStore_GetByIDs_Bounds(t *testing.T) {
	// Neither case reaches the database.
	s := store.New(nil)

	got, err := s.GetByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	ids := make([]uuid.UUID, supplier.MaxBatchSize+1)
	for i := range ids {
		ids[i] = uuid.New()
	}

	_, err = s.GetByIDs(context.Background(), ids)
	assert.ErrorIs(t, err, supplier.ErrBatchTooLarge)
}
