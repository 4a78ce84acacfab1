package redisstream

import (
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

func TestDecodeMessage(t *testing.T) {
	projectID := uuid.New()
	change := invoice.Change{
		InvoiceID: uuid.New(),
		Op:        invoice.OpDelete,
		Before:    &invoice.Invoice{ProjectID: &projectID, Amount: 1500, Status: invoice.StatusPaid},
		At:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := Encode(change)
	require.NoError(t, err)

	got, err := decodeMessage(goredis.XMessage{ID: "1-0", Values: map[string]any{payloadField: raw}})
	require.NoError(t, err)

	id, ok := got.ProjectID()
	assert.True(t, ok)
	assert.Equal(t, projectID, id)
	assert.Nil(t, got.After)
	assert.Equal(t, int64(1500), got.Before.Amount)
}

func TestDecodeMessage_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "MissingField", values: map[string]any{"other": "x"}},
		{name: "NotJSON", values: map[string]any{payloadField: "{"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeMessage(goredis.XMessage{ID: "1-0", Values: tt.values})
			assert.Error(t, err)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{Stream: "s"})
	assert.Error(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	_, err = New(rdb, Options{})
	assert.Error(t, err)

	f, err := New(rdb, Options{Stream: "s"})
	require.NoError(t, err)
	assert.Equal(t, int64(64), f.opts.Count)
	assert.Equal(t, 5*time.Second, f.opts.Block)
}
