package changefeed_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

func TestMemory_PublishSubscribe(t *testing.T) {
	feed := changefeed.NewMemory(2)
	ctx := context.Background()

	ch, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	change := invoice.Change{InvoiceID: uuid.New(), Op: invoice.OpCreate}
	require.NoError(t, feed.Publish(ctx, change))

	d := <-ch
	assert.Equal(t, change, d.Change)
	assert.NoError(t, d.Ack(ctx))
}

func TestMemory_PublishAfterClose(t *testing.T) {
	feed := changefeed.NewMemory(1)
	require.NoError(t, feed.Close())
	require.NoError(t, feed.Close())

	err := feed.Publish(context.Background(), invoice.Change{})
	assert.ErrorIs(t, err, changefeed.ErrClosed)

	ch, err := feed.Subscribe(context.Background())
	require.NoError(t, err)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestMemory_PublishRespectsContext(t *testing.T) {
	feed := changefeed.NewMemory(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := feed.Publish(ctx, invoice.Change{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
