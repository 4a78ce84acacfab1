package app_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/config"
)

func TestOpenFeed(t *testing.T) {
	type testCase struct {
		name    string
		driver  string
		verify  func(t *testing.T, feed app.Feed)
		wantErr bool
	}

	tests := []testCase{
		{
			name:   "Memory",
			driver: config.FeedMemory,
			verify: func(t *testing.T, feed app.Feed) {
				assert.IsType(t, &changefeed.Memory{}, feed)
			},
		},
		{
			name:    "Unknown",
			driver:  "kafka",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Feed.Driver = tt.driver
			cfg.Feed.Buffer = 4

			feed, err := app.OpenFeed(context.Background(), cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.verify(t, feed)
			assert.NoError(t, feed.Close())
		})
	}
}

func TestConsumerName(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Consumer = "worker-1"
	assert.Equal(t, "worker-1", app.ConsumerName(cfg))

	cfg.Redis.Consumer = ""

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "tally-worker"
	}

	assert.Equal(t, host, app.ConsumerName(cfg))
}

func TestNew_RequiresPublisher(t *testing.T) {
	_, err := app.New(context.Background(), &config.Config{}, nil)
	assert.Error(t, err)
}
