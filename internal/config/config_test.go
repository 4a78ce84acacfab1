package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.FeedMemory, cfg.Feed.Driver)
	assert.Equal(t, "tally:invoice-changes", cfg.Redis.Stream)
	assert.Equal(t, 5*time.Second, cfg.Redis.Block)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/tally?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FEED_DRIVER", "redis")
	t.Setenv("WORKER_CONCURRENCY", "3")
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.FeedRedis, cfg.Feed.Driver)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Contains(t, cfg.ConnectionString(), "/ledger?")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "UnknownFeed", key: "FEED_DRIVER", val: "kafka"},
		{name: "ZeroConcurrency", key: "WORKER_CONCURRENCY", val: "0"},
		{name: "BadDuration", key: "REDIS_BLOCK", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
