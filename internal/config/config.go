package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	FeedMemory = "memory"
	FeedRedis  = "redis"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"console"`
	}

	Feed struct {
		// Driver selects how invoice changes reach the aggregation worker.
		Driver string `envconfig:"FEED_DRIVER" default:"memory"`
		Buffer int    `envconfig:"FEED_BUFFER" default:"256"`
	}

	Redis struct {
		Addr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password  string        `envconfig:"REDIS_PASSWORD" default:""`
		DB        int           `envconfig:"REDIS_DB" default:"0"`
		Stream    string        `envconfig:"REDIS_STREAM" default:"tally:invoice-changes"`
		Group     string        `envconfig:"REDIS_GROUP" default:"aggregation"`
		Consumer  string        `envconfig:"REDIS_CONSUMER" default:""`
		Block     time.Duration `envconfig:"REDIS_BLOCK" default:"5s"`
		ClaimIdle time.Duration `envconfig:"REDIS_CLAIM_IDLE" default:"1m"`
		MaxLen    int64         `envconfig:"REDIS_MAXLEN" default:"100000"`
	}

	Worker struct {
		Concurrency int `envconfig:"WORKER_CONCURRENCY" default:"8"`
	}

	Supplier struct {
		// Concurrency bounds how many lookup batches run at once.
		Concurrency int `envconfig:"SUPPLIER_CONCURRENCY" default:"1"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Feed.Driver {
	case FeedMemory, FeedRedis:
	default:
		return nil, fmt.Errorf("unknown feed driver %q", cfg.Feed.Driver)
	}

	if cfg.Worker.Concurrency < 1 {
		return nil, fmt.Errorf("worker concurrency must be positive, got %d", cfg.Worker.Concurrency)
	}

	return &cfg, nil
}
