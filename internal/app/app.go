// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MrJamesThe3rd/tally/internal/aggregation"
	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/changefeed/redisstream"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/tally/internal/invoice/store"
	"github.com/MrJamesThe3rd/tally/internal/project"
	projectStore "github.com/MrJamesThe3rd/tally/internal/project/store"
	"github.com/MrJamesThe3rd/tally/internal/supplier"
	supplierStore "github.com/MrJamesThe3rd/tally/internal/supplier/store"
)

// Feed is a change feed usable from both ends.
type Feed interface {
	invoice.Publisher
	changefeed.Subscriber
	io.Closer
}

// OpenFeed builds the feed selected by cfg.Feed.Driver.
func OpenFeed(ctx context.Context, cfg *config.Config) (Feed, error) {
	switch cfg.Feed.Driver {
	case config.FeedMemory:
		return changefeed.NewMemory(cfg.Feed.Buffer), nil
	case config.FeedRedis:
		rdb, err := redisstream.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}

		feed, err := redisstream.New(rdb, redisstream.Options{
			Stream:    cfg.Redis.Stream,
			Group:     cfg.Redis.Group,
			Consumer:  ConsumerName(cfg),
			Block:     cfg.Redis.Block,
			ClaimIdle: cfg.Redis.ClaimIdle,
			MaxLen:    cfg.Redis.MaxLen,
		})
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}

		return feed, nil
	}

	return nil, fmt.Errorf("unknown feed driver %q", cfg.Feed.Driver)
}

// ConsumerName returns the configured consumer name, or the host name.
func ConsumerName(cfg *config.Config) string {
	if cfg.Redis.Consumer != "" {
		return cfg.Redis.Consumer
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		return "tally-worker"
	}

	return host
}

type App struct {
	DB        *sql.DB
	Projects  *project.Service
	Invoices  *invoice.Service
	Suppliers *supplier.Service
	Trigger   *aggregation.Trigger
}

// New connects to the database, applies the schema and builds the services.
// Invoice changes are published to pub.
func New(ctx context.Context, cfg *config.Config, pub invoice.Publisher) (*App, error) {
	if pub == nil {
		return nil, errors.New("invoice change publisher required")
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	var (
		invoices  = invoiceStore.New(db)
		projects  = projectStore.New(db)
		suppliers = supplierStore.New(db)
	)

	return &App{
		DB:        db,
		Projects:  project.NewService(projects, invoices),
		Invoices:  invoice.NewService(invoices, pub),
		Suppliers: supplier.NewService(suppliers, cfg.Supplier.Concurrency),
		Trigger:   aggregation.NewTrigger(invoices, projects),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
