package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/MrJamesThe3rd/tally/internal/aggregation"
	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	if cfg.Feed.Driver != config.FeedRedis {
		return fmt.Errorf("standalone worker needs FEED_DRIVER=%s, got %q", config.FeedRedis, cfg.Feed.Driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed, err := app.OpenFeed(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening change feed: %w", err)
	}
	defer feed.Close()

	a, err := app.New(ctx, cfg, feed)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info().
		Str("stream", cfg.Redis.Stream).
		Str("group", cfg.Redis.Group).
		Str("consumer", app.ConsumerName(cfg)).
		Msg("consuming invoice changes")

	return aggregation.NewWorker(feed, a.Trigger, cfg.Worker.Concurrency).Run(ctx)
}
