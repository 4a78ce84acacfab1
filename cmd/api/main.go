package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/MrJamesThe3rd/tally/internal/aggregation"
	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	tallyHTTP "github.com/MrJamesThe3rd/tally/internal/http"
	invoiceHandler "github.com/MrJamesThe3rd/tally/internal/http/invoice"
	projectHandler "github.com/MrJamesThe3rd/tally/internal/http/project"
	supplierHandler "github.com/MrJamesThe3rd/tally/internal/http/supplier"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("api stopped")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed, err := app.OpenFeed(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening change feed: %w", err)
	}

	a, err := app.New(ctx, cfg, feed)
	if err != nil {
		_ = feed.Close()
		return err
	}
	defer a.Close()

	// With the in-memory feed nobody else can consume changes, so the
	// aggregation worker runs in this process.
	workerDone := make(chan struct{})

	if cfg.Feed.Driver == config.FeedMemory {
		worker := aggregation.NewWorker(feed, a.Trigger, cfg.Worker.Concurrency)

		go func() {
			defer close(workerDone)

			if err := worker.Run(context.Background()); err != nil {
				log.Error().Err(err).Msg("aggregation worker failed")
			}
		}()
	} else {
		close(workerDone)
	}

	var (
		projectH  = projectHandler.NewHandler(a.Projects, a.Invoices, a.Suppliers, importer.NewParser())
		invoiceH  = invoiceHandler.NewHandler(a.Invoices)
		supplierH = supplierHandler.NewHandler(a.Suppliers)
	)

	router := tallyHTTP.New(projectH, invoiceH, supplierH, tallyHTTP.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Str("feed", cfg.Feed.Driver).Msg("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}

	// Closing the feed lets the in-process worker drain and stop.
	if err := feed.Close(); err != nil {
		log.Warn().Err(err).Msg("closing change feed")
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("aggregation worker did not drain in time")
	}

	return nil
}
