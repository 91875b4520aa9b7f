// Command budget-worker consumes ledger events: it backs up recorded
// transactions to Google Sheets and delivers notifications.
package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/recipereverie-droid/Budget-Tracker/internal/cache"
	"github.com/recipereverie-droid/Budget-Tracker/internal/cli"
	"github.com/recipereverie-droid/Budget-Tracker/internal/log"
	"github.com/recipereverie-droid/Budget-Tracker/internal/worker"
)

func main() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(parent context.Context) error {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		return err
	}
	logger := cli.SetupLogger(cfg, os.Stdout, log.ComponentWorker)
	logger.Info("Starting budget-worker", log.FieldOperation, log.OpStartup)

	if !cfg.AMQPEnabled() {
		err := errors.New("AMQP_URL is required for the worker")
		logger.Error("Cannot start without an event bus", log.FieldError, err)
		return err
	}

	ctx, stop := cli.GracefulShutdown(parent, logger)
	defer stop()

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()
	if res.Events == nil {
		err := errors.New("event bus unavailable")
		logger.Error("Cannot start without an event bus", log.FieldError, err)
		return err
	}
	if res.Backup == nil {
		logger.Info("Google Sheets backup disabled - transaction events are acknowledged without a backup")
	}

	w := worker.NewEventWorker(res.Store, res.Backup, nil, logger)

	caches := cache.NewManager(logger.Logger)
	caches.Register(res.SettingsCache)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return res.Events.Consume(gctx, w.Handle)
	})
	g.Go(func() error {
		return caches.Run(gctx, cfg.CacheCleanupInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return err
	}
	st := res.SettingsCache.Stats()
	logger.Info("budget-worker stopped", log.FieldOperation, log.OpShutdown,
		"settings_cache_hits", st.Hits, "settings_cache_misses", st.Misses)
	return nil
}
