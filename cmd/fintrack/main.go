package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/budget"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	// Logger level comes from the environment before the full config is validated.
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if store.Cleanup == nil {
			return
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	transactions, err := ledger.Open(ctx, store.KV, ledger.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to open transaction ledger", log.FieldError, err)
		os.Exit(1)
	}
	budgets, err := budget.OpenBook(ctx, store.KV, logger)
	if err != nil {
		logger.Error("Failed to open budget book", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, transactions, budgets, apphttp.Options{
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})

	flusher := worker.NewFlusher(cfg.FlushInterval, logger,
		worker.Target{Name: "transactions", Store: transactions},
		worker.Target{Name: "budgets", Store: budgets},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return flusher.Run(gctx) })
	g.Go(func() error {
		logger.Info("Starting fintrack server", log.FieldOperation, log.OpStartup, log.FieldPort, cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown, log.FieldTimeout, cfg.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := flusher.FlushPending(shutdownCtx); err != nil {
			logger.Error("Unsaved changes lost on shutdown", log.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, log.FieldPort, cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
