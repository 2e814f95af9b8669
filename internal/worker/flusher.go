// Package worker runs background maintenance for the in-memory stores.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/log"
)

// Flushable is a store that may hold changes storage has not accepted yet.
type Flushable interface {
	Dirty() bool
	Flush(ctx context.Context) error
}

// Target names a store for logging.
type Target struct {
	Name  string
	Store Flushable
}

// Flusher periodically retries writes that failed while serving requests.
// A change that could not be persisted stays in memory and marks its store
// dirty; the next mutation retries it, and so does the flusher.
type Flusher struct {
	targets  []Target
	interval time.Duration
	logger   *log.Logger
}

func NewFlusher(interval time.Duration, logger *log.Logger, targets ...Target) *Flusher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Flusher{
		targets:  targets,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentStorage),
	}
}

// FlushPending writes every dirty target and returns the joined failures.
func (f *Flusher) FlushPending(ctx context.Context) error {
	var errs []error
	for _, t := range f.targets {
		if !t.Store.Dirty() {
			continue
		}
		if err := t.Store.Flush(ctx); err != nil {
			f.logger.WarnContext(ctx, "Pending writes still failing",
				log.FieldOperation, log.OpSave, log.FieldKey, t.Name, log.FieldError, err)
			errs = append(errs, fmt.Errorf("flush %s: %w", t.Name, err))
			continue
		}
		f.logger.InfoContext(ctx, "Pending writes persisted", log.FieldOperation, log.OpSave, log.FieldKey, t.Name)
	}
	return errors.Join(errs...)
}

// Run flushes on every tick until ctx is cancelled. A final flush with a
// fresh context is left to the caller's shutdown path.
func (f *Flusher) Run(ctx context.Context) error {
	if f.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = f.FlushPending(ctx)
		}
	}
}
