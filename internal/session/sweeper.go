package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sweeper periodically expires stale lobby members. Its only side effect
// is calling the store's Cleanup, which carries its own locking, so the
// sweeper needs no synchronization of its own.
type Sweeper struct {
	logger *slog.Logger
	store  *Store

	interval time.Duration
	timeout  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	running  atomic.Bool
}

// NewSweeper - creates a sweeper that runs Cleanup(timeout) every interval.
func NewSweeper(logger *slog.Logger, store *Store, interval, timeout time.Duration) *Sweeper {
	return &Sweeper{
		logger:   logger.With("component", "sweeper"),
		store:    store,
		interval: interval,
		timeout:  timeout,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run - blocks, sweeping at the configured interval until the context is
// canceled or Stop is called. Meant to run on its own goroutine.
func (that *Sweeper) Run(ctx context.Context) {
	that.running.Store(true)
	defer close(that.done)

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	that.logger.Info("sweeper started", "interval", that.interval, "timeout", that.timeout)

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("sweeper stopped", "reason", "context canceled")
			return
		case <-that.stop:
			that.logger.Info("sweeper stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			players, lobbies := that.store.Cleanup(that.timeout)
			if players > 0 || lobbies > 0 {
				that.logger.Info("swept stale sessions", "players", players, "lobbies", lobbies)
			}
		}
	}
}

// Stop - stops the timer and waits for the loop to exit. A cleanup pass
// already underway is allowed to finish; no new pass starts afterwards.
// Safe to call even if Run was never started.
func (that *Sweeper) Stop() {
	that.stopOnce.Do(func() {
		close(that.stop)
	})

	if that.running.Load() {
		<-that.done
	}
}
