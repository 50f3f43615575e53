// Package janitor prunes the mint audit trail in the background, keeping
// retention concerns out of the request path.
package janitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Store is the minimal audit-trail surface the janitor needs.
type Store interface {
	// DeleteBefore removes audit records issued before t, returning the count.
	DeleteBefore(ctx context.Context, t time.Time) (int, error)
}

// Meter receives per-cycle observations (optional).
type Meter interface {
	Observe(name string, value int64)
}

// Config holds the janitor tunables.
type Config struct {
	Interval  time.Duration // how often a cycle begins
	Retention time.Duration // how long audit records are kept
	Logger    *slog.Logger  // optional, defaults to slog.Default()
	Meter     Meter         // optional summary sink
}

// Metrics accumulates in-memory counters for operational insight.
type Metrics struct {
	mu      sync.Mutex
	Cycles  uint64
	Deleted uint64
	LastMS  int64
}

// MetricsView is a read-only snapshot safe to copy.
type MetricsView struct {
	Cycles  uint64
	Deleted uint64
	LastMS  int64
}

// Janitor runs the periodic retention loop.
type Janitor struct {
	store   Store
	cfg     Config
	metrics *Metrics
	ticker  *time.Ticker
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// New constructs but does not start a Janitor.
func New(store Store, cfg Config) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Janitor{
		store:   store,
		cfg:     cfg,
		metrics: &Metrics{},
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the loop in a new goroutine.
func (j *Janitor) Start(ctx context.Context) {
	if j.ticker != nil {
		return // already started
	}
	j.ticker = time.NewTicker(j.cfg.Interval)
	go j.loop(ctx)
}

// Stop signals the loop to exit and waits for completion.
func (j *Janitor) Stop() {
	j.once.Do(func() { close(j.stopCh) })
	<-j.doneCh
}

// MetricsSnapshot returns a copy of the current metrics.
func (j *Janitor) MetricsSnapshot() MetricsView {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	return MetricsView{Cycles: j.metrics.Cycles, Deleted: j.metrics.Deleted, LastMS: j.metrics.LastMS}
}

func (j *Janitor) loop(ctx context.Context) {
	log := j.cfg.Logger.With("domain", "janitor")
	defer func() {
		j.ticker.Stop()
		close(j.doneCh)
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("janitor stop", "reason", "context_cancel")
			return
		case <-j.stopCh:
			log.Info("janitor stop", "reason", "stop_signal")
			return
		case <-j.ticker.C:
			j.runCycle(ctx)
		}
	}
}

// runCycle deletes everything older than the retention window.
func (j *Janitor) runCycle(ctx context.Context) {
	start := time.Now()
	log := j.cfg.Logger.With("domain", "janitor", "action", "cycle")
	cutoff := time.Now().UTC().Add(-j.cfg.Retention)
	count, err := j.store.DeleteBefore(ctx, cutoff)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("prune", "error", err)
	}

	j.metrics.mu.Lock()
	j.metrics.Cycles++
	j.metrics.Deleted += uint64(count)
	j.metrics.LastMS = time.Since(start).Milliseconds()
	j.metrics.mu.Unlock()

	if j.cfg.Meter != nil {
		j.cfg.Meter.Observe("janitor_deleted_per_cycle", int64(count))
	}
	log.Info("cycle complete", "deleted", count, "ms", time.Since(start).Milliseconds())
}
