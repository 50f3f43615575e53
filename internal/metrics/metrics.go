// Package metrics provides a small persistent metrics manager. Counter and
// summary observations are batched in memory and periodically flushed to the
// shared SQLite database, so operational numbers survive restarts without
// pulling in a full metrics stack. Only monotonic counters and simple
// (count, sum, min, max) summaries are supported.
package metrics

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Summary names recorded outside the service layer.
const (
	SummaryJanitorDeleted = "janitor_deleted_per_cycle"
)

// Config controls flush cadence and logging.
type Config struct {
	FlushInterval time.Duration
	Logger        *slog.Logger
}

// Summary is a (count, sum, min, max) aggregate.
type Summary struct {
	Count int64 `json:"count"`
	Sum   int64 `json:"sum"`
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
}

func (s *Summary) observe(v int64) {
	if s.Count == 0 {
		*s = Summary{Count: 1, Sum: v, Min: v, Max: v}
		return
	}
	s.Count++
	s.Sum += v
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
}

func (s *Summary) merge(o Summary) {
	if s.Count == 0 {
		*s = o
		return
	}
	if o.Count == 0 {
		return
	}
	s.Count += o.Count
	s.Sum += o.Sum
	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
}

// Manager aggregates metric events and flushes them on an interval. Inc and
// Observe are safe from any goroutine and never block: under backpressure
// events are dropped rather than stalling the mint path.
type Manager struct {
	cfg     Config
	db      *sql.DB
	events  chan event
	stop    chan struct{}
	done    chan struct{}
	started bool

	mu        sync.Mutex
	counters  map[string]int64
	summaries map[string]*Summary
}

type event struct {
	name    string
	value   int64
	summary bool
}

// New creates a Manager. Call Start to begin background flushing.
func New(db *sql.DB, cfg Config) *Manager {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		cfg:       cfg,
		db:        db,
		events:    make(chan event, 1024),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		counters:  make(map[string]int64),
		summaries: make(map[string]*Summary),
	}
}

// InitSchema ensures the metrics tables exist.
func (m *Manager) InitSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS metrics_counters (
name TEXT PRIMARY KEY,
value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS metrics_summaries (
name TEXT PRIMARY KEY,
count INTEGER NOT NULL,
sum INTEGER NOT NULL,
min INTEGER NOT NULL,
max INTEGER NOT NULL
);`
	_, err := m.db.ExecContext(ctx, ddl)
	return err
}

// Start launches the background flush loop.
func (m *Manager) Start(ctx context.Context) {
	if m.started {
		return
	}
	m.started = true
	go m.loop(ctx)
}

// Stop signals the loop to exit, waits for it, and performs a final flush.
func (m *Manager) Stop(ctx context.Context) {
	if !m.started {
		_ = m.flush(ctx)
		return
	}
	close(m.stop)
	<-m.done
	m.drain()
	_ = m.flush(ctx)
}

// Inc increments a counter by delta (ignored unless positive).
func (m *Manager) Inc(name string, delta int64) {
	if delta <= 0 {
		return
	}
	select {
	case m.events <- event{name: name, value: delta}:
	default:
	}
}

// Observe records a summary observation.
func (m *Manager) Observe(name string, value int64) {
	select {
	case m.events <- event{name: name, value: value, summary: true}:
	default:
	}
}

func (m *Manager) loop(ctx context.Context) {
	log := m.cfg.Logger.With("domain", "metrics")
	ticker := time.NewTicker(m.cfg.FlushInterval)
	defer func() {
		ticker.Stop()
		close(m.done)
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("metrics stop", "reason", "context_cancel")
			return
		case <-m.stop:
			log.Info("metrics stop", "reason", "stop_signal")
			return
		case ev := <-m.events:
			m.apply(ev)
		case <-ticker.C:
			if err := m.flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("flush", "error", err)
			}
		}
	}
}

// drain applies any events still queued after the loop exits.
func (m *Manager) drain() {
	for {
		select {
		case ev := <-m.events:
			m.apply(ev)
		default:
			return
		}
	}
}

func (m *Manager) apply(ev event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ev.summary {
		m.counters[ev.name] += ev.value
		return
	}
	agg := m.summaries[ev.name]
	if agg == nil {
		agg = &Summary{}
		m.summaries[ev.name] = agg
	}
	agg.observe(ev.value)
}

// flush persists in-memory deltas and resets them. Deltas are restored on
// write failure so nothing is lost to a transient database error.
func (m *Manager) flush(ctx context.Context) error {
	m.mu.Lock()
	counters := m.counters
	summaries := m.summaries
	m.counters = make(map[string]int64)
	m.summaries = make(map[string]*Summary)
	m.mu.Unlock()

	if len(counters) == 0 && len(summaries) == 0 {
		return nil
	}
	if err := m.write(ctx, counters, summaries); err != nil {
		m.mu.Lock()
		for n, v := range counters {
			m.counters[n] += v
		}
		for n, agg := range summaries {
			cur := m.summaries[n]
			if cur == nil {
				m.summaries[n] = agg
				continue
			}
			cur.merge(*agg)
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Manager) write(ctx context.Context, counters map[string]int64, summaries map[string]*Summary) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const upCounter = `INSERT INTO metrics_counters (name, value) VALUES (?,?)
ON CONFLICT(name) DO UPDATE SET value = value + excluded.value`
	for n, v := range counters {
		if _, err := tx.ExecContext(ctx, upCounter, n, v); err != nil {
			return err
		}
	}

	const upSummary = `INSERT INTO metrics_summaries (name, count, sum, min, max) VALUES (?,?,?,?,?)
ON CONFLICT(name) DO UPDATE SET
count = count + excluded.count,
sum = sum + excluded.sum,
min = MIN(min, excluded.min),
max = MAX(max, excluded.max)`
	for n, agg := range summaries {
		if _, err := tx.ExecContext(ctx, upSummary, n, agg.Count, agg.Sum, agg.Min, agg.Max); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Snapshot layers in-memory deltas over persisted state.
func (m *Manager) Snapshot(ctx context.Context) (map[string]int64, map[string]Summary, error) {
	counters := make(map[string]int64)
	summaries := make(map[string]Summary)

	rows, err := m.db.QueryContext(ctx, `SELECT name, value FROM metrics_counters`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var n string
		var v int64
		if err := rows.Scan(&n, &v); err != nil {
			return nil, nil, err
		}
		counters[n] = v
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	srows, err := m.db.QueryContext(ctx, `SELECT name, count, sum, min, max FROM metrics_summaries`)
	if err != nil {
		return nil, nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var n string
		var s Summary
		if err := srows.Scan(&n, &s.Count, &s.Sum, &s.Min, &s.Max); err != nil {
			return nil, nil, err
		}
		summaries[n] = s
	}
	if err := srows.Err(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	for n, v := range m.counters {
		counters[n] += v
	}
	for n, agg := range m.summaries {
		cur := summaries[n]
		cur.merge(*agg)
		summaries[n] = cur
	}
	m.mu.Unlock()
	return counters, summaries, nil
}
