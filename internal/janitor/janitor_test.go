package janitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore records DeleteBefore calls and signals each cycle.
type fakeStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int
	err     error
	cycle   chan struct{}
}

func (f *fakeStore) DeleteBefore(_ context.Context, t time.Time) (int, error) {
	f.mu.Lock()
	f.cutoffs = append(f.cutoffs, t)
	f.mu.Unlock()
	select {
	case f.cycle <- struct{}{}:
	default:
	}
	return f.n, f.err
}

type fakeMeter struct {
	mu   sync.Mutex
	obs  []int64
	name string
}

func (m *fakeMeter) Observe(name string, v int64) {
	m.mu.Lock()
	m.name = name
	m.obs = append(m.obs, v)
	m.mu.Unlock()
}

func TestJanitorCycles(t *testing.T) {
	st := &fakeStore{n: 4, cycle: make(chan struct{}, 1)}
	meter := &fakeMeter{}
	j := New(st, Config{Interval: 5 * time.Millisecond, Retention: time.Hour, Meter: meter})

	j.Start(context.Background())
	for i := 0; i < 2; i++ {
		select {
		case <-st.cycle:
		case <-time.After(2 * time.Second):
			t.Fatal("janitor never cycled")
		}
	}
	j.Stop()

	mv := j.MetricsSnapshot()
	if mv.Cycles < 2 {
		t.Fatalf("cycles %d, want >= 2", mv.Cycles)
	}
	if mv.Deleted < 8 {
		t.Fatalf("deleted %d, want >= 8", mv.Deleted)
	}

	st.mu.Lock()
	cutoff := st.cutoffs[0]
	st.mu.Unlock()
	if d := time.Since(cutoff); d < 55*time.Minute || d > 65*time.Minute {
		t.Fatalf("cutoff not about one hour back: %v", d)
	}

	meter.mu.Lock()
	defer meter.mu.Unlock()
	if meter.name != "janitor_deleted_per_cycle" || len(meter.obs) < 2 {
		t.Fatalf("meter %q obs %v", meter.name, meter.obs)
	}
}

func TestJanitorSurvivesStoreErrors(t *testing.T) {
	st := &fakeStore{err: errors.New("locked"), cycle: make(chan struct{}, 1)}
	j := New(st, Config{Interval: 5 * time.Millisecond, Retention: time.Hour})

	j.Start(context.Background())
	for i := 0; i < 2; i++ {
		select {
		case <-st.cycle:
		case <-time.After(2 * time.Second):
			t.Fatal("janitor stopped cycling after an error")
		}
	}
	j.Stop()
}

func TestJanitorDefaults(t *testing.T) {
	j := New(&fakeStore{cycle: make(chan struct{}, 1)}, Config{})
	if j.cfg.Interval != time.Minute {
		t.Fatalf("interval default %v", j.cfg.Interval)
	}
	if j.cfg.Retention != 30*24*time.Hour {
		t.Fatalf("retention default %v", j.cfg.Retention)
	}
	if j.cfg.Logger == nil {
		t.Fatal("logger default missing")
	}
}

func TestJanitorStopBeforeTick(t *testing.T) {
	j := New(&fakeStore{cycle: make(chan struct{}, 1)}, Config{Interval: time.Hour})
	j.Start(context.Background())
	done := make(chan struct{})
	go func() { j.Stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not complete")
	}
}
