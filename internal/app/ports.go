// Package app wires the pure domain core into usable components: the
// stateful Generator, the stateless Verifier, and the Service facade that
// owns key material and node identity. It follows a ports & adapters design:
// this package declares the Clock, Sleeper, AuditLog, and Meter interfaces it
// needs; adapter packages (sqlite audit log, metrics manager) and cmd wiring
// provide implementations.
package app

import (
	"context"
	"time"

	"github.com/haukened/vid/internal/domain"
)

// Clock abstracts time so generator behavior (same-millisecond sequencing,
// regression clamping, overflow waits) is deterministic under test.
type Clock interface {
	Now() time.Time
}

// Sleeper abstracts the generator's overflow poll delay. Production wiring
// sleeps for real; tests advance a fake clock instead.
type Sleeper interface {
	Sleep(d time.Duration)
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(time.Duration)

func (f SleeperFunc) Sleep(d time.Duration) { f(d) }

// MintRecord describes one issued identifier for the audit trail. It carries
// only the wire forms plus the fields the trail indexes on.
type MintRecord struct {
	Text       string
	Binary     []byte
	NodeID     uint16
	KeyVersion uint8
	IssuedAt   time.Time
}

// AuditLog is the persistence port for the mint audit trail. Implementations
// treat the binary form as an opaque fixed-length column; failures must not
// block minting (the Service logs and continues).
type AuditLog interface {
	RecordMint(ctx context.Context, rec MintRecord) error
}

// Meter is the subset of the metrics manager the service layer emits to.
type Meter interface {
	Inc(name string, delta int64)
	Observe(name string, value int64)
}

// Metric names emitted by the Service.
const (
	MetricMinted     = "vids_minted_total"
	MetricVerifyOK   = "verify_ok_total"
	MetricVerifyFail = "verify_fail_total"
	MetricClockWaits = "clock_waits_total"
	MetricMintMicros = "mint_duration_us"
)

// reexported for convenience so facade callers need only import app.
type (
	// Result is the detailed verification outcome.
	Result = domain.Result
	// Claims is the structurally decoded identifier content.
	Claims = domain.Claims
)
