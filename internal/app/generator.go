package app

import (
	"fmt"
	"math"
	"time"

	"github.com/haukened/vid/internal/domain"
)

const (
	// seqWaitDeadline bounds the overflow wait: a clock frozen longer than
	// this fails the mint instead of spinning forever.
	seqWaitDeadline = 5 * time.Second
	// seqPollInterval is how long the generator sleeps between clock polls
	// while waiting out a sequence overflow.
	seqPollInterval = 250 * time.Microsecond
)

// Generator mints identifiers for one node. It owns exactly two integers of
// state, lastMilli and seq, and is deliberately not synchronized: callers
// must serialize Mint invocations (the Service facade holds a mutex). Run one
// Generator per node identity; distinct node ids are what keep concurrent
// generators globally unique.
type Generator struct {
	clock      Clock
	sleep      Sleeper
	nodeID     uint16
	keyVersion uint8
	secret     []byte

	lastMilli int64
	seq       uint32 // uint32 so the 65536 overflow state is representable

	// OnClockWait, if set, observes each completed overflow wait.
	OnClockWait func(waited time.Duration)
}

// NewGenerator builds a generator signing with the given key version and
// derived secret. clock and sleep default to the real time package.
func NewGenerator(clock Clock, sleep Sleeper, nodeID uint16, keyVersion uint8, secret []byte) (*Generator, error) {
	if len(secret) < domain.SecretLen {
		return nil, fmt.Errorf("generator secret is %d bytes, need %d", len(secret), domain.SecretLen)
	}
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	if sleep == nil {
		sleep = SleeperFunc(time.Sleep)
	}
	return &Generator{clock: clock, sleep: sleep, nodeID: nodeID, keyVersion: keyVersion, secret: secret}, nil
}

// NodeID reports the identity this generator stamps into every VID.
func (g *Generator) NodeID() uint16 { return g.nodeID }

// Mint issues the next identifier. The transition per call:
//
//	clamp a regressed clock to lastMilli, never move backward;
//	same millisecond: bump the sequence, or on overflow wait (bounded) for
//	the next tick and reset to zero;
//	new millisecond: adopt it and reset the sequence.
//
// State only commits on success, so a failed mint leaves the generator where
// it was.
func (g *Generator) Mint() (domain.VID, error) {
	now := g.clock.Now().UnixMilli()
	if now < g.lastMilli {
		now = g.lastMilli
	}

	seq := uint32(0)
	if now == g.lastMilli {
		seq = g.seq + 1
		if seq > math.MaxUint16 {
			next, err := g.waitNextMilli(now)
			if err != nil {
				return domain.VID{}, err
			}
			now, seq = next, 0
		}
	}

	if now > domain.MaxTimestamp {
		return domain.VID{}, fmt.Errorf("clock at %d ms exceeds 48-bit field: %w", now, domain.ErrTimestampRange)
	}

	payload, err := domain.EncodePayload(g.keyVersion, now, g.nodeID, uint16(seq))
	if err != nil {
		return domain.VID{}, err
	}
	sig, err := domain.Sign(payload, g.secret)
	if err != nil {
		return domain.VID{}, err
	}
	v, err := domain.FromParts(payload, sig)
	if err != nil {
		return domain.VID{}, err
	}

	g.lastMilli, g.seq = now, seq
	return v, nil
}

// waitNextMilli polls the clock until it strictly exceeds last. The deadline
// is accounted in requested sleep time, not clock readings, so a frozen clock
// still trips it.
func (g *Generator) waitNextMilli(last int64) (int64, error) {
	var waited time.Duration
	for waited < seqWaitDeadline {
		if now := g.clock.Now().UnixMilli(); now > last {
			if g.OnClockWait != nil {
				g.OnClockWait(waited)
			}
			return now, nil
		}
		g.sleep.Sleep(seqPollInterval)
		waited += seqPollInterval
	}
	return 0, fmt.Errorf("sequence exhausted at %d ms: %w", last, domain.ErrClockFault)
}
