package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/haukened/vid/internal/domain"
	"github.com/haukened/vid/internal/keyset"
	"github.com/haukened/vid/internal/node"
)

// Config carries everything needed to construct a Service. Keys and
// CurrentKey are mandatory; the rest defaults sensibly.
type Config struct {
	// Keys maps key versions to raw secrets (each at least 16 characters;
	// hashed to 32 bytes and not retained).
	Keys map[uint8]string
	// CurrentKey selects the signing version; it must exist in Keys.
	CurrentKey uint8
	// Node is the identity spec: nil walks the environment ladder, an int is
	// used verbatim (0-65535), a string is hashed.
	Node any

	Clock   Clock        // nil => real time
	Sleeper Sleeper      // nil => time.Sleep
	Getenv  func(string) (string, bool)
	Audit   AuditLog     // optional mint audit trail
	Meter   Meter        // optional metrics sink
	Logger  *slog.Logger // nil => slog.Default()
}

// Service is the facade over generator, verifier, and parser. It is the only
// component holding key material and node identity after startup. All its
// methods are safe for concurrent use; the mutex serializes the generator's
// state transitions.
type Service struct {
	mu  sync.Mutex
	gen *Generator

	ver   *Verifier
	keys  *keyset.KeySet
	ident node.Identity
	audit AuditLog
	meter Meter
	log   *slog.Logger
}

// New validates the configuration and assembles the facade. Configuration
// problems (bad secrets, missing current version, malformed node spec) fail
// here, before any identifier is minted.
func New(cfg Config) (*Service, error) {
	keys, err := keyset.New(cfg.Keys, cfg.CurrentKey)
	if err != nil {
		return nil, fmt.Errorf("key set: %w", err)
	}
	ident, err := node.Resolver{Getenv: cfg.Getenv}.ResolveAny(cfg.Node)
	if err != nil {
		return nil, fmt.Errorf("node identity: %w", err)
	}

	version, secret := keys.Current()
	gen, err := NewGenerator(cfg.Clock, cfg.Sleeper, ident.ID, version, secret)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		gen:   gen,
		ver:   NewVerifier(keys),
		keys:  keys,
		ident: ident,
		audit: cfg.Audit,
		meter: cfg.Meter,
		log:   log,
	}
	gen.OnClockWait = func(time.Duration) { s.inc(MetricClockWaits, 1) }

	if ident.Warning != "" {
		log.Warn("node identity fallback", "node_id", ident.ID, "source", ident.Source, "detail", ident.Warning)
	}
	return s, nil
}

// Identity reports the resolved node identity, including any warning.
func (s *Service) Identity() node.Identity { return s.ident }

// KeyVersions lists the versions this service can verify against.
func (s *Service) KeyVersions() []uint8 { return s.keys.Versions() }

// Mint issues the next identifier and records it in the audit trail. Audit
// failures are logged, counted against nothing, and do not fail the mint:
// auditing observes issuance, it does not gate it.
func (s *Service) Mint(ctx context.Context) (domain.VID, error) {
	start := time.Now()
	s.mu.Lock()
	v, err := s.gen.Mint()
	s.mu.Unlock()
	if err != nil {
		return domain.VID{}, err
	}
	s.inc(MetricMinted, 1)
	s.observe(MetricMintMicros, time.Since(start).Microseconds())

	if s.audit != nil {
		rec := MintRecord{
			Text:       v.String(),
			Binary:     v.Bytes(),
			NodeID:     v.NodeID(),
			KeyVersion: v.KeyVersion(),
			IssuedAt:   v.Time(),
		}
		if aerr := s.audit.RecordMint(ctx, rec); aerr != nil {
			s.log.Error("audit record", "err", aerr)
		}
	}
	return v, nil
}

// Authenticate reports whether input carries a valid signature under any
// known key version. Safe for hostile input; never panics.
func (s *Service) Authenticate(input any) bool {
	return s.AuthenticateDetailed(input).Valid
}

// AuthenticateDetailed is Authenticate with the internal failure reason.
// Reasons are for logs and metrics; do not surface them to untrusted
// callers.
func (s *Service) AuthenticateDetailed(input any) domain.Result {
	res := s.ver.VerifyDetailed(input)
	if res.Valid {
		s.inc(MetricVerifyOK, 1)
	} else {
		s.inc(MetricVerifyFail, 1)
		s.inc(MetricVerifyFail+":"+string(res.Reason), 1)
	}
	return res
}

// Decode returns the structural claims of input. By default it authenticates
// first and refuses to decode anything unsigned by a known key; skipAuth
// drops that check for callers who only need structure. Structural
// impossibilities (bad lengths, insane timestamps) are errors either way.
func (s *Service) Decode(input any, skipAuth bool) (domain.Claims, error) {
	if !skipAuth {
		if res := s.AuthenticateDetailed(input); !res.Valid {
			return domain.Claims{}, fmt.Errorf("authenticate before decode: %w", res.Reason.Err())
		}
	}
	return domain.ParseClaims(input)
}

func (s *Service) inc(name string, delta int64) {
	if s.meter != nil {
		s.meter.Inc(name, delta)
	}
}

func (s *Service) observe(name string, v int64) {
	if s.meter != nil {
		s.meter.Observe(name, v)
	}
}
