// Package store defines the persistence port for the mint audit trail. The
// trail is a strict consumer of the identifier wire forms: it stores the
// 18-byte binary and 29-character text columns opaquely and never interprets
// them beyond the indexed fields it is handed. Adapter packages (sqlite)
// provide the concrete implementation.
package store

import (
	"context"
	"time"
)

// Record is one audited mint.
type Record struct {
	Text       string
	Binary     []byte
	NodeID     uint16
	KeyVersion uint8
	IssuedAt   time.Time
}

// AuditStore persists and queries the audit trail.
type AuditStore interface {
	// Insert appends one record. Duplicate text forms are an error; the
	// uniqueness invariant upstream means one in practice indicates a
	// misconfigured node identity.
	Insert(ctx context.Context, rec Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// DeleteBefore removes records issued before t, returning the count.
	DeleteBefore(ctx context.Context, t time.Time) (int, error)
}
