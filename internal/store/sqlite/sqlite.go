// Package sqlite provides the SQLite-backed implementation of the audit
// trail port (store.AuditStore) and the app.AuditLog mint hook.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/haukened/vid/internal/app"
	"github.com/haukened/vid/internal/store"

	// database/sql SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

var (
	_ store.AuditStore = (*Audit)(nil)
	_ app.AuditLog     = (*Audit)(nil)
)

// Audit implements the audit trail over SQLite (via database/sql). It is
// safe for concurrent use; database/sql handles pooling and serialization.
type Audit struct{ db *sql.DB }

// New constructs an Audit, initializing the schema if absent.
func New(db *sql.DB) (*Audit, error) {
	a := &Audit{db: db}
	if err := a.init(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Audit) init() error {
	schema := `CREATE TABLE IF NOT EXISTS mints (
vid TEXT PRIMARY KEY,
raw BLOB NOT NULL,
node_id INTEGER NOT NULL,
key_version INTEGER NOT NULL,
issued_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mints_issued_at ON mints(issued_at);`
	_, err := a.db.Exec(schema)
	return err
}

// Insert appends one audit record.
func (a *Audit) Insert(ctx context.Context, rec store.Record) error {
	const q = `INSERT INTO mints (vid, raw, node_id, key_version, issued_at) VALUES (?,?,?,?,?)`
	_, err := a.db.ExecContext(ctx, q, rec.Text, rec.Binary, rec.NodeID, rec.KeyVersion, rec.IssuedAt.UnixMilli())
	return err
}

// RecordMint adapts app.MintRecord onto Insert, satisfying the service's
// audit port directly.
func (a *Audit) RecordMint(ctx context.Context, rec app.MintRecord) error {
	return a.Insert(ctx, store.Record{
		Text:       rec.Text,
		Binary:     rec.Binary,
		NodeID:     rec.NodeID,
		KeyVersion: rec.KeyVersion,
		IssuedAt:   rec.IssuedAt,
	})
}

// Recent returns up to limit records, newest first.
func (a *Audit) Recent(ctx context.Context, limit int) ([]store.Record, error) {
	const q = `SELECT vid, raw, node_id, key_version, issued_at FROM mints ORDER BY issued_at DESC, vid DESC LIMIT ?`
	rows, err := a.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Record
	for rows.Next() {
		var (
			rec    store.Record
			node   int64
			keyVer int64
			issued int64
		)
		if err := rows.Scan(&rec.Text, &rec.Binary, &node, &keyVer, &issued); err != nil {
			return nil, err
		}
		rec.NodeID = uint16(node)
		rec.KeyVersion = uint8(keyVer)
		rec.IssuedAt = time.UnixMilli(issued).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteBefore removes records issued before t and returns the count.
func (a *Audit) DeleteBefore(ctx context.Context, t time.Time) (int, error) {
	const q = `DELETE FROM mints WHERE issued_at < ?`
	res, err := a.db.ExecContext(ctx, q, t.UnixMilli())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
