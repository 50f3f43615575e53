package metrics

import (
	"context"
	"encoding/json"
	"net/http"
)

// SnapshotProvider abstracts Manager for testing.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (map[string]int64, map[string]Summary, error)
}

// Handler returns an http.HandlerFunc writing a JSON metrics snapshot. If
// token is non-empty, requests must carry Authorization: Bearer <token>.
func Handler(provider SnapshotProvider, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			hdr := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if len(hdr) <= len(prefix) || hdr[:len(prefix)] != prefix || hdr[len(prefix):] != token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		counters, summaries, err := provider.Snapshot(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"counters":  counters,
			"summaries": summaries,
		})
	}
}
