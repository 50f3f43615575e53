package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// recentEntry is one audited mint in the listing response.
type recentEntry struct {
	VID        string    `json:"vid"`
	NodeID     uint16    `json:"node_id"`
	KeyVersion uint8     `json:"key_version"`
	IssuedAt   time.Time `json:"issued_at"`
}

// handleRecent implements GET /v1/vids?limit=n, newest first.
func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Audit == nil {
		h.writeError(ctx, w, http.StatusNotFound, "not found")
		return
	}
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(ctx, w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxRecentLimit)
	}
	recs, err := h.Audit.Recent(ctx, limit)
	if err != nil {
		cid, _ := GetCorrelationID(ctx)
		slog.Error("audit query failed", "cid", cid, "error", err)
		h.writeError(ctx, w, http.StatusInternalServerError, "internal")
		return
	}
	out := make([]recentEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recentEntry{
			VID:        rec.Text,
			NodeID:     rec.NodeID,
			KeyVersion: rec.KeyVersion,
			IssuedAt:   rec.IssuedAt.UTC(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		VIDs []recentEntry `json:"vids"`
	}{VIDs: out})
}
