package httpx

import (
	"encoding/json"
	"net/http"
)

// mintResponse is the body returned for a freshly minted identifier. The
// claims are decoded from the identifier itself, so the response doubles as
// a worked example of the wire format.
type mintResponse struct {
	VID        string `json:"vid"`
	KeyVersion uint8  `json:"key_version"`
	IssuedAt   string `json:"issued_at"`
	UnixMilli  int64  `json:"unix_milli"`
	NodeID     uint16 `json:"node_id"`
	Sequence   uint16 `json:"sequence"`
}

// handleMint implements POST /v1/vids.
func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := h.Service.Mint(ctx)
	if err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(mintResponse{
		VID:        v.String(),
		KeyVersion: v.KeyVersion(),
		IssuedAt:   v.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UnixMilli:  v.Time().UnixMilli(),
		NodeID:     v.NodeID(),
		Sequence:   v.Sequence(),
	})
}
