package httpx

import (
	"encoding/json"
	"net/http"
)

// decodeResponse is the structured view of an identifier's payload fields.
type decodeResponse struct {
	VID        string `json:"vid"`
	KeyVersion uint8  `json:"key_version"`
	IssuedAt   string `json:"issued_at"`
	UnixMilli  int64  `json:"unix_milli"`
	NodeID     uint16 `json:"node_id"`
	Sequence   uint16 `json:"sequence"`
	Verified   bool   `json:"verified"`
}

// handleDecode implements GET /v1/vids/{vid}. By default the identifier must
// authenticate before its claims are returned; ?unverified=true decodes the
// structure of any well-formed identifier without checking the signature,
// which is useful when triaging tokens signed under retired keys.
func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	skipAuth := r.URL.Query().Get("unverified") == "true"
	claims, err := h.Service.Decode(id, skipAuth)
	if err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(decodeResponse{
		VID:        id,
		KeyVersion: claims.KeyVersion,
		IssuedAt:   claims.ISO8601(),
		UnixMilli:  claims.UnixMilli,
		NodeID:     claims.NodeID,
		Sequence:   claims.Sequence,
		Verified:   !skipAuth,
	})
}
