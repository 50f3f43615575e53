package httpx

import (
	"encoding/json"
	"net/http"
)

// handleAbout implements GET /aboutz: build and identity facts useful when
// correlating minted identifiers back to the node that issued them. Secrets
// never appear here; key versions are public payload bytes already.
func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Version     string  `json:"version"`
		NodeID      uint16  `json:"node_id"`
		NodeSource  string  `json:"node_source"`
		KeyVersions []uint8 `json:"key_versions"`
	}{
		Version:     h.Version,
		NodeID:      h.Identity.ID,
		NodeSource:  string(h.Identity.Source),
		KeyVersions: h.KeyVersions,
	})
}
