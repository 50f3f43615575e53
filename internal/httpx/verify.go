package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// verifyRequest carries the candidate identifier in text form.
type verifyRequest struct {
	VID string `json:"vid"`
}

// handleVerify implements POST /v1/vids/verify. Callers only ever learn a
// boolean; the failure reason is logged and counted server-side so the
// endpoint is not an oracle for forging signatures.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req verifyRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "invalid json")
		return
	}
	res := h.Service.AuthenticateDetailed(req.VID)
	if !res.Valid {
		cid, _ := GetCorrelationID(ctx)
		slog.Info("verification failed", "cid", cid, "reason", string(res.Reason))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Valid bool `json:"valid"`
	}{Valid: res.Valid})
}
