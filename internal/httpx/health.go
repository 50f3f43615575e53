package httpx

import "net/http"

// handleHealth answers liveness: the process is up and serving.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady answers readiness by pinging the audit database through the
// configured Readiness func. With auditing disabled there is nothing to
// ping and the service is always ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.Readiness == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	if err := h.Readiness(r.Context()); err != nil {
		h.writeError(r.Context(), w, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
