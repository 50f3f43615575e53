package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haukened/vid/internal/domain"
)

// writeError writes a JSON error body with given status code.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
	if cid, ok := GetCorrelationID(ctx); ok {
		slog.Debug("wrote error response", "cid", cid, "status", code, "msg", msg)
	}
}

// mapServiceError maps domain/service errors to HTTP responses. Structural
// problems with caller input are 4xx; a failing clock is the one condition
// that makes the mint path temporarily unavailable.
func (h *Handler) mapServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	cid, _ := GetCorrelationID(ctx)
	switch {
	case errors.Is(err, domain.ErrSignatureMismatch), errors.Is(err, domain.ErrUnknownKeyVersion):
		slog.Info("service error", "cid", cid, "code", "unauthentic")
		h.writeError(ctx, w, http.StatusUnauthorized, "unauthentic")
	case errors.Is(err, domain.ErrNilInput),
		errors.Is(err, domain.ErrUnsupportedInput),
		errors.Is(err, domain.ErrTextLength),
		errors.Is(err, domain.ErrTextChar),
		errors.Is(err, domain.ErrBinaryLength),
		errors.Is(err, domain.ErrDecode):
		slog.Warn("service error", "cid", cid, "code", "malformed")
		h.writeError(ctx, w, http.StatusBadRequest, "malformed identifier")
	case errors.Is(err, domain.ErrTimestampRange):
		slog.Warn("service error", "cid", cid, "code", "timestamp_range")
		h.writeError(ctx, w, http.StatusUnprocessableEntity, "timestamp out of range")
	case errors.Is(err, domain.ErrClockFault):
		slog.Error("service error", "cid", cid, "code", "clock_fault")
		h.writeError(ctx, w, http.StatusServiceUnavailable, "clock fault")
	default:
		// Internal / unexpected: do not echo raw error strings to callers.
		slog.Error("unhandled service error", "cid", cid, "code", "unhandled")
		h.writeError(ctx, w, http.StatusInternalServerError, "internal")
	}
}
