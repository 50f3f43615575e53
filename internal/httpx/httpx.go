// Package httpx contains the HTTP delivery layer (net/http handlers) for the
// VID service. It maps HTTP requests to the application service while
// enforcing size limits, security headers, and error translation. Handlers
// are split across files (mint.go, verify.go, decode.go, recent.go,
// health.go, about.go, errors.go).
package httpx

import (
	"context"
	"net/http"

	"github.com/haukened/vid/internal/domain"
	"github.com/haukened/vid/internal/node"
	"github.com/haukened/vid/internal/store"
)

// maxRequestBody bounds every JSON request body. Verification inputs are a
// single 29-character string; anything near this limit is garbage.
const maxRequestBody = 4 << 10

// ServicePort abstracts the subset of app.Service used by the HTTP layer.
// It is satisfied by *app.Service in production and mocked in tests.
type ServicePort interface {
	Mint(ctx context.Context) (domain.VID, error)
	AuthenticateDetailed(input any) domain.Result
	Decode(input any, skipAuth bool) (domain.Claims, error)
}

// AuditReader is the read side of the audit trail used by the listing
// endpoint. Satisfied by the sqlite adapter.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]store.Record, error)
}

// Handler wires HTTP endpoints to the application service.
// It is safe for concurrent use. Zero-value is not valid; construct via New.
type Handler struct {
	Service     ServicePort
	Audit       AuditReader                 // optional, enables GET /v1/vids
	Readiness   func(context.Context) error // optional, pings the audit database for /readyz
	Metrics     http.Handler                // optional, mounted at /metricsz
	Version     string                      // build version for /aboutz
	Identity    node.Identity               // resolved node identity for /aboutz
	KeyVersions []uint8                     // accepted key versions for /aboutz
}

// New returns a configured Handler.
// svc: application service port implementation.
// audit: audit trail reader for the listing endpoint (nil disables it).
// readiness: optional check for /readyz (nil => always ready).
func New(svc ServicePort, audit AuditReader, readiness func(context.Context) error) *Handler {
	return &Handler{Service: svc, Audit: audit, Readiness: readiness}
}

// Router constructs and returns an http.Handler with all routes mounted,
// correlation ID and security headers middleware applied.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/vids", h.handleCollection)
	mux.HandleFunc("/v1/vids/", h.handleSubtree) // /v1/vids/verify and /v1/vids/{vid}
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/readyz", h.handleReady)
	mux.HandleFunc("/aboutz", h.handleAbout)
	if h.Metrics != nil {
		mux.Handle("/metricsz", h.Metrics)
	}
	return CorrelationIDMiddleware(h.secureHeaders(mux))
}

// handleCollection dispatches /v1/vids by method: POST mints, GET lists.
func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/vids" { // disallow trailing slash variants
		h.writeError(r.Context(), w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.handleMint(w, r)
	case http.MethodGet:
		h.handleRecent(w, r)
	default:
		h.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSubtree dispatches /v1/vids/verify and /v1/vids/{vid}.
func (h *Handler) handleSubtree(w http.ResponseWriter, r *http.Request) {
	const prefix = "/v1/vids/"
	rest := r.URL.Path[len(prefix):]
	switch {
	case rest == "verify":
		h.handleVerify(w, r)
	case rest != "":
		h.handleDecode(w, r, rest)
	default:
		h.writeError(r.Context(), w, http.StatusNotFound, "not found")
	}
}

// secureHeaders middleware adds standard security & cache control headers.
// The API is JSON-only, so the CSP denies everything.
func (h *Handler) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}
