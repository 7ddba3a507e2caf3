// Package api exposes the HTTP surface: routing, request decoding, and the
// response envelopes.
package api

import (
	"net/http"

	"splittab/internal/service"
	"splittab/internal/storage"
)

// Handler holds the services behind the HTTP endpoints.
type Handler struct {
	auth     *service.AuthService
	receipts *service.ReceiptService
	store    storage.Store
}

// NewHandler constructs a Handler.
func NewHandler(authSvc *service.AuthService, receipts *service.ReceiptService, store storage.Store) *Handler {
	return &Handler{
		auth:     authSvc,
		receipts: receipts,
		store:    store,
	}
}

// Health handles GET /healthz. It reports healthy only when the database
// answers a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Preview handles POST /api/v1/split/preview: a stateless split computation
// over the posted snapshot. Nothing is stored and no auth is required.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	items, shares, people, charges := req.snapshot()
	totals := h.receipts.Preview(items, shares, people, charges)
	respond(w, http.StatusOK, totals)
}
