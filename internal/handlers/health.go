package handlers

import "net/http"

// Health handles health check requests. Always 200, independent of the
// WhatsApp session.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeText(w, "OK", http.StatusOK)
}
