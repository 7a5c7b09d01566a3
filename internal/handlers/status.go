package handlers

import (
	"net/http"

	"github.com/webcungs/order-relay/internal/models"
)

// Status reports the session state cache
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()

	h.writeJSON(w, &models.StatusResponse{
		Ready:       snap.Ready,
		GroupCached: snap.GroupCached,
		Info:        h.wa.ConnectionState(),
	}, http.StatusOK)
}
