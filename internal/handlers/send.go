package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/webcungs/order-relay/internal/errors"
	"github.com/webcungs/order-relay/internal/models"
)

// SendMessage handles requests to send a WhatsApp message. The target is
// either a phone number (normalized to a user JID) or the configured group
// title (resolved only against the cached group id, no live lookup).
//
// The response is written before dispatch completes; a send failure after
// that point is logged, never surfaced to the caller.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeAppError(w, errors.InvalidRequest("Invalid request body: "+err.Error()))
		return
	}

	if appErr := h.validator.ValidateSendMessageRequest(&req); appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	req.Message = h.validator.SanitizeMessage(req.Message)

	if !h.wa.IsReady() {
		h.writeAppError(w, errors.ClientNotReady())
		return
	}

	var target string
	if strings.TrimSpace(req.Number) != "" {
		target = h.validator.NormalizeNumber(req.Number)
	} else {
		title := strings.TrimSpace(req.GroupTitle)
		if !strings.EqualFold(title, h.groupName) {
			h.writeAppError(w, errors.GroupNotFound(title))
			return
		}
		jid, ok := h.store.GroupJID()
		if !ok {
			h.writeAppError(w, errors.GroupNotFound(title))
			return
		}
		target = jid
	}

	h.writeJSON(w, &models.SendMessageResponse{
		Status:    "queued",
		To:        target,
		Timestamp: time.Now().Unix(),
	}, http.StatusOK)

	message := req.Message
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.wa.SendText(ctx, target, message); err != nil {
			h.log.Error("Message dispatch failed after response", err)
		}
	}()
}
