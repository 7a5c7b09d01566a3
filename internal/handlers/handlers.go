package handlers

import (
	"context"

	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/state"
	"github.com/webcungs/order-relay/internal/validation"
)

// Messenger is the slice of the WhatsApp client the HTTP surface needs
type Messenger interface {
	SendText(ctx context.Context, toJID, text string) error
	IsReady() bool
	ConnectionState() string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	wa        Messenger
	store     *state.Store
	groupName string
	log       *logger.Logger
	validator *validation.Validator
}

// New creates a new handler instance
func New(wa Messenger, store *state.Store, groupName string, log *logger.Logger) *Handler {
	return &Handler{
		wa:        wa,
		store:     store,
		groupName: groupName,
		log:       log,
		validator: validation.New(),
	}
}
