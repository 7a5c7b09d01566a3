package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/webcungs/order-relay/internal/order"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"
)

// handleMessage filters inbound messages down to order references from the
// configured group and relays them. Panics are caught here so a bad message
// never takes the event loop down.
func (c *Client) handleMessage(evt *events.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorf("Panic in message handler: %v", r)
		}
	}()

	if evt.Info.IsFromMe || !evt.Info.IsGroup {
		return
	}

	groupJID, ok := c.store.GroupJID()
	if !ok || evt.Info.Chat.String() != groupJID {
		return
	}

	text := messageText(evt.Message)
	orderID, ok := order.ExtractOrderID(text)
	if !ok {
		return
	}

	c.log.Infof("Order %s detected from %s", orderID, evt.Info.Sender)

	notif := order.Notification{
		OrderID:   orderID,
		Group:     c.cfg.GroupName,
		Sender:    evt.Info.Sender.String(),
		Message:   text,
		Timestamp: evt.Info.Timestamp.Unix(),
	}

	// Relay off the event dispatch goroutine; the socket read loop must not
	// wait on the order API.
	go c.relayOrder(groupJID, notif)
}

// relayOrder posts the notification and, only on success, confirms back to
// the group. A failed POST is logged and dropped: no retry, no confirmation.
func (c *Client) relayOrder(groupJID string, notif order.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.notifier.Notify(ctx, notif); err != nil {
		c.log.Error("Order notification dropped", err)
		return
	}

	confirmation := fmt.Sprintf("Order d/%s received and forwarded ✅", notif.OrderID)
	if err := c.SendText(ctx, groupJID, confirmation); err != nil {
		c.log.Error("Failed to send order confirmation", err)
	}
}

// messageText extracts the text body from the message variants we relay
func messageText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}
