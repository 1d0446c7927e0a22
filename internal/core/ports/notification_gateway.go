package ports

import (
	"context"
)

// NotificationChannel is the transport a message is pushed through.
type NotificationChannel string

const (
	// ChannelPush is the mobile push channel, tried first.
	ChannelPush NotificationChannel = "push"
	// ChannelWhatsApp is the WhatsApp fallback channel.
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// Notification is a single rendered message bound for one recipient.
type Notification struct {
	Channel   NotificationChannel
	Recipient string
	Title     string
	Body      string
}

// NotificationGateway delivers rendered notifications over a concrete
// transport. A non-nil error means the message did not reach the channel;
// the dispatcher records the failure and moves on, lifecycle operations
// never fail on notification errors.
type NotificationGateway interface {
	Send(ctx context.Context, n Notification) error
}
