// Package notify provides notification gateway adapters.
// The WebhookGateway posts rendered messages to a messaging relay; the
// dispatcher decides channels and fallbacks, this adapter only delivers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const defaultSendTimeout = 5 * time.Second

// WebhookGateway delivers notifications by posting them to a relay endpoint.
// The relay owns the actual push and WhatsApp integrations; this side only
// reports which channel the message is meant for.
type WebhookGateway struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewWebhookGateway creates a gateway posting to the given relay endpoint.
func NewWebhookGateway(endpoint string, timeout time.Duration, logger *slog.Logger) (*WebhookGateway, error) {
	if endpoint == "" {
		return nil, errs.NewValueIsRequiredError("endpoint")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &WebhookGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "notification_gateway"),
	}, nil
}

type webhookPayload struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Send posts one rendered notification to the relay. A non-2xx status counts
// as a delivery failure so the dispatcher can try the fallback channel.
func (g *WebhookGateway) Send(ctx context.Context, n ports.Notification) error {
	if n.Recipient == "" {
		return errs.NewValueIsRequiredError("recipient")
	}

	payload, err := json.Marshal(webhookPayload{
		Channel:   string(n.Channel),
		Recipient: n.Recipient,
		Title:     n.Title,
		Body:      n.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification relay returned status %d", resp.StatusCode)
	}

	g.logger.InfoContext(ctx, "notification delivered",
		"channel", n.Channel,
		"recipient", n.Recipient,
		"title", n.Title)
	return nil
}
