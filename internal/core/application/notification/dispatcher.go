// Package notification turns lifecycle transitions into messages for the
// people involved in a delivery. The mapping from transition to template is a
// static table; transport failures are recorded per recipient and never
// propagated, so a dead messaging channel cannot block the lifecycle.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"
)

// Role identifies which party of a delivery a message is addressed to.
type Role string

const (
	// RoleCustomer is the dropoff contact of the delivery.
	RoleCustomer Role = "customer"
	// RoleCourier is the courier assigned to the delivery.
	RoleCourier Role = "courier"
	// RoleOperator is the dispatch operator channel.
	RoleOperator Role = "operator"
)

// Outcome is the per-recipient result of one dispatch run.
type Outcome struct {
	Role      Role
	Recipient string
	Channel   ports.NotificationChannel
	Template  string
	Err       error
}

// template is one row of the transition table: what to say to whom.
type template struct {
	id    string
	title string
	body  string
}

// transitionTemplates maps (resulting status, role) to the message sent.
// Statuses or roles absent from the table simply produce no message.
func transitionTemplates() map[delivery.Status]map[Role]template {
	return map[delivery.Status]map[Role]template{
		delivery.StatusPublished: {
			RoleCustomer: {"delivery_published", "Delivery created",
				"Your delivery %s has been created and offered to nearby couriers."},
		},
		delivery.StatusClaimed: {
			RoleCustomer: {"courier_assigned", "Courier assigned",
				"A courier has been assigned to your delivery %s."},
			RoleCourier: {"claim_confirmed", "Claim confirmed",
				"You have been assigned delivery %s. Head to the pickup address."},
		},
		delivery.StatusPickedUp: {
			RoleCustomer: {"package_picked_up", "Package picked up",
				"The courier has picked up your delivery %s."},
		},
		delivery.StatusInTransit: {
			RoleCustomer: {"delivery_in_transit", "On the way",
				"Your delivery %s is on the way."},
		},
		delivery.StatusDelivered: {
			RoleCustomer: {"delivery_delivered", "Delivered",
				"Your delivery %s has been handed over."},
		},
		delivery.StatusCompleted: {
			RoleCustomer: {"delivery_completed", "Delivery completed",
				"Your delivery %s is complete. Thank you."},
			RoleCourier: {"earnings_recorded", "Earnings recorded",
				"Delivery %s is complete and your earnings have been recorded."},
		},
		delivery.StatusCancelled: {
			RoleCustomer: {"delivery_cancelled", "Delivery cancelled",
				"Your delivery %s has been cancelled."},
			RoleCourier: {"delivery_cancelled_courier", "Delivery cancelled",
				"Delivery %s has been cancelled. No further action is needed."},
			RoleOperator: {"delivery_cancelled_ops", "Delivery cancelled",
				"Delivery %s was cancelled."},
		},
	}
}

// Dispatcher fans a lifecycle transition out to its recipients.
// Each recipient is tried on push first; if push fails the message falls back
// to WhatsApp. Every attempt is recorded in the returned outcomes.
type Dispatcher struct {
	gateway         ports.NotificationGateway
	operatorContact string
	logger          *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given gateway.
// operatorContact is the ops channel recipient; empty disables operator messages.
func NewDispatcher(gateway ports.NotificationGateway, operatorContact string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		gateway:         gateway,
		operatorContact: operatorContact,
		logger:          logger.With("component", "notification-dispatcher"),
	}
}

// Notify sends the messages the transition table prescribes for the event.
// assigned may be nil when the delivery has no courier. The returned outcomes
// list one entry per recipient; a failed recipient carries its error but the
// call itself never fails.
func (d *Dispatcher) Notify(
	ctx context.Context,
	event delivery.DispatchEvent,
	subject *delivery.Delivery,
	assigned *courier.Courier,
) []Outcome {
	templates, ok := transitionTemplates()[event.ToStatus]
	if !ok {
		return nil
	}

	outcomes := make([]Outcome, 0, len(templates))
	for _, role := range []Role{RoleCustomer, RoleCourier, RoleOperator} {
		tpl, ok := templates[role]
		if !ok {
			continue
		}
		recipient := d.recipientFor(role, subject, assigned)
		if recipient == "" {
			continue
		}
		outcomes = append(outcomes, d.send(ctx, role, recipient, tpl, event))
	}
	return outcomes
}

func (d *Dispatcher) recipientFor(role Role, subject *delivery.Delivery, assigned *courier.Courier) string {
	switch role {
	case RoleCustomer:
		return subject.Dropoff().ContactPhone()
	case RoleCourier:
		if assigned == nil {
			return ""
		}
		return assigned.Phone()
	case RoleOperator:
		return d.operatorContact
	}
	return ""
}

func (d *Dispatcher) send(
	ctx context.Context,
	role Role,
	recipient string,
	tpl template,
	event delivery.DispatchEvent,
) Outcome {
	message := ports.Notification{
		Channel:   ports.ChannelPush,
		Recipient: recipient,
		Title:     tpl.title,
		Body:      fmt.Sprintf(tpl.body, event.OrderNumber),
	}

	err := d.gateway.Send(ctx, message)
	if err == nil {
		return Outcome{Role: role, Recipient: recipient, Channel: ports.ChannelPush, Template: tpl.id}
	}

	d.logger.WarnContext(ctx, "push delivery failed, falling back to whatsapp",
		"orderNumber", event.OrderNumber,
		"role", string(role),
		"error", err)

	message.Channel = ports.ChannelWhatsApp
	if fallbackErr := d.gateway.Send(ctx, message); fallbackErr != nil {
		d.logger.ErrorContext(ctx, "notification undeliverable",
			"orderNumber", event.OrderNumber,
			"role", string(role),
			"error", fallbackErr)
		return Outcome{
			Role: role, Recipient: recipient,
			Channel: ports.ChannelWhatsApp, Template: tpl.id, Err: fallbackErr,
		}
	}
	return Outcome{Role: role, Recipient: recipient, Channel: ports.ChannelWhatsApp, Template: tpl.id}
}
