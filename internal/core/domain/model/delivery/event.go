package delivery

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// DispatchEvent is the transient fact emitted by the state machine on every
// accepted transition. It is consumed synchronously by the notification
// dispatcher and is not persisted by the core; an external audit collaborator
// may record it.
type DispatchEvent struct {
	DeliveryID  kernel.UUID
	OrderNumber string
	FromStatus  Status
	ToStatus    Status
	ActorType   ActorType
	ActorID     *kernel.UUID
	OccurredAt  time.Time

	// Reason carries the cancellation reason for Cancelled events, empty otherwise.
	Reason string
}

func newDispatchEvent(d *Delivery, from Status, actor Actor, at time.Time, reason string) DispatchEvent {
	return DispatchEvent{
		DeliveryID:  d.id,
		OrderNumber: d.orderNumber,
		FromStatus:  from,
		ToStatus:    d.status,
		ActorType:   actor.Type(),
		ActorID:     actor.ID(),
		OccurredAt:  at,
		Reason:      reason,
	}
}
