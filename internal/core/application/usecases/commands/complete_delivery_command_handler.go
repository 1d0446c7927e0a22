package commands

import (
	"context"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/pkg/clock"
)

// CompleteDeliveryCommandHandler finalizes delivered records.
// Completion settles the courier's track record: the completed counter is
// incremented in the same transaction that moves the delivery, so the
// counters can never drift from the lifecycle.
type CompleteDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
	notifier   *notification.Dispatcher
}

// NewCompleteDeliveryCommandHandler creates a handler for completion operations.
func NewCompleteDeliveryCommandHandler(
	uowFactory UoWFactory,
	clk clock.Clock,
	notifier *notification.Dispatcher,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle finalizes the delivery and credits the assigned courier.
func (h *CompleteDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd CompleteDeliveryCommand,
) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, cmd.DeliveryID())
	if err != nil {
		return nil, err
	}

	event, err := aggregate.Complete(cmd.Actor(), h.clock.Now())
	if err != nil {
		return nil, err
	}

	var assigned *courier.Courier
	if aggregate.Courier() != nil {
		assigned, err = uow.CourierRepository().Get(ctx, *aggregate.Courier())
		if err != nil {
			return nil, err
		}
		if err = assigned.RecordCompletion(); err != nil {
			return nil, err
		}
		if err = uow.CourierRepository().Update(ctx, assigned); err != nil {
			return nil, err
		}
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.notifier != nil {
		h.notifier.Notify(ctx, event, aggregate, assigned)
	}

	return aggregate, nil
}
