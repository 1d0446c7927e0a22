package commands

import (
	"context"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/pkg/clock"
)

// AdvanceDeliveryCommandHandler handles courier progress updates.
// Only the assigned courier can move the delivery, and only one step at a
// time; everything else fails inside the aggregate and nothing is written.
type AdvanceDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
	notifier   *notification.Dispatcher
}

// NewAdvanceDeliveryCommandHandler creates a handler for advance operations.
func NewAdvanceDeliveryCommandHandler(
	uowFactory UoWFactory,
	clk clock.Clock,
	notifier *notification.Dispatcher,
) AdvanceDeliveryCommandHandler {
	return AdvanceDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle moves the delivery to the requested status on behalf of the courier.
// Returns the updated delivery. Fails with delivery.ErrNotAssignedCourier when
// the caller does not hold the assignment, delivery.ErrIllegalTransition for
// a skipped or backward step, and errs.ErrConcurrencyConflict on a lost
// version race.
func (h *AdvanceDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd AdvanceDeliveryCommand,
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

	event, err := aggregate.Advance(cmd.CourierID(), cmd.Target(), h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	var assigned *courier.Courier
	if aggregate.Courier() != nil {
		// best effort, only needed for notification rendering
		assigned, _ = uow.CourierRepository().Get(ctx, *aggregate.Courier())
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.notifier != nil {
		h.notifier.Notify(ctx, event, aggregate, assigned)
	}

	return aggregate, nil
}
