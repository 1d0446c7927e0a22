package commands

import (
	"context"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/pkg/clock"
)

// CancelDeliveryCommandHandler handles delivery cancellation.
// The record keeps its courier assignment and timeline for audit; only the
// status, version, and cancellation fields change.
type CancelDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
	notifier   *notification.Dispatcher
}

// NewCancelDeliveryCommandHandler creates a handler for cancellation operations.
func NewCancelDeliveryCommandHandler(
	uowFactory UoWFactory,
	clk clock.Clock,
	notifier *notification.Dispatcher,
) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle cancels the delivery. Fails with delivery.ErrAlreadyTerminal for a
// record that is already cancelled or completed, and
// delivery.ErrIllegalTransition for one already handed over.
func (h *CancelDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd CancelDeliveryCommand,
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

	event, err := aggregate.Cancel(cmd.Actor(), cmd.Reason(), h.clock.Now())
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
