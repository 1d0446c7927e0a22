package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"
)

// CreateDeliveryCommandHandler handles the business logic for delivery creation.
// A new delivery is priced, published, and persisted in one operation; the
// pending state only exists inside this handler.
type CreateDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	pricing    *services.PricingEngine
	clock      clock.Clock
	notifier   *notification.Dispatcher
}

// NewCreateDeliveryCommandHandler creates a handler for delivery creation.
func NewCreateDeliveryCommandHandler(
	uowFactory DeliveryUoWFactory,
	pricing *services.PricingEngine,
	clk clock.Clock,
	notifier *notification.Dispatcher,
) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{
		uowFactory: uowFactory,
		pricing:    pricing,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle prices the requested delivery, publishes it to the courier pool, and
// persists it. Fails with services.ErrUnknownZone when an address cannot be
// priced; in that case nothing is stored. An order number collision regenerates
// the number once before the error propagates.
func (h *CreateDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd CreateDeliveryCommand,
) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	breakdown, err := h.pricing.ComputePrice(ctx, cmd.Pickup(), cmd.Dropoff(), cmd.IsNightDelivery())
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	for attempt := 0; ; attempt++ {
		aggregate, event, err := h.buildPublished(cmd, breakdown, now)
		if err != nil {
			return nil, err
		}

		err = h.persist(ctx, aggregate)
		if err == nil {
			if h.notifier != nil {
				h.notifier.Notify(ctx, event, aggregate, nil)
			}
			return aggregate, nil
		}
		if attempt == 0 && errors.Is(err, ports.ErrDuplicateOrderNumber) {
			continue
		}
		return nil, err
	}
}

// buildPublished assembles the priced, published aggregate with a freshly
// generated order number.
func (h *CreateDeliveryCommandHandler) buildPublished(
	cmd CreateDeliveryCommand,
	breakdown delivery.PricingBreakdown,
	now time.Time,
) (*delivery.Delivery, delivery.DispatchEvent, error) {
	aggregate, err := delivery.NewDelivery(
		cmd.DeliveryID(),
		delivery.NewOrderNumber(now),
		cmd.Pickup(),
		cmd.Dropoff(),
		cmd.VehicleType(),
		cmd.Package(),
		cmd.Priority(),
		cmd.IsNightDelivery(),
		now,
	)
	if err != nil {
		return nil, delivery.DispatchEvent{}, err
	}
	if err = aggregate.AttachPricing(breakdown); err != nil {
		return nil, delivery.DispatchEvent{}, err
	}

	event, err := aggregate.Publish(now)
	if err != nil {
		return nil, delivery.DispatchEvent{}, err
	}
	return aggregate, event, nil
}

func (h *CreateDeliveryCommandHandler) persist(ctx context.Context, aggregate *delivery.Delivery) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.DeliveryRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
