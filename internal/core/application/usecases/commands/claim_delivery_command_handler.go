package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
)

// ErrCourierNotEligible is returned when the claiming courier is unavailable,
// deactivated, or operates the wrong vehicle type for the delivery.
var ErrCourierNotEligible = errors.New("courier is not eligible for this delivery")

// claimMaxAttempts bounds the optimistic-lock retry loop. The second attempt
// re-reads the record, so a race lost to another courier resolves to
// ErrAlreadyClaimed instead of a conflict.
const claimMaxAttempts = 2

// ClaimDeliveryCommandHandler coordinates the claim race.
// Any number of couriers may claim the same published delivery concurrently;
// the version predicate on the delivery update guarantees at most one winner.
// Everyone else gets delivery.ErrAlreadyClaimed.
type ClaimDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
	notifier   *notification.Dispatcher
}

// NewClaimDeliveryCommandHandler creates a handler for claim operations.
func NewClaimDeliveryCommandHandler(
	uowFactory UoWFactory,
	clk clock.Clock,
	notifier *notification.Dispatcher,
) ClaimDeliveryCommandHandler {
	return ClaimDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle processes a claim attempt and returns the claimed delivery on success.
//
// Error contract:
//   - ErrCourierNotEligible: courier unavailable or wrong vehicle type
//   - delivery.ErrAlreadyClaimed: another courier holds the delivery
//   - delivery.ErrAlreadyTerminal: the delivery was cancelled or completed
//   - errs.ErrObjectNotFound: no such delivery or courier
//   - errs.ErrConcurrencyConflict: both attempts lost a version race
func (h *ClaimDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd ClaimDeliveryCommand,
) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < claimMaxAttempts; attempt++ {
		aggregate, err := h.tryClaim(ctx, cmd)
		if err == nil {
			return aggregate, nil
		}
		if !errors.Is(err, errs.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// tryClaim runs one full claim attempt in its own transaction.
func (h *ClaimDeliveryCommandHandler) tryClaim(
	ctx context.Context,
	cmd ClaimDeliveryCommand,
) (*delivery.Delivery, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	claimant, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return nil, err
	}

	aggregate, err := uow.DeliveryRepository().Get(ctx, cmd.DeliveryID())
	if err != nil {
		return nil, err
	}

	if !claimant.IsAvailable() || claimant.VehicleType() != aggregate.VehicleType() {
		return nil, ErrCourierNotEligible
	}

	event, err := aggregate.Claim(cmd.CourierID(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = claimant.RecordAssignment(); err != nil {
		return nil, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}
	if err = uow.CourierRepository().Update(ctx, claimant); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.notifier != nil {
		h.notifier.Notify(ctx, event, aggregate, claimant)
	}

	return aggregate, nil
}
