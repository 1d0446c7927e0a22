package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
)

// sweepCancelReason is the reason recorded on every swept record.
const sweepCancelReason = "claim window expired"

// SweepExpiredCommandHandler cancels published deliveries left unclaimed past
// their TTL. Each record is swept in its own transaction: a version conflict
// means a courier claimed the record between the listing and the write, so
// that record is skipped and the sweep moves on. Running the sweep twice over
// the same dataset is a no-op the second time.
type SweepExpiredCommandHandler struct {
	uowFactory DeliveryUoWFactory
	clock      clock.Clock
	notifier   *notification.Dispatcher
	logger     *slog.Logger
}

// NewSweepExpiredCommandHandler creates a handler for the expiry sweep.
func NewSweepExpiredCommandHandler(
	uowFactory DeliveryUoWFactory,
	clk clock.Clock,
	notifier *notification.Dispatcher,
	logger *slog.Logger,
) SweepExpiredCommandHandler {
	return SweepExpiredCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
		logger:     logger.With("component", "expiry_sweep"),
	}
}

// Handle runs one sweep and returns how many deliveries were cancelled.
// A delivery published exactly TTL ago is not yet expired; expiry requires
// the window to have fully lapsed.
func (h *SweepExpiredCommandHandler) Handle(ctx context.Context, cmd SweepExpiredCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	cutoff := now.Add(-cmd.TTL())

	expired, err := h.listExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range expired {
		swept, sweepErr := h.sweepOne(ctx, id, now, cutoff)
		if sweepErr != nil {
			h.logger.ErrorContext(ctx, "Failed to sweep delivery",
				"deliveryId", id.String(), "error", sweepErr)
			continue
		}
		if swept {
			cancelled++
		}
	}
	return cancelled, nil
}

func (h *SweepExpiredCommandHandler) listExpired(ctx context.Context, cutoff time.Time) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregates, err := uow.DeliveryRepository().
		GetAllInStatusOlderThan(ctx, delivery.StatusPublished, cutoff)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(aggregates))
	for _, aggregate := range aggregates {
		ids = append(ids, aggregate.ID())
	}
	return ids, nil
}

// sweepOne cancels a single expired delivery in its own transaction.
// Returns false without error when the record was claimed or otherwise moved
// on since the listing: the sweep only ever cancels a record it re-reads as
// still published past the cutoff.
func (h *SweepExpiredCommandHandler) sweepOne(
	ctx context.Context,
	id kernel.UUID,
	now time.Time,
	cutoff time.Time,
) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return false, nil
		}
		return false, err
	}

	if !stillExpired(aggregate, cutoff) {
		h.logger.InfoContext(ctx, "skipping delivery no longer expirable",
			"deliveryId", id.String(), "status", aggregate.Status().String())
		return false, nil
	}

	event, err := aggregate.Cancel(delivery.SystemActor(), sweepCancelReason, now)
	if err != nil {
		return false, err
	}

	if err = uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			h.logger.InfoContext(ctx, "skipping delivery claimed mid-sweep",
				"deliveryId", id.String())
			return false, nil
		}
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	if h.notifier != nil {
		h.notifier.Notify(ctx, event, aggregate, nil)
	}
	return true, nil
}

// stillExpired reports whether the re-read record is still a published
// delivery whose publication predates the cutoff. A record claimed between
// the listing and this check no longer qualifies and must not be cancelled.
func stillExpired(aggregate *delivery.Delivery, cutoff time.Time) bool {
	if aggregate.Status() != delivery.StatusPublished {
		return false
	}
	publishedAt := aggregate.Timeline().PublishedAt
	return publishedAt != nil && publishedAt.Before(cutoff)
}
