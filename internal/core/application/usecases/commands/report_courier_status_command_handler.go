package commands

import (
	"context"
)

// ReportCourierStatusCommandHandler handles courier heartbeats.
type ReportCourierStatusCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewReportCourierStatusCommandHandler creates a handler for courier heartbeats.
func NewReportCourierStatusCommandHandler(uowFactory CourierUoWFactory) ReportCourierStatusCommandHandler {
	return ReportCourierStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle records the courier's position and availability.
// Fails with courier.ErrCourierInactive when a deactivated courier tries to
// mark itself available.
func (h *ReportCourierStatusCommandHandler) Handle(ctx context.Context, cmd ReportCourierStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = aggregate.ReportLocation(cmd.Location()); err != nil {
		return err
	}
	if err = aggregate.SetAvailable(cmd.IsAvailable()); err != nil {
		return err
	}

	if err = uow.CourierRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
