package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReportCourierStatusCommandIsNotConstructed = errors.New(
	"ReportCourierStatusCommand must be created via NewReportCourierStatusCommand constructor",
)

// ReportCourierStatusCommand is the courier app heartbeat: current position
// plus whether the courier is open for new work.
type ReportCourierStatusCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	location  kernel.GeoPoint
	available bool

	guard guard.ConstructorGuard
}

// NewReportCourierStatusCommand creates a status report command.
func NewReportCourierStatusCommand(
	courierID kernel.UUID,
	latitude float64,
	longitude float64,
	available bool,
) (ReportCourierStatusCommand, error) {
	cmd := ReportCourierStatusCommand{
		guard:     guard.NewConstructorGuard(),
		available: available,
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setLocation(latitude, longitude),
	); err != nil {
		return ReportCourierStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportCourierStatusCommand) Validate() error {
	return c.guard.Validate(ErrReportCourierStatusCommandIsNotConstructed)
}

// CourierID returns the reporting courier.
func (c ReportCourierStatusCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the reported position.
func (c ReportCourierStatusCommand) Location() kernel.GeoPoint {
	return c.location
}

// IsAvailable reports whether the courier is open for new work.
func (c ReportCourierStatusCommand) IsAvailable() bool {
	return c.available
}

func (c *ReportCourierStatusCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *ReportCourierStatusCommand) setLocation(latitude, longitude float64) error {
	point, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return err
	}
	c.location = point
	return nil
}
