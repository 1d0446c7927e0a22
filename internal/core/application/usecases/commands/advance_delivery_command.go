package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAdvanceDeliveryCommandIsNotConstructed = errors.New(
		"AdvanceDeliveryCommand must be created via NewAdvanceDeliveryCommand constructor",
	)
	ErrTargetStatusIsInvalid = errors.New(
		"target status must be one of PickedUp, InTransit, Delivered",
	)
)

// AdvanceDeliveryCommand represents the assigned courier moving a delivery one
// step forward through the execution chain.
type AdvanceDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	courierID  kernel.UUID
	target     delivery.Status

	guard guard.ConstructorGuard
}

// NewAdvanceDeliveryCommand creates a command to advance a delivery.
// The target must be one of the courier-driven statuses; completion and
// cancellation have their own commands.
func NewAdvanceDeliveryCommand(
	deliveryID kernel.UUID,
	courierID kernel.UUID,
	target delivery.Status,
) (AdvanceDeliveryCommand, error) {
	cmd := AdvanceDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setCourierID(courierID),
		cmd.setTarget(target),
	); err != nil {
		return AdvanceDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the delivery being advanced.
func (c AdvanceDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// CourierID returns the courier requesting the advance.
func (c AdvanceDeliveryCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Target returns the requested resulting status.
func (c AdvanceDeliveryCommand) Target() delivery.Status {
	return c.target
}

func (c *AdvanceDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	c.deliveryID = deliveryID
	return nil
}

func (c *AdvanceDeliveryCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *AdvanceDeliveryCommand) setTarget(target delivery.Status) error {
	switch target {
	case delivery.StatusPickedUp, delivery.StatusInTransit, delivery.StatusDelivered:
		c.target = target
		return nil
	default:
		return ErrTargetStatusIsInvalid
	}
}
