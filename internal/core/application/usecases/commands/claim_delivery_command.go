package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrClaimDeliveryCommandIsNotConstructed = errors.New(
	"ClaimDeliveryCommand must be created via NewClaimDeliveryCommand constructor",
)

// ClaimDeliveryCommand represents a courier's attempt to take a published delivery.
type ClaimDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	courierID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewClaimDeliveryCommand creates a command for a courier to claim a delivery.
func NewClaimDeliveryCommand(deliveryID, courierID kernel.UUID) (ClaimDeliveryCommand, error) {
	cmd := ClaimDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setCourierID(courierID),
	); err != nil {
		return ClaimDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ClaimDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrClaimDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the delivery being claimed.
func (c ClaimDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// CourierID returns the claiming courier.
func (c ClaimDeliveryCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *ClaimDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	c.deliveryID = deliveryID
	return nil
}

func (c *ClaimDeliveryCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}
