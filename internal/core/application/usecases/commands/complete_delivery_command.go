package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand represents the finalization of a delivered record
// after proof-of-delivery is confirmed.
type CompleteDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	actor      delivery.Actor

	guard guard.ConstructorGuard
}

// NewCompleteDeliveryCommand creates a command to finalize a delivery.
// The actor must be the system or an operator; couriers cannot self-complete.
func NewCompleteDeliveryCommand(deliveryID kernel.UUID, actor delivery.Actor) (CompleteDeliveryCommand, error) {
	cmd := CompleteDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setActor(actor),
	); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the delivery being finalized.
func (c CompleteDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Actor returns who requested the completion.
func (c CompleteDeliveryCommand) Actor() delivery.Actor {
	return c.actor
}

func (c *CompleteDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	c.deliveryID = deliveryID
	return nil
}

func (c *CompleteDeliveryCommand) setActor(actor delivery.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}
