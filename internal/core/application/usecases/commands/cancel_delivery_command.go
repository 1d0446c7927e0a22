package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCancelDeliveryCommandIsNotConstructed = errors.New(
		"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
	)
	ErrReasonIsRequired = errors.New("cancellation reason is required")
)

// CancelDeliveryCommand represents an operator or system cancellation of a
// delivery that has not yet been handed over.
type CancelDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	actor      delivery.Actor
	reason     string

	guard guard.ConstructorGuard
}

// NewCancelDeliveryCommand creates a command to cancel a delivery.
// A non-empty reason is mandatory; it ends up on the stored record.
func NewCancelDeliveryCommand(
	deliveryID kernel.UUID,
	actor delivery.Actor,
	reason string,
) (CancelDeliveryCommand, error) {
	cmd := CancelDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setActor(actor),
		cmd.setReason(reason),
	); err != nil {
		return CancelDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the delivery being cancelled.
func (c CancelDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Actor returns who requested the cancellation.
func (c CancelDeliveryCommand) Actor() delivery.Actor {
	return c.actor
}

// Reason returns the stated cancellation reason.
func (c CancelDeliveryCommand) Reason() string {
	return c.reason
}

func (c *CancelDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	c.deliveryID = deliveryID
	return nil
}

func (c *CancelDeliveryCommand) setActor(actor delivery.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *CancelDeliveryCommand) setReason(reason string) error {
	if reason == "" {
		return ErrReasonIsRequired
	}
	c.reason = reason
	return nil
}
