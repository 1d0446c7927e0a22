package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// AddressParams carries the raw address fields of a delivery request before
// they are turned into domain value objects.
type AddressParams struct {
	Street       string
	Zone         string
	ContactName  string
	ContactPhone string
	Latitude     float64
	Longitude    float64
}

// CreateDeliveryCommand represents a request to register a new delivery.
// The command validates and normalizes the raw request into domain value
// objects; pricing and publication happen in the handler.
type CreateDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID    kernel.UUID
	pickup        delivery.Address
	dropoff       delivery.Address
	vehicleType   kernel.VehicleType
	pkg           delivery.Package
	priority      delivery.Priority
	nightDelivery bool

	guard guard.ConstructorGuard
}

// NewCreateDeliveryCommand creates a command to register a new delivery.
// All address, package, and vehicle inputs are validated up front; the
// returned command carries fully constructed value objects.
func NewCreateDeliveryCommand(
	deliveryID kernel.UUID,
	pickup AddressParams,
	dropoff AddressParams,
	vehicleType kernel.VehicleType,
	weightKg float64,
	description string,
	priority delivery.Priority,
	nightDelivery bool,
) (CreateDeliveryCommand, error) {
	cmd := CreateDeliveryCommand{
		guard:         guard.NewConstructorGuard(),
		nightDelivery: nightDelivery,
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setPickup(pickup),
		cmd.setDropoff(dropoff),
		cmd.setVehicleType(vehicleType),
		cmd.setPackage(weightKg, description),
		cmd.setPriority(priority),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the unique identifier for the new delivery.
func (c CreateDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Pickup returns the validated pickup address.
func (c CreateDeliveryCommand) Pickup() delivery.Address {
	return c.pickup
}

// Dropoff returns the validated dropoff address.
func (c CreateDeliveryCommand) Dropoff() delivery.Address {
	return c.dropoff
}

// VehicleType returns the transport class the delivery requires.
func (c CreateDeliveryCommand) VehicleType() kernel.VehicleType {
	return c.vehicleType
}

// Package returns the validated package details.
func (c CreateDeliveryCommand) Package() delivery.Package {
	return c.pkg
}

// Priority returns the requested delivery priority.
func (c CreateDeliveryCommand) Priority() delivery.Priority {
	return c.priority
}

// IsNightDelivery reports whether the night surcharge applies.
func (c CreateDeliveryCommand) IsNightDelivery() bool {
	return c.nightDelivery
}

func (c *CreateDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	c.deliveryID = deliveryID
	return nil
}

func (c *CreateDeliveryCommand) setPickup(params AddressParams) error {
	address, err := buildAddress(params)
	if err != nil {
		return err
	}
	c.pickup = address
	return nil
}

func (c *CreateDeliveryCommand) setDropoff(params AddressParams) error {
	address, err := buildAddress(params)
	if err != nil {
		return err
	}
	c.dropoff = address
	return nil
}

func (c *CreateDeliveryCommand) setVehicleType(vehicleType kernel.VehicleType) error {
	if err := vehicleType.Validate(); err != nil {
		return err
	}
	c.vehicleType = vehicleType
	return nil
}

func (c *CreateDeliveryCommand) setPackage(weightKg float64, description string) error {
	pkg, err := delivery.NewPackage(weightKg, description)
	if err != nil {
		return err
	}
	c.pkg = pkg
	return nil
}

func (c *CreateDeliveryCommand) setPriority(priority delivery.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	c.priority = priority
	return nil
}

func buildAddress(params AddressParams) (delivery.Address, error) {
	point, err := kernel.NewGeoPoint(params.Latitude, params.Longitude)
	if err != nil {
		return delivery.Address{}, err
	}
	return delivery.NewAddress(
		params.Street, params.Zone, params.ContactName, params.ContactPhone, point)
}
