package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateCourierCommandIsNotConstructed = errors.New(
		"CreateCourierCommand must be created via NewCreateCourierCommand constructor",
	)
	ErrNameIsRequired  = errors.New("name is required")
	ErrPhoneIsRequired = errors.New("phone is required")
)

// CreateCourierCommand represents a request to enroll a new courier.
type CreateCourierCommand struct { //nolint:recvcheck //using for validation
	courierID   kernel.UUID
	name        string
	phone       string
	vehicleType kernel.VehicleType
	location    kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateCourierCommand creates a command to enroll a courier.
func NewCreateCourierCommand(
	courierID kernel.UUID,
	name string,
	phone string,
	vehicleType kernel.VehicleType,
	latitude float64,
	longitude float64,
) (CreateCourierCommand, error) {
	cmd := CreateCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setName(name),
		cmd.setPhone(phone),
		cmd.setVehicleType(vehicleType),
		cmd.setLocation(latitude, longitude),
	); err != nil {
		return CreateCourierCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreateCourierCommandIsNotConstructed)
}

// CourierID returns the unique identifier for the new courier.
func (c CreateCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Name returns the courier's name.
func (c CreateCourierCommand) Name() string {
	return c.name
}

// Phone returns the courier's contact number.
func (c CreateCourierCommand) Phone() string {
	return c.phone
}

// VehicleType returns the transport class the courier operates.
func (c CreateCourierCommand) VehicleType() kernel.VehicleType {
	return c.vehicleType
}

// Location returns the courier's starting position.
func (c CreateCourierCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c *CreateCourierCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *CreateCourierCommand) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *CreateCourierCommand) setPhone(phone string) error {
	if phone == "" {
		return ErrPhoneIsRequired
	}
	c.phone = phone
	return nil
}

func (c *CreateCourierCommand) setVehicleType(vehicleType kernel.VehicleType) error {
	if err := vehicleType.Validate(); err != nil {
		return err
	}
	c.vehicleType = vehicleType
	return nil
}

func (c *CreateCourierCommand) setLocation(latitude, longitude float64) error {
	point, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return err
	}
	c.location = point
	return nil
}
