package courier

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// ratingMin and ratingMax bound the courier rating scale.
	ratingMin = 0.0
	ratingMax = 5.0
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a courier without a phone number.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierInactive is returned when an operation requires an active courier.
	ErrCourierInactive = errors.New("courier is deactivated")
)

// Courier represents a registered courier in the dispatch directory.
// It is an aggregate root that manages the courier's profile, availability,
// last reported position, and delivery track record.
//
// Key responsibilities:
//   - Managing courier identity and profile (name, phone, vehicle type)
//   - Tracking availability for new work and the active/deactivated flag
//   - Recording the last reported location for distance-based ranking
//   - Accumulating assignment and completion counters for scoring
//
// Business rules:
//   - Courier must have a valid UUID, non-empty name and phone, and a valid vehicle type
//   - Rating stays within the 0.0 to 5.0 scale
//   - Completed count never exceeds assigned count
//   - A deactivated courier cannot be marked available
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is the human-readable name of the courier
	name string
	// phone is the contact number used for delivery notifications
	phone string
	// vehicleType determines which deliveries the courier can serve
	vehicleType kernel.VehicleType
	// active marks whether the courier is enrolled in dispatch at all
	active bool
	// available marks whether the courier is currently open for new work
	available bool
	// location is the last position the courier reported
	location kernel.GeoPoint
	// rating is the rolling customer rating on a 0 to 5 scale
	rating float64
	// completedCount is the number of deliveries brought to completion
	completedCount int
	// assignedCount is the number of deliveries ever claimed by this courier
	assignedCount int
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a new Courier with the specified profile.
// This is the only way to enroll a valid Courier instance.
//
// The constructor validates all input parameters. A fresh courier starts
// active, available, with a neutral rating and empty counters.
//
// Parameters:
//   - id: Unique identifier for the courier (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - phone: Contact number (must be non-empty)
//   - vehicleType: Transport class the courier operates (must be valid)
//   - location: Last known position (must be valid coordinates)
//
// Returns:
//   - *Courier: A fully initialized courier ready for dispatch
//   - error: Validation error if any parameter is invalid (aggregated errors for multiple issues)
func NewCourier(
	id kernel.UUID,
	name string,
	phone string,
	vehicleType kernel.VehicleType,
	location kernel.GeoPoint,
) (*Courier, error) {
	courier := &Courier{
		guard:     guard.NewConstructorGuard(),
		active:    true,
		available: true,
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
		courier.setVehicleType(vehicleType),
		courier.setLocation(location),
		courier.setRating(ratingMax),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
// Unlike NewCourier which enrolls fresh couriers, this constructor restores a
// courier to its previously persisted state, counters and flags included.
//
// Business rules:
//   - All profile fields must pass the same validation as NewCourier
//   - Counters must be non-negative and completed must not exceed assigned
//   - A deactivated courier is restored as unavailable regardless of the flag
func RestoreCourier(
	id kernel.UUID,
	name string,
	phone string,
	vehicleType kernel.VehicleType,
	active bool,
	available bool,
	location kernel.GeoPoint,
	rating float64,
	completedCount int,
	assignedCount int,
) (*Courier, error) {
	courier := &Courier{
		guard:     guard.NewConstructorGuard(),
		active:    active,
		available: available && active,
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
		courier.setVehicleType(vehicleType),
		courier.setLocation(location),
		courier.setRating(rating),
		courier.setCounters(completedCount, assignedCount),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// IsEqual compares two couriers for equality based on their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks if the Courier was properly constructed using the NewCourier constructor.
// The zero value of Courier is invalid and will fail this validation.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the human-readable name of the courier.
func (c *Courier) Name() string {
	return c.name
}

// Phone returns the contact number of the courier.
func (c *Courier) Phone() string {
	return c.phone
}

// VehicleType returns the transport class the courier operates.
func (c *Courier) VehicleType() kernel.VehicleType {
	return c.vehicleType
}

// IsActive reports whether the courier is enrolled in dispatch.
func (c *Courier) IsActive() bool {
	return c.active
}

// IsAvailable reports whether the courier is open for new work right now.
// A deactivated courier is never available.
func (c *Courier) IsAvailable() bool {
	return c.active && c.available
}

// Location returns the last position the courier reported.
func (c *Courier) Location() kernel.GeoPoint {
	return c.location
}

// Rating returns the rolling customer rating on a 0 to 5 scale.
func (c *Courier) Rating() float64 {
	return c.rating
}

// CompletedCount returns the number of deliveries the courier completed.
func (c *Courier) CompletedCount() int {
	return c.completedCount
}

// AssignedCount returns the number of deliveries the courier ever claimed.
func (c *Courier) AssignedCount() int {
	return c.assignedCount
}

// CompletionRate returns completed divided by assigned deliveries.
// A courier with no history scores a neutral 1.0 so newcomers are not
// ranked below everyone with a single completion.
func (c *Courier) CompletionRate() float64 {
	if c.assignedCount == 0 {
		return 1.0
	}
	return float64(c.completedCount) / float64(c.assignedCount)
}

// SetAvailable toggles the courier's readiness for new work.
// Fails for deactivated couriers.
func (c *Courier) SetAvailable(available bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.active {
		return ErrCourierInactive
	}
	c.available = available
	return nil
}

// Deactivate removes the courier from dispatch. The courier stops being
// available immediately; the profile and counters are kept.
func (c *Courier) Deactivate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.active = false
	c.available = false
	return nil
}

// Activate re-enrolls a deactivated courier. Availability must be switched
// back on explicitly via SetAvailable.
func (c *Courier) Activate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.active = true
	return nil
}

// ReportLocation updates the courier's last known position.
func (c *Courier) ReportLocation(location kernel.GeoPoint) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.setLocation(location)
}

// RecordAssignment increments the assigned counter when the courier wins a claim.
func (c *Courier) RecordAssignment() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.assignedCount++
	return nil
}

// RecordCompletion increments the completed counter when one of the courier's
// deliveries is finalized.
func (c *Courier) RecordCompletion() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.completedCount >= c.assignedCount {
		return errs.NewValueIsInvalidErrorWithCause("completedCount",
			errors.New("completion recorded without a matching assignment"))
	}
	c.completedCount++
	return nil
}

// RecordRating replaces the rolling rating after a completed delivery is rated.
func (c *Courier) RecordRating(rating float64) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.setRating(rating)
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setPhone(phone string) error {
	if phone == "" {
		return ErrPhoneIsRequired
	}
	c.phone = phone
	return nil
}

func (c *Courier) setVehicleType(vehicleType kernel.VehicleType) error {
	if err := vehicleType.Validate(); err != nil {
		return err
	}
	c.vehicleType = vehicleType
	return nil
}

func (c *Courier) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}

func (c *Courier) setRating(rating float64) error {
	if rating < ratingMin || rating > ratingMax {
		return errs.NewValueIsOutOfRangeError("rating", rating, ratingMin, ratingMax)
	}
	c.rating = rating
	return nil
}

func (c *Courier) setCounters(completed, assigned int) error {
	if completed < 0 || assigned < 0 || completed > assigned {
		return errs.NewValueIsInvalidErrorWithCause("counters",
			errors.New("counters must be non-negative and completed must not exceed assigned"))
	}
	c.completedCount = completed
	c.assignedCount = assigned
	return nil
}
