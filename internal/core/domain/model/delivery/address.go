package delivery

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when an Address was not created via NewAddress.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is the immutable pickup or dropoff side of a delivery: a street
// line, the pricing zone it belongs to, the contact at that address, and the
// geographic point used for distance and proximity calculations.
// Addresses are fixed at delivery creation and never change afterwards.
type Address struct { //nolint:recvcheck //using for validation
	street       string
	zone         string
	contactName  string
	contactPhone string
	point        kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewAddress creates a validated Address.
// Street, zone and contact phone are required; the point must be a properly
// constructed GeoPoint. The zone name is matched against the pricing zone
// table when the delivery is priced.
func NewAddress(street, zone, contactName, contactPhone string, point kernel.GeoPoint) (Address, error) {
	a := Address{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setStreet(street),
		a.setZone(zone),
		a.setContact(contactName, contactPhone),
		a.setPoint(point),
	); err != nil {
		return Address{}, err
	}

	return a, nil
}

// Validate ensures the Address was created through NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Street returns the street line of the address.
func (a Address) Street() string {
	return a.street
}

// Zone returns the pricing zone name the address belongs to.
func (a Address) Zone() string {
	return a.zone
}

// ContactName returns the name of the contact at this address.
func (a Address) ContactName() string {
	return a.contactName
}

// ContactPhone returns the phone number of the contact at this address.
func (a Address) ContactPhone() string {
	return a.contactPhone
}

// Point returns the geographic coordinates of the address.
func (a Address) Point() kernel.GeoPoint {
	return a.point
}

func (a *Address) setStreet(street string) error {
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	a.street = street
	return nil
}

func (a *Address) setZone(zone string) error {
	if zone == "" {
		return errs.NewValueIsRequiredError("zone")
	}
	a.zone = zone
	return nil
}

func (a *Address) setContact(name, phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("contactPhone")
	}
	a.contactName = name
	a.contactPhone = phone
	return nil
}

func (a *Address) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	a.point = point
	return nil
}

// Package describes the physical load of a delivery.
// Immutable at creation.
type Package struct { //nolint:recvcheck //using for validation
	weightKg    float64
	description string

	guard guard.ConstructorGuard
}

// ErrPackageIsNotConstructed is returned when a Package was not created via NewPackage.
var ErrPackageIsNotConstructed = errs.NewValueIsRequiredError(
	"package must be created via NewPackage constructor")

// maxPackageWeightKg caps what any supported vehicle can carry.
const maxPackageWeightKg = 1000.0

// NewPackage creates a validated Package. Weight must be positive and within
// the supported range; the description is optional.
func NewPackage(weightKg float64, description string) (Package, error) {
	p := Package{
		guard: guard.NewConstructorGuard(),
	}

	if weightKg <= 0 || weightKg > maxPackageWeightKg {
		return Package{}, errs.NewValueIsOutOfRangeError("weightKg", weightKg, 0, maxPackageWeightKg)
	}

	p.weightKg = weightKg
	p.description = description
	return p, nil
}

// Validate ensures the Package was created through NewPackage.
func (p Package) Validate() error {
	return p.guard.Validate(ErrPackageIsNotConstructed)
}

// WeightKg returns the package weight in kilograms.
func (p Package) WeightKg() float64 {
	return p.weightKg
}

// Description returns the free-form package description.
func (p Package) Description() string {
	return p.description
}

// Priority classifies how urgently a delivery should be surfaced to couriers.
// It does not affect the state machine, only broadcast ordering.
type Priority int

const (
	// PriorityUnknown represents an invalid or undefined priority.
	PriorityUnknown Priority = iota

	// PriorityNormal is the default delivery priority.
	PriorityNormal

	// PriorityUrgent marks deliveries surfaced first to the courier pool.
	PriorityUrgent
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityUnknown: "Unknown",
		PriorityNormal:  "Normal",
		PriorityUrgent:  "Urgent",
	}
}

// PriorityFromString parses a priority from its string name.
func PriorityFromString(s string) (Priority, error) {
	for p, name := range getPriorityStrings() {
		if p != PriorityUnknown && name == s {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidError("priority")
}

// Validate checks if the Priority value is valid.
func (p Priority) Validate() error {
	if p != PriorityNormal && p != PriorityUrgent {
		return errs.NewValueIsInvalidError("priority")
	}
	return nil
}

// String returns the human-readable name of the priority.
func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "Unknown"
}
