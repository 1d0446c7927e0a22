package delivery

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not created
	// through the NewDelivery factory method or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

	// ErrIllegalTransition is returned when a requested status transition is not
	// in the transition table, or the actor is of the wrong kind for it.
	// The record is left untouched.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrAlreadyClaimed is returned when claiming a delivery another courier
	// has already won. Expected under normal claim contention.
	ErrAlreadyClaimed = errors.New("delivery is already claimed")

	// ErrAlreadyTerminal is returned when acting on a completed or cancelled delivery.
	ErrAlreadyTerminal = errors.New("delivery is already in a terminal status")

	// ErrNotAssignedCourier is returned when a courier other than the assigned
	// one attempts to advance a delivery.
	ErrNotAssignedCourier = errors.New("courier is not assigned to this delivery")

	// ErrActorNotAllowed is returned when the actor kind may not perform the
	// requested transition (e.g. a courier cancelling).
	ErrActorNotAllowed = errors.New("actor is not allowed to perform this transition")

	// ErrPricingAlreadySet is returned on a second pricing attachment.
	// The price quoted to the requester is firm and never silently changes.
	ErrPricingAlreadySet = errors.New("pricing breakdown is already attached")

	// ErrPricingNotSet is returned when publishing an unpriced delivery.
	ErrPricingNotSet = errors.New("pricing breakdown must be attached before publication")
)

// Timeline is the append-only audit trail of lifecycle timestamps.
// Each field is stamped exactly once, when its transition is accepted,
// and never overwritten.
type Timeline struct {
	CreatedAt   time.Time
	PublishedAt *time.Time
	ClaimedAt   *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// Delivery is the aggregate root of the dispatch core: a single transport job
// from pickup to dropoff, tracked through a fixed lifecycle.
//
// Invariants maintained by this type:
//   - Identity (id, order number) and the request fields (addresses, vehicle
//     type, package, priority, night flag) are immutable after creation.
//   - Pricing is attached exactly once, before publication.
//   - Status moves only along the transition table in status.go; every
//     accepted transition increments the version counter, stamps its
//     timestamp, and produces a DispatchEvent.
//   - A courier is assigned if and only if the status requires one
//     (cancelled records keep their assignment for audit).
//
// The aggregate performs no I/O. Persistence is the repository's job and all
// concurrency control happens through the version counter: the repository only
// writes a delivery whose stored version matches version-1, so two accepted
// transitions on the same record can never be concurrent.
type Delivery struct {
	id          kernel.UUID
	orderNumber string

	pickup        Address
	dropoff       Address
	vehicleType   kernel.VehicleType
	pkg           Package
	priority      Priority
	nightDelivery bool

	pricing   *PricingBreakdown
	courierID *kernel.UUID

	status       Status
	version      int64
	timeline     Timeline
	cancelReason string

	isConstructed bool
}

// NewDelivery creates a new Delivery in Pending status with version 1.
// All request fields are validated; the order number must be non-empty and is
// expected to be unique (the registry enforces uniqueness on persist).
func NewDelivery(
	id kernel.UUID,
	orderNumber string,
	pickup Address,
	dropoff Address,
	vehicleType kernel.VehicleType,
	pkg Package,
	priority Priority,
	nightDelivery bool,
	createdAt time.Time,
) (*Delivery, error) {
	if orderNumber == "" {
		return nil, errs.NewValueIsRequiredError("orderNumber")
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("createdAt")
	}

	if err := errors.Join(
		id.Validate(),
		pickup.Validate(),
		dropoff.Validate(),
		vehicleType.Validate(),
		pkg.Validate(),
		priority.Validate(),
	); err != nil {
		return nil, err
	}

	return &Delivery{
		id:            id,
		orderNumber:   orderNumber,
		pickup:        pickup,
		dropoff:       dropoff,
		vehicleType:   vehicleType,
		pkg:           pkg,
		priority:      priority,
		nightDelivery: nightDelivery,
		status:        StatusPending,
		version:       1,
		timeline:      Timeline{CreatedAt: createdAt},
		isConstructed: true,
	}, nil
}

// Snapshot is the full persistent state of a delivery, used to move the
// aggregate across the persistence boundary without exposing setters.
type Snapshot struct {
	ID            kernel.UUID
	OrderNumber   string
	Pickup        Address
	Dropoff       Address
	VehicleType   kernel.VehicleType
	Package       Package
	Priority      Priority
	NightDelivery bool
	Pricing       *PricingBreakdown
	CourierID     *kernel.UUID
	Status        Status
	Version       int64
	Timeline      Timeline
	CancelReason  string
}

// RestoreDelivery reconstructs a Delivery from persistence.
// It re-validates the aggregate invariants so corrupt rows cannot produce a
// usable aggregate: valid status, positive version, and the courier
// assignment invariant.
func RestoreDelivery(s Snapshot) (*Delivery, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.Pickup.Validate(),
		s.Dropoff.Validate(),
		s.VehicleType.Validate(),
		s.Package.Validate(),
		s.Priority.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if s.OrderNumber == "" {
		return nil, errs.NewValueIsRequiredError("orderNumber")
	}

	if s.Version < 1 {
		return nil, errs.NewVersionIsInvalidError("version",
			fmt.Errorf("%d is not a positive version", s.Version))
	}

	if s.CourierID != nil {
		if err := s.CourierID.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.Status.ValidateCanHaveCourier(s.CourierID != nil); err != nil {
		return nil, err
	}

	if s.Pricing != nil {
		if err := s.Pricing.Validate(); err != nil {
			return nil, err
		}
	}

	return &Delivery{
		id:            s.ID,
		orderNumber:   s.OrderNumber,
		pickup:        s.Pickup,
		dropoff:       s.Dropoff,
		vehicleType:   s.VehicleType,
		pkg:           s.Package,
		priority:      s.Priority,
		nightDelivery: s.NightDelivery,
		pricing:       s.Pricing,
		courierID:     s.CourierID,
		status:        s.Status,
		version:       s.Version,
		timeline:      s.Timeline,
		cancelReason:  s.CancelReason,
		isConstructed: true,
	}, nil
}

// Snapshot returns the full persistent state of the delivery.
func (d *Delivery) Snapshot() Snapshot {
	return Snapshot{
		ID:            d.id,
		OrderNumber:   d.orderNumber,
		Pickup:        d.pickup,
		Dropoff:       d.dropoff,
		VehicleType:   d.vehicleType,
		Package:       d.pkg,
		Priority:      d.priority,
		NightDelivery: d.nightDelivery,
		Pricing:       d.pricing,
		CourierID:     d.courierID,
		Status:        d.status,
		Version:       d.version,
		Timeline:      d.timeline,
		CancelReason:  d.cancelReason,
	}
}

// Validate ensures the Delivery instance was properly constructed.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// IsEqual compares two deliveries by their unique identifiers.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID { return d.id }

// OrderNumber returns the human-readable unique order number.
func (d *Delivery) OrderNumber() string { return d.orderNumber }

// Pickup returns the pickup address.
func (d *Delivery) Pickup() Address { return d.pickup }

// Dropoff returns the dropoff address.
func (d *Delivery) Dropoff() Address { return d.dropoff }

// VehicleType returns the vehicle type required to carry this delivery.
func (d *Delivery) VehicleType() kernel.VehicleType { return d.vehicleType }

// Package returns the package attributes.
func (d *Delivery) Package() Package { return d.pkg }

// Priority returns the delivery priority.
func (d *Delivery) Priority() Priority { return d.priority }

// IsNightDelivery reports whether the night surcharge applies.
func (d *Delivery) IsNightDelivery() bool { return d.nightDelivery }

// Pricing returns the attached pricing breakdown, or nil before pricing.
func (d *Delivery) Pricing() *PricingBreakdown { return d.pricing }

// Courier returns the assigned courier's id, or nil if unassigned.
func (d *Delivery) Courier() *kernel.UUID { return d.courierID }

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status { return d.status }

// Version returns the optimistic concurrency counter.
func (d *Delivery) Version() int64 { return d.version }

// Timeline returns the append-only audit trail of transition timestamps.
func (d *Delivery) Timeline() Timeline { return d.timeline }

// CancelReason returns the recorded cancellation reason, empty if not cancelled.
func (d *Delivery) CancelReason() string { return d.cancelReason }

// AttachPricing embeds the computed price into a pending delivery.
// The breakdown can be attached exactly once; the quoted price is firm and
// never changes after the fact.
func (d *Delivery) AttachPricing(p PricingBreakdown) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if d.pricing != nil {
		return ErrPricingAlreadySet
	}
	if d.status != StatusPending {
		return fmt.Errorf("%w: %s -> priced", ErrIllegalTransition, d.status)
	}

	d.pricing = &p
	return nil
}

// Publish moves a priced pending delivery to Published, making it visible to
// the courier pool. System action.
func (d *Delivery) Publish(at time.Time) (DispatchEvent, error) {
	if err := d.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if d.pricing == nil {
		return DispatchEvent{}, ErrPricingNotSet
	}

	return d.transition(StatusPublished, SystemActor(), at, "")
}

// Claim assigns the delivery to the claiming courier, moving Published to
// Claimed. Exactly one of any number of concurrent claimers succeeds: the
// repository's conditional write rejects every copy that saw a stale version.
//
// Returns ErrAlreadyClaimed when the delivery moved past Published, and
// ErrAlreadyTerminal when it was cancelled or completed meanwhile.
func (d *Delivery) Claim(courierID kernel.UUID, at time.Time) (DispatchEvent, error) {
	if err := d.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if err := courierID.Validate(); err != nil {
		return DispatchEvent{}, err
	}

	switch {
	case d.status == StatusPublished:
		// claimable
	case d.status.IsTerminal():
		return DispatchEvent{}, fmt.Errorf("%w: %s", ErrAlreadyTerminal, d.status)
	case d.status.RequiresCourier():
		return DispatchEvent{}, fmt.Errorf("%w: courier %s", ErrAlreadyClaimed, d.courierID)
	default:
		return DispatchEvent{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, d.status, StatusClaimed)
	}

	event, err := d.transition(StatusClaimed, CourierActor(courierID), at, "")
	if err != nil {
		return DispatchEvent{}, err
	}

	d.courierID = &courierID
	return event, nil
}

// PickUp records that the assigned courier collected the package.
func (d *Delivery) PickUp(courierID kernel.UUID, at time.Time) (DispatchEvent, error) {
	return d.advanceByCourier(courierID, StatusPickedUp, at)
}

// StartTransit records that the assigned courier is en route to the dropoff.
func (d *Delivery) StartTransit(courierID kernel.UUID, at time.Time) (DispatchEvent, error) {
	return d.advanceByCourier(courierID, StatusInTransit, at)
}

// MarkDelivered records that the package reached the dropoff contact.
func (d *Delivery) MarkDelivered(courierID kernel.UUID, at time.Time) (DispatchEvent, error) {
	return d.advanceByCourier(courierID, StatusDelivered, at)
}

// Advance moves the delivery to the requested forward status on behalf of the
// assigned courier. Only PickedUp, InTransit, and Delivered are courier moves;
// anything else is an illegal transition.
func (d *Delivery) Advance(courierID kernel.UUID, target Status, at time.Time) (DispatchEvent, error) {
	switch target {
	case StatusPickedUp, StatusInTransit, StatusDelivered:
		return d.advanceByCourier(courierID, target, at)
	default:
		return DispatchEvent{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, d.status, target)
	}
}

// Complete finalizes a delivered record after proof-of-delivery.
// System or operator action; couriers cannot self-complete.
func (d *Delivery) Complete(actor Actor, at time.Time) (DispatchEvent, error) {
	if err := d.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if actor.Type() == ActorCourier {
		return DispatchEvent{}, fmt.Errorf("%w: courier cannot complete", ErrActorNotAllowed)
	}

	return d.transition(StatusCompleted, actor, at, "")
}

// Cancel terminates the delivery from any state prior to Delivered.
// Operator or system (expiry sweeper) action. The assignment and timeline are
// retained for audit. Cancelling a terminal record fails with
// ErrAlreadyTerminal; cancelling a delivered one is an illegal transition.
func (d *Delivery) Cancel(actor Actor, reason string, at time.Time) (DispatchEvent, error) {
	if err := d.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if actor.Type() == ActorCourier {
		return DispatchEvent{}, fmt.Errorf("%w: courier cannot cancel", ErrActorNotAllowed)
	}
	if d.status.IsTerminal() {
		return DispatchEvent{}, fmt.Errorf("%w: %s", ErrAlreadyTerminal, d.status)
	}

	event, err := d.transition(StatusCancelled, actor, at, reason)
	if err != nil {
		return DispatchEvent{}, err
	}

	d.cancelReason = reason
	return event, nil
}

// advanceByCourier performs a courier-only forward move, enforcing that the
// caller is the assigned courier.
func (d *Delivery) advanceByCourier(courierID kernel.UUID, target Status, at time.Time) (DispatchEvent, error) {
	if err := d.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if err := courierID.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if d.courierID == nil || !d.courierID.IsEqual(courierID) {
		return DispatchEvent{}, ErrNotAssignedCourier
	}

	return d.transition(target, CourierActor(courierID), at, "")
}

// transition applies a table-checked status move: it bumps the version,
// stamps the target's timestamp, and returns the resulting DispatchEvent.
// On failure the record is left byte-for-byte unchanged.
func (d *Delivery) transition(to Status, actor Actor, at time.Time, reason string) (DispatchEvent, error) {
	if err := actor.Validate(); err != nil {
		return DispatchEvent{}, err
	}
	if at.IsZero() {
		return DispatchEvent{}, errs.NewValueIsRequiredError("at")
	}

	from := d.status
	if !from.CanTransitionTo(to) {
		return DispatchEvent{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	d.status = to
	d.version++
	d.stamp(to, at)

	return newDispatchEvent(d, from, actor, at, reason), nil
}

// stamp records the timestamp for an accepted transition.
// Timestamps are append-only: once set they are never overwritten.
func (d *Delivery) stamp(to Status, at time.Time) {
	set := func(field **time.Time) {
		if *field == nil {
			t := at
			*field = &t
		}
	}

	switch to {
	case StatusPublished:
		set(&d.timeline.PublishedAt)
	case StatusClaimed:
		set(&d.timeline.ClaimedAt)
	case StatusPickedUp:
		set(&d.timeline.PickedUpAt)
	case StatusInTransit:
		set(&d.timeline.InTransitAt)
	case StatusDelivered:
		set(&d.timeline.DeliveredAt)
	case StatusCompleted:
		set(&d.timeline.CompletedAt)
	case StatusCancelled:
		set(&d.timeline.CancelledAt)
	case StatusUnknown, StatusPending:
		// no transition stamps these states
	}
}
