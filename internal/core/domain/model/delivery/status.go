package delivery

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery.
// It implements a state machine with a single transition table so there is
// exactly one source of truth for "where is this delivery" - no parallel flags.
//
// State transitions:
//
//	Pending ──> Published ──> Claimed ──> PickedUp ──> InTransit ──> Delivered ──> Completed
//	   │            │            │            │            │
//	   └────────────┴────────────┴────────────┴────────────┴──────> Cancelled
//
// Completed and Cancelled are terminal; records in those states are retained
// for audit and never deleted.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending is the initial status: the delivery exists but has not
	// been priced and published to the courier pool yet.
	StatusPending

	// StatusPublished means the delivery is visible to eligible couriers
	// and open for claiming. Only published deliveries can be claimed.
	StatusPublished

	// StatusClaimed means exactly one courier has won the claim race and
	// is now the assigned executor.
	StatusClaimed

	// StatusPickedUp means the assigned courier has collected the package.
	StatusPickedUp

	// StatusInTransit means the package is on its way to the dropoff.
	StatusInTransit

	// StatusDelivered means the package reached the dropoff contact.
	// Awaiting proof-of-delivery confirmation before completion.
	StatusDelivered

	// StatusCompleted is the terminal success state, entered after
	// proof-of-delivery. No further transitions are allowed.
	StatusCompleted

	// StatusCancelled is the terminal failure state, entered by operator
	// cancellation or by the expiry sweeper. No further transitions are allowed.
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "Unknown",
		StatusPending:   "Pending",
		StatusPublished: "Published",
		StatusClaimed:   "Claimed",
		StatusPickedUp:  "PickedUp",
		StatusInTransit: "InTransit",
		StatusDelivered: "Delivered",
		StatusCompleted: "Completed",
		StatusCancelled: "Cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:   "Pending",
		StatusPublished: "Published",
		StatusClaimed:   "Claimed",
		StatusPickedUp:  "PickedUp",
		StatusInTransit: "InTransit",
		StatusDelivered: "Delivered",
		StatusCompleted: "Completed",
		StatusCancelled: "Cancelled",
	}
}

// statusTransitions is the single table of legal moves. Actor legality
// (assigned courier only, operator cancel, system publish) is enforced by the
// Delivery aggregate on top of this table.
func statusTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:   {StatusPublished, StatusCancelled},
		StatusPublished: {StatusClaimed, StatusCancelled},
		StatusClaimed:   {StatusPickedUp, StatusCancelled},
		StatusPickedUp:  {StatusInTransit, StatusCancelled},
		StatusInTransit: {StatusDelivered, StatusCancelled},
		StatusDelivered: {StatusCompleted},
	}
}

// StatusFromString parses a status from its string name.
// Matching is exact against the names returned by String.
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// StatusUnknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// This method implements the fmt.Stringer interface and is safe
// to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the transition table allows moving from
// this status to the target. Any pair not in the table is illegal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// RequiresCourier reports whether a delivery in this status must have an
// assigned courier. The assignment invariant is:
// courier assigned ⇔ status ∈ {Claimed, PickedUp, InTransit, Delivered, Completed}.
func (s Status) RequiresCourier() bool {
	switch s {
	case StatusClaimed, StatusPickedUp, StatusInTransit, StatusDelivered, StatusCompleted:
		return true
	default:
		return false
	}
}

// ValidateCanHaveCourier validates the consistency between delivery status and
// courier assignment, enforcing the assignment invariant in both directions.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && !s.RequiresCourier() && s != StatusCancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have a courier", s.String()),
		)
	}

	if !courier && s.RequiresCourier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have no courier", s.String()),
		)
	}

	return nil
}
