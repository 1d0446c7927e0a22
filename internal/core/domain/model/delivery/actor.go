package delivery

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ActorType identifies who is requesting a lifecycle transition.
// The state machine uses it to enforce actor legality: couriers may only
// advance deliveries assigned to them, operators may cancel, and the system
// publishes, completes, and sweeps.
type ActorType int

const (
	// ActorUnknown represents an invalid or undefined actor.
	ActorUnknown ActorType = iota

	// ActorSystem is the dispatch core itself (publication, expiry sweep).
	ActorSystem

	// ActorOperator is a human dispatcher acting through the admin surface.
	ActorOperator

	// ActorCourier is an assigned or claiming courier.
	ActorCourier
)

func getActorTypeStrings() map[ActorType]string {
	return map[ActorType]string{
		ActorUnknown:  "Unknown",
		ActorSystem:   "System",
		ActorOperator: "Operator",
		ActorCourier:  "Courier",
	}
}

// ActorTypeFromString parses an actor type from its string name.
func ActorTypeFromString(s string) (ActorType, error) {
	for at, name := range getActorTypeStrings() {
		if at != ActorUnknown && name == s {
			return at, nil
		}
	}
	return ActorUnknown, errs.NewValueIsInvalidError("actorType")
}

// Validate checks if the ActorType value is valid.
func (a ActorType) Validate() error {
	switch a {
	case ActorSystem, ActorOperator, ActorCourier:
		return nil
	default:
		return errs.NewValueIsInvalidError("actorType")
	}
}

// String returns the human-readable name of the actor type.
func (a ActorType) String() string {
	if str, ok := getActorTypeStrings()[a]; ok {
		return str
	}
	return "Unknown"
}

// Actor is the identity requesting a transition: a type plus, for couriers
// and operators, their id. System actions carry no id.
type Actor struct {
	actorType ActorType
	id        *kernel.UUID
}

// SystemActor returns the actor representing the dispatch core itself.
func SystemActor() Actor {
	return Actor{actorType: ActorSystem}
}

// OperatorActor returns an actor for a human dispatcher.
func OperatorActor(id kernel.UUID) Actor {
	return Actor{actorType: ActorOperator, id: &id}
}

// CourierActor returns an actor for a courier.
func CourierActor(id kernel.UUID) Actor {
	return Actor{actorType: ActorCourier, id: &id}
}

// Type returns the actor's type.
func (a Actor) Type() ActorType {
	return a.actorType
}

// ID returns the actor's id, or nil for system actions.
func (a Actor) ID() *kernel.UUID {
	return a.id
}

// Validate checks the actor carries a valid type, and an id when the type requires one.
func (a Actor) Validate() error {
	if err := a.actorType.Validate(); err != nil {
		return err
	}
	if a.actorType != ActorSystem {
		if a.id == nil {
			return errs.NewValueIsRequiredError("actorId")
		}
		return a.id.Validate()
	}
	return nil
}
