// Package ports defines the contracts between the dispatch core and
// infrastructure. These interfaces establish dependency inversion for
// persistence, distance resolution, and notification transport.
package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrDuplicateOrderNumber is returned by Add when the generated order number
// collides with an existing record. Callers regenerate the number and retry.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// DeliveryRepository defines the persistence contract for delivery aggregates.
// The delivery record is the single source of truth for the lifecycle; every
// write goes through the optimistic version predicate.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate to storage.
	// The delivery must be valid and not already exist in the repository.
	// A collision on the order number's unique index returns
	// ErrDuplicateOrderNumber.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate.
	// The write is conditional on the stored version being exactly one less
	// than the aggregate's version; a lost race returns
	// errs.ErrConcurrencyConflict and writes nothing.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetByOrderNumber retrieves a delivery by its human-facing order number.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*delivery.Delivery, error)

	// GetAllActive retrieves every delivery in a non-terminal status.
	GetAllActive(ctx context.Context) ([]*delivery.Delivery, error)

	// GetAllInStatusOlderThan retrieves deliveries that entered the given
	// status before the cutoff instant. Used by the expiry sweep to find
	// published records past their claim TTL.
	GetAllInStatusOlderThan(ctx context.Context, status delivery.Status, cutoff time.Time) ([]*delivery.Delivery, error)

	// GetAllByCourier retrieves the deliveries assigned to a courier.
	GetAllByCourier(ctx context.Context, courierID kernel.UUID) ([]*delivery.Delivery, error)
}
