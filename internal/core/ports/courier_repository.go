package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves the active couriers open for new work that
	// operate the given vehicle type. Used by the recommender and the
	// claim eligibility check.
	GetAllAvailable(ctx context.Context, vehicleType kernel.VehicleType) ([]*courier.Courier, error)

	// GetAll retrieves every enrolled courier, deactivated ones included.
	GetAll(ctx context.Context) ([]*courier.Courier, error)
}
