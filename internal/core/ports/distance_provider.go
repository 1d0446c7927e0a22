package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// DistanceProvider resolves the travel distance between two points in
// kilometers. Implementations may call an external routing service; callers
// fall back to straight-line distance when the provider fails, so
// implementations should return an error rather than a guess.
type DistanceProvider interface {
	DistanceKm(ctx context.Context, from, to kernel.GeoPoint) (decimal.Decimal, error)
}
