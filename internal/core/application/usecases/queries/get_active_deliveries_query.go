// Package queries contains the read side of the dispatch core.
// Query handlers bypass the aggregates and read projection rows straight from
// the database, keeping the write-side repositories free of listing concerns.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
	"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
)

// GetActiveDeliveriesQuery retrieves every delivery in a non-terminal status
// for the operator board.
type GetActiveDeliveriesQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveDeliveriesQuery creates a query for active deliveries.
// This is a parameterless query.
func NewGetActiveDeliveriesQuery() GetActiveDeliveriesQuery {
	return GetActiveDeliveriesQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

// GetActiveDeliveriesQueryResponse is one row of the active delivery board.
type GetActiveDeliveriesQueryResponse struct {
	ID          kernel.UUID
	OrderNumber string
	Status      string
	Version     int64
	CourierID   *kernel.UUID
	PickupZone  string
	DropoffZone string
	FinalPrice  string
	CreatedAt   time.Time
}
