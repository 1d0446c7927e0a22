package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetCourierBoardQueryIsNotConstructed = errors.New(
	"GetCourierBoardQuery must be created via NewGetCourierBoardQuery constructor",
)

// GetCourierBoardQuery retrieves the courier roster with each courier's
// current delivery load for the operator board.
type GetCourierBoardQuery struct {
	guard guard.ConstructorGuard
}

// NewGetCourierBoardQuery creates a query for the courier board.
func NewGetCourierBoardQuery() GetCourierBoardQuery {
	return GetCourierBoardQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetCourierBoardQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierBoardQueryIsNotConstructed)
}

// GetCourierBoardQueryResponse is one row of the courier board.
type GetCourierBoardQueryResponse struct {
	ID             kernel.UUID
	Name           string
	VehicleType    string
	Active         bool
	Available      bool
	Rating         float64
	CompletedCount int
	AssignedCount  int
	// CurrentLoad counts deliveries the courier is executing right now.
	CurrentLoad int
}
