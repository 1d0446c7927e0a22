package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRecommendCouriersQueryIsNotConstructed = errors.New(
	"RecommendCouriersQuery must be created via NewRecommendCouriersQuery constructor",
)

// RecommendCouriersQuery ranks the available couriers for one delivery.
// The ranking is an ordering aid for the operator board; claiming stays
// first-come-first-served regardless of what this query suggests.
type RecommendCouriersQuery struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRecommendCouriersQuery creates a recommendation query for the delivery.
func NewRecommendCouriersQuery(deliveryID kernel.UUID) (RecommendCouriersQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return RecommendCouriersQuery{}, err
	}

	return RecommendCouriersQuery{
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q RecommendCouriersQuery) Validate() error {
	return q.guard.Validate(ErrRecommendCouriersQueryIsNotConstructed)
}

// DeliveryID returns the delivery the candidates are ranked for.
func (q RecommendCouriersQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

// RecommendCouriersQueryResponse is one ranked candidate.
type RecommendCouriersQueryResponse struct {
	CourierID      kernel.UUID
	Name           string
	Score          float64
	Rating         float64
	CompletionRate float64
}
