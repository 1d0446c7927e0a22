package queries

import (
	"context"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RecommendCouriersQueryHandler loads the delivery and its candidate pool
// through the repositories and hands scoring to the domain recommender.
// Unlike the board queries this one reads full aggregates: the recommender
// works on domain state, not projection rows.
type RecommendCouriersQueryHandler struct {
	uowFactory  ports.UnitOfWorkFactory
	recommender services.CourierRecommender
}

// NewRecommendCouriersQueryHandler creates a handler for courier recommendations.
func NewRecommendCouriersQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	recommender services.CourierRecommender,
) (RecommendCouriersQueryHandler, error) {
	if uowFactory == nil {
		return RecommendCouriersQueryHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}

	return RecommendCouriersQueryHandler{
		uowFactory:  uowFactory,
		recommender: recommender,
	}, nil
}

// Handle ranks the available couriers for the delivery, best first.
func (h RecommendCouriersQueryHandler) Handle(
	ctx context.Context,
	query RecommendCouriersQuery,
) ([]RecommendCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()

	subject, err := uow.DeliveryRepository().Get(ctx, query.DeliveryID())
	if err != nil {
		return nil, err
	}

	candidates, err := uow.CourierRepository().GetAllAvailable(ctx, subject.VehicleType())
	if err != nil {
		return nil, err
	}

	ranked, err := h.recommender.Recommend(subject, candidates)
	if err != nil {
		return nil, err
	}

	responses := make([]RecommendCouriersQueryResponse, 0, len(ranked))
	for _, r := range ranked {
		responses = append(responses, RecommendCouriersQueryResponse{
			CourierID:      r.Courier.ID(),
			Name:           r.Courier.Name(),
			Score:          r.Score,
			Rating:         r.Courier.Rating(),
			CompletionRate: r.Courier.CompletionRate(),
		})
	}
	return responses, nil
}
