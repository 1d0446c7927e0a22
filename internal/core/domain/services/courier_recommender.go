package services

import (
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
)

const (
	defaultRatingWeight     = 0.5
	defaultCompletionWeight = 0.3
	defaultProximityWeight  = 0.2

	// ratingScale normalizes the 0 to 5 rating into 0 to 1.
	ratingScale = 5.0
)

// Recommendation pairs a candidate courier with its computed score.
type Recommendation struct {
	Courier *courier.Courier
	Score   float64
}

// CourierRecommender is a domain service that ranks candidate couriers for a
// published delivery. The ranking is a suggestion and broadcast-ordering aid
// only; it never mutates assignment state.
//
// Score = ratingWeight * normalized rating
//   - completionWeight * completion rate
//   - proximityWeight * inverse pickup distance (capped at 1)
//
// The ranking is deterministic for identical inputs; ties are broken by
// courier id.
type CourierRecommender struct {
	ratingWeight     float64
	completionWeight float64
	proximityWeight  float64
}

// NewCourierRecommender creates a CourierRecommender with the default weights.
func NewCourierRecommender() CourierRecommender {
	return CourierRecommender{
		ratingWeight:     defaultRatingWeight,
		completionWeight: defaultCompletionWeight,
		proximityWeight:  defaultProximityWeight,
	}
}

// Recommend ranks the candidates for the delivery, best first.
// Candidates that are unavailable or operate the wrong vehicle type are
// filtered out; an empty result is not an error.
func (r CourierRecommender) Recommend(
	subject *delivery.Delivery,
	candidates []*courier.Courier,
) ([]Recommendation, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
		if !candidate.IsAvailable() || candidate.VehicleType() != subject.VehicleType() {
			continue
		}
		score, err := r.score(subject, candidate)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, Recommendation{
			Courier: candidate,
			Score:   score,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].Courier.ID().String() < recommendations[j].Courier.ID().String()
	})

	return recommendations, nil
}

func (r CourierRecommender) score(subject *delivery.Delivery, candidate *courier.Courier) (float64, error) {
	rating := candidate.Rating() / ratingScale
	completion := candidate.CompletionRate()

	// 1/(1+d) keeps the proximity contribution in (0, 1] and caps how much
	// a courier standing on the pickup point can outweigh track record.
	distanceKm, err := candidate.Location().DistanceKm(subject.Pickup().Point())
	if err != nil {
		return 0, err
	}
	proximity := 1.0 / (1.0 + distanceKm)

	return r.ratingWeight*rating + r.completionWeight*completion + r.proximityWeight*proximity, nil
}
