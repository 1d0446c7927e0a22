// Package services contains stateless domain services of the dispatch core.
//
// PricingEngine turns a pair of addresses into the immutable price breakdown
// a delivery is published with. CourierRecommender ranks candidate couriers
// for a published delivery without ever touching assignment state. Both are
// pure given their inputs; distance resolution is the only external call and
// degrades to a deterministic straight-line fallback.
package services
