package services

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Pricing errors.
var (
	// ErrUnknownZone is returned when an address names a zone absent from the tariff table.
	ErrUnknownZone = errors.New("unknown pricing zone")
	// ErrNoZonesConfigured is returned when the engine is constructed with an empty tariff table.
	ErrNoZonesConfigured = errors.New("at least one pricing zone must be configured")
	// ErrInvalidRate is returned when a configured rate is outside its valid range.
	ErrInvalidRate = errors.New("pricing rate is out of range")
)

// ZoneTariff is the price configuration of one geographic zone.
type ZoneTariff struct {
	// BasePrice is the flat fee for any delivery starting or ending in the zone.
	BasePrice decimal.Decimal
	// PricePerKm is the per-kilometer rate applied to the travel distance.
	PricePerKm decimal.Decimal
}

// PricingEngine is a domain service that produces the immutable price
// breakdown attached to a delivery before publication.
//
// Pricing rules:
//   - Each zone carries a base price and a per-km rate; a cross-zone delivery
//     uses the higher base price and the average of the two per-km rates
//   - Distance comes from the routing provider; when it fails the engine
//     falls back to the deterministic straight-line distance and records the
//     fallback in the breakdown's DistanceSource
//   - Night deliveries add a flat surcharge
//   - VAT is additive on top of the final price, never carved out of it
//   - Earnings split: courier share of the final price, company keeps the rest
//
// All monetary arithmetic is fixed-point; amounts are rounded to two decimal
// places so the additive invariants hold exactly.
type PricingEngine struct {
	zones        map[string]ZoneTariff
	vatRate      decimal.Decimal
	nightFee     decimal.Decimal
	courierShare decimal.Decimal
	distances    ports.DistanceProvider
}

// NewPricingEngine creates a validated PricingEngine.
//
// Parameters:
//   - zones: tariff table keyed by zone name (must be non-empty)
//   - vatRate: additive tax rate, 0 to 1
//   - nightFee: flat surcharge for night deliveries (must not be negative)
//   - courierShare: courier fraction of the final price, 0 to 1
//   - distances: routing provider; may be nil, in which case every distance
//     is the straight-line fallback
func NewPricingEngine(
	zones map[string]ZoneTariff,
	vatRate decimal.Decimal,
	nightFee decimal.Decimal,
	courierShare decimal.Decimal,
	distances ports.DistanceProvider,
) (*PricingEngine, error) {
	if len(zones) == 0 {
		return nil, ErrNoZonesConfigured
	}
	for name, tariff := range zones {
		if tariff.BasePrice.IsNegative() || tariff.PricePerKm.IsNegative() {
			return nil, fmt.Errorf("%w: zone %q has a negative tariff", ErrInvalidRate, name)
		}
	}
	one := decimal.NewFromInt(1)
	if vatRate.IsNegative() || vatRate.GreaterThan(one) {
		return nil, fmt.Errorf("%w: vatRate %s", ErrInvalidRate, vatRate)
	}
	if nightFee.IsNegative() {
		return nil, fmt.Errorf("%w: nightFee %s", ErrInvalidRate, nightFee)
	}
	if courierShare.IsNegative() || courierShare.GreaterThan(one) {
		return nil, fmt.Errorf("%w: courierShare %s", ErrInvalidRate, courierShare)
	}

	return &PricingEngine{
		zones:        zones,
		vatRate:      vatRate,
		nightFee:     nightFee,
		courierShare: courierShare,
		distances:    distances,
	}, nil
}

// ComputePrice builds the full price breakdown for a delivery between the two
// addresses. Fails with ErrUnknownZone when either address names a zone the
// engine is not configured for.
func (e *PricingEngine) ComputePrice(
	ctx context.Context,
	pickup delivery.Address,
	dropoff delivery.Address,
	nightDelivery bool,
) (delivery.PricingBreakdown, error) {
	pickupTariff, ok := e.zones[pickup.Zone()]
	if !ok {
		return delivery.PricingBreakdown{}, fmt.Errorf("%w: %q", ErrUnknownZone, pickup.Zone())
	}
	dropoffTariff, ok := e.zones[dropoff.Zone()]
	if !ok {
		return delivery.PricingBreakdown{}, fmt.Errorf("%w: %q", ErrUnknownZone, dropoff.Zone())
	}

	basePrice := pickupTariff.BasePrice
	pricePerKm := pickupTariff.PricePerKm
	if pickup.Zone() != dropoff.Zone() {
		basePrice = decimal.Max(pickupTariff.BasePrice, dropoffTariff.BasePrice)
		pricePerKm = pickupTariff.PricePerKm.Add(dropoffTariff.PricePerKm).
			Div(decimal.NewFromInt(2))
	}

	distanceKm, source, err := e.resolveDistance(ctx, pickup, dropoff)
	if err != nil {
		return delivery.PricingBreakdown{}, err
	}

	distanceFee := distanceKm.Mul(pricePerKm).Round(2)
	nightSurcharge := decimal.Zero
	if nightDelivery {
		nightSurcharge = e.nightFee
	}

	finalPrice := basePrice.Add(distanceFee).Add(nightSurcharge)
	vat := finalPrice.Mul(e.vatRate).Round(2)

	courierEarnings := finalPrice.Mul(e.courierShare).Round(2)
	companyEarnings := finalPrice.Sub(courierEarnings)

	return delivery.NewPricingBreakdown(
		basePrice, distanceFee, nightSurcharge, vat, finalPrice,
		courierEarnings, companyEarnings, distanceKm, source)
}

func (e *PricingEngine) resolveDistance(
	ctx context.Context,
	pickup delivery.Address,
	dropoff delivery.Address,
) (decimal.Decimal, delivery.DistanceSource, error) {
	if e.distances != nil {
		distance, err := e.distances.DistanceKm(ctx, pickup.Point(), dropoff.Point())
		if err == nil && !distance.IsNegative() {
			return distance.Round(2), delivery.DistanceSourceRouting, nil
		}
	}
	straight, err := pickup.Point().DistanceKm(dropoff.Point())
	if err != nil {
		return decimal.Zero, delivery.DistanceSourceStraightLine, err
	}
	return decimal.NewFromFloat(straight).Round(2), delivery.DistanceSourceStraightLine, nil
}
