package delivery

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// DistanceSource records which provider produced the distance a pricing
// breakdown is based on. The fallback is deliberate and visible, never silent.
type DistanceSource string

const (
	// DistanceSourceRouting means the distance came from the routing provider.
	DistanceSourceRouting DistanceSource = "routing"

	// DistanceSourceStraightLine means the routing provider was unavailable and
	// the deterministic haversine fallback was used.
	DistanceSourceStraightLine DistanceSource = "straight_line"
)

// ErrPricingIsNotConstructed is returned when a PricingBreakdown was not
// created via NewPricingBreakdown.
var ErrPricingIsNotConstructed = errs.NewValueIsRequiredError(
	"pricing breakdown must be created via NewPricingBreakdown constructor")

// PricingBreakdown is the value object holding the firm price of a delivery.
// All amounts are fixed-point decimals; the constructor enforces the additive
// invariants exactly, with no floating-point drift:
//
//	finalPrice      == basePrice + distanceFee + nightSurcharge
//	courierEarnings + companyEarnings == finalPrice
//	vat             is additive on top of finalPrice, never subtracted from it
//
// A breakdown is computed once by the pricing engine and embedded into the
// delivery before publication; it never changes after the fact.
type PricingBreakdown struct {
	basePrice       decimal.Decimal
	distanceFee     decimal.Decimal
	nightSurcharge  decimal.Decimal
	vat             decimal.Decimal
	finalPrice      decimal.Decimal
	courierEarnings decimal.Decimal
	companyEarnings decimal.Decimal

	distanceKm     decimal.Decimal
	distanceSource DistanceSource

	guard guard.ConstructorGuard
}

// NewPricingBreakdown creates a validated PricingBreakdown.
// Returns an error if any amount is negative, if the final price does not
// equal the sum of its parts, or if the earnings split does not sum to the
// final price.
func NewPricingBreakdown(
	basePrice, distanceFee, nightSurcharge, vat, finalPrice, courierEarnings, companyEarnings decimal.Decimal,
	distanceKm decimal.Decimal,
	distanceSource DistanceSource,
) (PricingBreakdown, error) {
	for name, v := range map[string]decimal.Decimal{
		"basePrice":       basePrice,
		"distanceFee":     distanceFee,
		"nightSurcharge":  nightSurcharge,
		"vat":             vat,
		"finalPrice":      finalPrice,
		"courierEarnings": courierEarnings,
		"companyEarnings": companyEarnings,
		"distanceKm":      distanceKm,
	} {
		if v.IsNegative() {
			return PricingBreakdown{}, errs.NewValueIsInvalidErrorWithCause(
				name, errors.New("amount must not be negative"))
		}
	}

	if sum := basePrice.Add(distanceFee).Add(nightSurcharge); !finalPrice.Equal(sum) {
		return PricingBreakdown{}, errs.NewValueIsInvalidErrorWithCause("finalPrice",
			fmt.Errorf("%s does not equal basePrice+distanceFee+nightSurcharge=%s", finalPrice, sum))
	}

	if split := courierEarnings.Add(companyEarnings); !finalPrice.Equal(split) {
		return PricingBreakdown{}, errs.NewValueIsInvalidErrorWithCause("courierEarnings",
			fmt.Errorf("earnings split %s does not sum to final price %s", split, finalPrice))
	}

	if distanceSource != DistanceSourceRouting && distanceSource != DistanceSourceStraightLine {
		return PricingBreakdown{}, errs.NewValueIsInvalidError("distanceSource")
	}

	return PricingBreakdown{
		basePrice:       basePrice,
		distanceFee:     distanceFee,
		nightSurcharge:  nightSurcharge,
		vat:             vat,
		finalPrice:      finalPrice,
		courierEarnings: courierEarnings,
		companyEarnings: companyEarnings,
		distanceKm:      distanceKm,
		distanceSource:  distanceSource,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the breakdown was created through NewPricingBreakdown.
func (p PricingBreakdown) Validate() error {
	return p.guard.Validate(ErrPricingIsNotConstructed)
}

// BasePrice returns the zone base price component.
func (p PricingBreakdown) BasePrice() decimal.Decimal { return p.basePrice }

// DistanceFee returns the distance-proportional component.
func (p PricingBreakdown) DistanceFee() decimal.Decimal { return p.distanceFee }

// NightSurcharge returns the flat night delivery component (zero for daytime).
func (p PricingBreakdown) NightSurcharge() decimal.Decimal { return p.nightSurcharge }

// VAT returns the tax amount, additive on top of the final price.
func (p PricingBreakdown) VAT() decimal.Decimal { return p.vat }

// FinalPrice returns the firm price quoted to the requester, before VAT.
func (p PricingBreakdown) FinalPrice() decimal.Decimal { return p.finalPrice }

// CourierEarnings returns the courier's share of the final price.
func (p PricingBreakdown) CourierEarnings() decimal.Decimal { return p.courierEarnings }

// CompanyEarnings returns the company's share of the final price.
func (p PricingBreakdown) CompanyEarnings() decimal.Decimal { return p.companyEarnings }

// DistanceKm returns the distance the fee was computed from.
func (p PricingBreakdown) DistanceKm() decimal.Decimal { return p.distanceKm }

// DistanceSource returns which provider produced the distance.
func (p PricingBreakdown) DistanceSource() DistanceSource { return p.distanceSource }
