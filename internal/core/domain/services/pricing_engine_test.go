package services_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedDistanceProvider always answers with the same distance.
type fixedDistanceProvider struct {
	km decimal.Decimal
}

func (p fixedDistanceProvider) DistanceKm(_ context.Context, _, _ kernel.GeoPoint) (decimal.Decimal, error) {
	return p.km, nil
}

// failingDistanceProvider simulates the routing service being down.
type failingDistanceProvider struct{}

func (failingDistanceProvider) DistanceKm(_ context.Context, _, _ kernel.GeoPoint) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("routing unavailable")
}

func testZones() map[string]services.ZoneTariff {
	return map[string]services.ZoneTariff{
		"Damascus": {
			BasePrice:  decimal.NewFromInt(50),
			PricePerKm: decimal.NewFromInt(4),
		},
		"Rural Damascus": {
			BasePrice:  decimal.NewFromInt(40),
			PricePerKm: decimal.NewFromInt(6),
		},
	}
}

func addressIn(t *testing.T, zone string, lat, lon float64) delivery.Address {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	addr, err := delivery.NewAddress("1 Test St", zone, "Contact", "+963-11-555-0100", point)
	require.NoError(t, err)
	return addr
}

func TestPricingEngine_ComputePrice(t *testing.T) {
	vatRate := decimal.RequireFromString("0.15")
	nightFee := decimal.NewFromInt(25)
	courierShare := decimal.RequireFromString("0.70")

	pickup := addressIn(t, "Damascus", 33.5138, 36.2765)
	dropoff := addressIn(t, "Rural Damascus", 33.5730, 36.4027)

	t.Run("cross-zone daytime car scenario", func(t *testing.T) {
		// 12.4 km cross-zone: base = max(50, 40), per-km = avg(4, 6) = 5
		engine, err := services.NewPricingEngine(testZones(), vatRate, nightFee, courierShare,
			fixedDistanceProvider{km: decimal.RequireFromString("12.4")})
		require.NoError(t, err)

		breakdown, err := engine.ComputePrice(context.Background(), pickup, dropoff, false)
		require.NoError(t, err)

		assert.True(t, breakdown.BasePrice().Equal(decimal.NewFromInt(50)), breakdown.BasePrice().String())
		assert.True(t, breakdown.DistanceFee().Equal(decimal.NewFromInt(62)), breakdown.DistanceFee().String())
		assert.True(t, breakdown.NightSurcharge().IsZero())
		assert.True(t, breakdown.FinalPrice().Equal(decimal.NewFromInt(112)), breakdown.FinalPrice().String())
		assert.True(t, breakdown.VAT().Equal(decimal.RequireFromString("16.80")), breakdown.VAT().String())
		assert.True(t, breakdown.CourierEarnings().Equal(decimal.RequireFromString("78.40")))
		assert.True(t, breakdown.CompanyEarnings().Equal(decimal.RequireFromString("33.60")))
		assert.Equal(t, delivery.DistanceSourceRouting, breakdown.DistanceSource())
	})

	t.Run("same zone uses that zone's tariff", func(t *testing.T) {
		engine, err := services.NewPricingEngine(testZones(), vatRate, nightFee, courierShare,
			fixedDistanceProvider{km: decimal.NewFromInt(10)})
		require.NoError(t, err)

		sameZoneDropoff := addressIn(t, "Damascus", 33.5200, 36.3100)
		breakdown, err := engine.ComputePrice(context.Background(), pickup, sameZoneDropoff, false)
		require.NoError(t, err)

		assert.True(t, breakdown.BasePrice().Equal(decimal.NewFromInt(50)))
		assert.True(t, breakdown.DistanceFee().Equal(decimal.NewFromInt(40)))
		assert.True(t, breakdown.FinalPrice().Equal(decimal.NewFromInt(90)))
	})

	t.Run("night delivery adds the flat surcharge", func(t *testing.T) {
		engine, err := services.NewPricingEngine(testZones(), vatRate, nightFee, courierShare,
			fixedDistanceProvider{km: decimal.RequireFromString("12.4")})
		require.NoError(t, err)

		breakdown, err := engine.ComputePrice(context.Background(), pickup, dropoff, true)
		require.NoError(t, err)

		assert.True(t, breakdown.NightSurcharge().Equal(nightFee))
		assert.True(t, breakdown.FinalPrice().Equal(decimal.NewFromInt(137)))
	})

	t.Run("routing failure falls back to straight line", func(t *testing.T) {
		engine, err := services.NewPricingEngine(testZones(), vatRate, nightFee, courierShare,
			failingDistanceProvider{})
		require.NoError(t, err)

		breakdown, err := engine.ComputePrice(context.Background(), pickup, dropoff, false)
		require.NoError(t, err)

		assert.Equal(t, delivery.DistanceSourceStraightLine, breakdown.DistanceSource())

		straightKm, err := pickup.Point().DistanceKm(dropoff.Point())
		require.NoError(t, err)
		straight := decimal.NewFromFloat(straightKm).Round(2)
		assert.True(t, breakdown.DistanceKm().Equal(straight))
	})

	t.Run("nil provider always uses straight line", func(t *testing.T) {
		engine, err := services.NewPricingEngine(testZones(), vatRate, nightFee, courierShare, nil)
		require.NoError(t, err)

		breakdown, err := engine.ComputePrice(context.Background(), pickup, dropoff, false)
		require.NoError(t, err)
		assert.Equal(t, delivery.DistanceSourceStraightLine, breakdown.DistanceSource())
	})

	t.Run("unknown zone fails", func(t *testing.T) {
		engine, err := services.NewPricingEngine(testZones(), vatRate, nightFee, courierShare,
			fixedDistanceProvider{km: decimal.NewFromInt(10)})
		require.NoError(t, err)

		unknown := addressIn(t, "Homs", 34.7324, 36.7137)
		_, err = engine.ComputePrice(context.Background(), pickup, unknown, false)
		require.ErrorIs(t, err, services.ErrUnknownZone)

		_, err = engine.ComputePrice(context.Background(), unknown, dropoff, false)
		require.ErrorIs(t, err, services.ErrUnknownZone)
	})
}

func TestNewPricingEngine_Validation(t *testing.T) {
	vatRate := decimal.RequireFromString("0.15")
	share := decimal.RequireFromString("0.70")

	t.Run("rejects empty zone table", func(t *testing.T) {
		_, err := services.NewPricingEngine(nil, vatRate, decimal.Zero, share, nil)
		require.ErrorIs(t, err, services.ErrNoZonesConfigured)
	})

	t.Run("rejects negative tariff", func(t *testing.T) {
		zones := map[string]services.ZoneTariff{
			"Damascus": {BasePrice: decimal.NewFromInt(-1), PricePerKm: decimal.NewFromInt(4)},
		}
		_, err := services.NewPricingEngine(zones, vatRate, decimal.Zero, share, nil)
		require.ErrorIs(t, err, services.ErrInvalidRate)
	})

	t.Run("rejects vat rate above one", func(t *testing.T) {
		_, err := services.NewPricingEngine(testZones(), decimal.NewFromInt(2), decimal.Zero, share, nil)
		require.ErrorIs(t, err, services.ErrInvalidRate)
	})

	t.Run("rejects courier share above one", func(t *testing.T) {
		_, err := services.NewPricingEngine(testZones(), vatRate, decimal.Zero, decimal.NewFromInt(2), nil)
		require.ErrorIs(t, err, services.ErrInvalidRate)
	})
}

// TestPricingEngine_Additivity checks that the breakdown sums hold exactly
// over a large randomized input space, with no rounding drift.
func TestPricingEngine_Additivity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	zones := map[string]services.ZoneTariff{}
	zoneNames := []string{"A", "B", "C", "D", "E"}
	for _, name := range zoneNames {
		zones[name] = services.ZoneTariff{
			BasePrice:  decimal.NewFromInt(int64(20 + rng.Intn(80))),
			PricePerKm: decimal.NewFromFloat(float64(rng.Intn(900)+100) / 100.0).Round(2),
		}
	}

	engine, err := services.NewPricingEngine(
		zones,
		decimal.RequireFromString("0.15"),
		decimal.NewFromInt(25),
		decimal.RequireFromString("0.70"),
		nil)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		pickup := addressIn(t, zoneNames[rng.Intn(len(zoneNames))],
			rng.Float64()*180-90, rng.Float64()*360-180)
		dropoff := addressIn(t, zoneNames[rng.Intn(len(zoneNames))],
			rng.Float64()*180-90, rng.Float64()*360-180)

		breakdown, err := engine.ComputePrice(context.Background(), pickup, dropoff, rng.Intn(2) == 0)
		require.NoError(t, err)

		sum := breakdown.BasePrice().
			Add(breakdown.DistanceFee()).
			Add(breakdown.NightSurcharge())
		require.True(t, breakdown.FinalPrice().Equal(sum),
			"final %s != %s", breakdown.FinalPrice(), sum)

		split := breakdown.CourierEarnings().Add(breakdown.CompanyEarnings())
		require.True(t, breakdown.FinalPrice().Equal(split),
			"split %s != %s", split, breakdown.FinalPrice())
	}
}
