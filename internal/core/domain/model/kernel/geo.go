package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// GeoMinLatitude is the minimum valid latitude in degrees.
	GeoMinLatitude = -90.0
	// GeoMaxLatitude is the maximum valid latitude in degrees.
	GeoMaxLatitude = 90.0
	// GeoMinLongitude is the minimum valid longitude in degrees.
	GeoMinLongitude = -180.0
	// GeoMaxLongitude is the maximum valid longitude in degrees.
	GeoMaxLongitude = 180.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0088
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly initialized GeoPoint.
// GeoPoints must be created using the NewGeoPoint constructor to ensure validity.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a geographic position as validated WGS84 coordinates.
// GeoPoint is an immutable value object; the zero value is invalid and will
// fail validation - use NewGeoPoint to create instances.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(33.5138, 36.2765)
//	if err != nil {
//	    // handle validation error
//	}
//	fmt.Println(p) // Output: GeoPoint(33.513800,36.276500)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from latitude and longitude in degrees.
// Latitude must lie in [-90, 90] and longitude in [-180, 180]; values outside
// those bounds (or NaN) produce a validation error.
func NewGeoPoint(lat float64, lon float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLon(lon)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks if the GeoPoint was properly constructed using the constructor.
// The zero value of GeoPoint is invalid and will fail this validation.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.lat
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.lon
}

// String returns a human-readable representation, "GeoPoint(lat,lon)".
// This method implements the fmt.Stringer interface.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lon)
}

// IsEqual compares two geo points for coordinate equality.
// Both points must be properly constructed for the comparison to succeed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lon == other.lon, nil
}

// DistanceKm calculates the great-circle distance to another point in
// kilometers using the haversine formula. This is the deterministic
// straight-line distance used when no routing provider is available.
// Both points must be properly constructed for the calculation to succeed.
//
// Example:
//
//	damascus, _ := kernel.NewGeoPoint(33.5138, 36.2765)
//	aleppo, _ := kernel.NewGeoPoint(36.2021, 37.1343)
//	km, _ := damascus.DistanceKm(aleppo) // ~310 km
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLon := (other.lon - p.lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// setLat sets the latitude with validation.
// Note: pointer receiver is intentional for self-encapsulated validation
// during object construction.
func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < GeoMinLatitude || lat > GeoMaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, GeoMinLatitude, GeoMaxLatitude)
	}

	p.lat = lat
	return nil
}

// setLon sets the longitude with validation.
func (p *GeoPoint) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < GeoMinLongitude || lon > GeoMaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lon, GeoMinLongitude, GeoMaxLongitude)
	}

	p.lon = lon
	return nil
}
