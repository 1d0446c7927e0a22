package kernel

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// VehicleType classifies the transport required to carry a delivery and the
// transport a courier operates. A courier is only eligible to claim a delivery
// whose required vehicle type matches their own.
type VehicleType int

const (
	// VehicleUnknown represents an invalid or undefined vehicle type.
	// This value (0) helps catch uninitialized VehicleType values.
	VehicleUnknown VehicleType = iota

	// VehicleBike is a bicycle, suitable for small packages in dense areas.
	VehicleBike

	// VehicleMotorbike is a motorcycle, the default urban courier vehicle.
	VehicleMotorbike

	// VehicleCar is a passenger car for medium-sized packages.
	VehicleCar

	// VehicleVan is a van for bulky or multi-package deliveries.
	VehicleVan
)

func getVehicleTypeStrings() map[VehicleType]string {
	return map[VehicleType]string{
		VehicleUnknown:   "Unknown",
		VehicleBike:      "Bike",
		VehicleMotorbike: "Motorbike",
		VehicleCar:       "Car",
		VehicleVan:       "Van",
	}
}

func getValidVehicleTypeStrings() map[VehicleType]string {
	//nolint:exhaustive // VehicleUnknown is intentionally excluded as it's invalid
	return map[VehicleType]string{
		VehicleBike:      "Bike",
		VehicleMotorbike: "Motorbike",
		VehicleCar:       "Car",
		VehicleVan:       "Van",
	}
}

// VehicleTypeFromString parses a vehicle type from its string name.
// Matching is exact against the names returned by String.
func VehicleTypeFromString(s string) (VehicleType, error) {
	for vt, name := range getValidVehicleTypeStrings() {
		if name == s {
			return vt, nil
		}
	}
	return VehicleUnknown, errs.NewValueIsInvalidErrorWithCause(
		"vehicleType", fmt.Errorf("%q is not a valid vehicle type", s))
}

// Validate checks if the VehicleType value is valid.
// VehicleUnknown (0) and any other values are invalid.
func (v VehicleType) Validate() error {
	if _, ok := getValidVehicleTypeStrings()[v]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"vehicleType", fmt.Errorf("%d is not a valid vehicle type", v))
	}
	return nil
}

// String returns the human-readable name of the vehicle type.
// This method implements the fmt.Stringer interface and is safe to call
// on any VehicleType value, including invalid ones.
func (v VehicleType) String() string {
	if str, ok := getVehicleTypeStrings()[v]; ok {
		return str
	}
	return "Unknown"
}
