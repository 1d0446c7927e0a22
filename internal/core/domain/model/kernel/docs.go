// Package kernel provides core domain primitives shared by every aggregate in
// the dispatch system. It implements fundamental building blocks following
// Domain-Driven Design principles.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison capabilities
//   - GeoPoint: A validated WGS84 coordinate pair with haversine distance
//   - VehicleType: The transport classification shared by deliveries and couriers
//
// These primitives enforce domain invariants and validation rules, ensuring that
// domain objects are always in a valid state. They are designed to be immutable
// and thread-safe, making them suitable for concurrent use.
package kernel
