// Package errs provides standardized error types for the dispatch core.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping used across the domain model, the use cases, and the adapters.
//
// The package covers the recurring failure scenarios:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is malformed
//   - ValueIsOutOfRangeError: a numeric value is outside its bounds
//   - ObjectNotFoundError: a delivery or courier cannot be found
//   - VersionIsInvalidError: an aggregate carries an impossible version
//   - ConcurrencyConflictError: an optimistic write lost its version race
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is matches the sentinel
//
// The sentinels are what callers branch on: the HTTP adapter maps them to
// status codes and the claim and sweep handlers use ErrConcurrencyConflict
// to detect lost races.
package errs
