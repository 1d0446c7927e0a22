// Package delivery provides the central aggregate of the dispatch core: the
// Delivery, a single transport job tracked through a fixed lifecycle from
// creation to completion or cancellation.
//
// The package includes:
//   - Delivery: The aggregate root owning identity, pricing, assignment, and the version counter
//   - Status: A state machine enforcing the single legal-transition table
//   - PricingBreakdown: The fixed-point price value object with additive invariants
//   - Address, Package, Priority: Immutable-at-creation request value objects
//   - Actor, DispatchEvent: Who requested a transition and the fact it produced
//
// Key business rules:
//   - Status is the single source of truth for delivery progress; there are no parallel flags
//   - Every accepted transition increments the version counter and stamps an append-only timestamp
//   - A courier is assigned exactly when the status requires one
//   - Only the assigned courier may advance a delivery; operators cancel; the system publishes and sweeps
//   - Cancelled and Completed are terminal; records are never deleted
package delivery
