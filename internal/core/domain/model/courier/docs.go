// Package courier contains the courier directory aggregate.
//
// A Courier is the dispatch-side profile of a delivery agent: identity,
// vehicle class, availability, last reported position, and the assignment
// and completion counters the recommendation scoring is built on. The
// aggregate owns its invariants; callers mutate it only through the
// exported operations.
package courier
