// Package reconcile decides whether a freshly received state snapshot
// differs from the last applied one.
//
// A Snapshot is always a full, self-contained payload; there is no delta
// format. Equality is structural: both sides are serialized with sorted keys
// and compared as strings, so key order in the wire payload never matters.
//
//	prev == nil            → Changed (first cycle always applies)
//	Canonical(prev) == Canonical(next) → unchanged, nothing downstream runs
//	otherwise              → Changed, Derive(prev, next) computes signals
//
// Reconciler is a pure value. It performs no I/O and never mutates its
// inputs, which keeps it testable without a renderer.
//
// Tournament state snapshots use CapacitySignals to emit CAPACITY_CHANGED
// and LOW_CAPACITY_WARNING, and TierFor to bucket fill level into
// plenty/low/critical/full.
package reconcile
