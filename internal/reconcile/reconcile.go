package reconcile

// SignalKind names a derived condition emitted alongside a changed snapshot.
type SignalKind string

const (
	// CapacityChanged fires when registered_count or available_slots moved.
	CapacityChanged SignalKind = "CAPACITY_CHANGED"
	// LowCapacityWarning fires when available_slots is in (0, 5].
	LowCapacityWarning SignalKind = "LOW_CAPACITY_WARNING"
)

// Signal is a derived event computed from a previous/next snapshot pair.
type Signal struct {
	Kind  SignalKind
	Tier  Tier
	Slots int
}

// DeriveFunc computes signals for a changed cycle. prev is nil on the first cycle.
type DeriveFunc func(prev Snapshot, next Snapshot) []Signal

// Result is the outcome of one reconciliation.
type Result struct {
	Changed  bool
	Snapshot Snapshot
	Signals  []Signal
}

// Has reports whether the result carries a signal of the given kind.
func (r Result) Has(kind SignalKind) bool {
	_, ok := r.Signal(kind)
	return ok
}

// Signal returns the first signal of the given kind.
func (r Result) Signal(kind SignalKind) (Signal, bool) {
	for _, s := range r.Signals {
		if s.Kind == kind {
			return s, true
		}
	}
	return Signal{}, false
}

// Reconciler decides whether a newly received snapshot differs from the last
// applied one. The zero value compares snapshots and derives no signals.
type Reconciler struct {
	Derive DeriveFunc
}

// Reconcile compares prev against next. It never mutates its inputs and the
// returned snapshot is a copy of next.
func (r Reconciler) Reconcile(prev *Snapshot, next Snapshot) Result {
	if prev != nil && (*prev).Equal(next) {
		return Result{Changed: false, Snapshot: prev.Clone()}
	}

	res := Result{Changed: true, Snapshot: next.Clone()}
	if r.Derive != nil {
		var p Snapshot
		if prev != nil {
			p = prev.Clone()
		}
		res.Signals = r.Derive(p, next.Clone())
	}
	return res
}
