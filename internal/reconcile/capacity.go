package reconcile

// Tier buckets tournament fill level for presentation emphasis.
type Tier int

const (
	TierPlenty Tier = iota
	TierLow
	TierCritical
	TierFull
)

const (
	lowFillRatio      = 0.75
	criticalFillRatio = 0.90
	lowCapacitySlots  = 5
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierCritical:
		return "critical"
	case TierFull:
		return "full"
	default:
		return "plenty"
	}
}

// TierFor computes the capacity tier of a tournament state snapshot.
func TierFor(s Snapshot) Tier {
	if full, _ := s.Bool("is_full"); full {
		return TierFull
	}
	available, hasAvailable := s.Int("available_slots")
	if hasAvailable && available <= 0 {
		return TierFull
	}
	maxTeams, ok := s.Int("max_teams")
	if !ok || maxTeams <= 0 {
		return TierPlenty
	}

	filled, ok := s.Int("registered_count")
	if hasAvailable {
		filled = maxTeams - available
	} else if !ok {
		return TierPlenty
	}

	ratio := float64(filled) / float64(maxTeams)
	switch {
	case ratio >= 1:
		return TierFull
	case ratio >= criticalFillRatio:
		return TierCritical
	case ratio >= lowFillRatio:
		return TierLow
	default:
		return TierPlenty
	}
}

// CapacitySignals derives capacity signals for tournament state snapshots.
// LowCapacityWarning only accompanies a capacity movement, or the first
// cycle when there is nothing to compare against; other field changes never
// repeat it.
func CapacitySignals(prev Snapshot, next Snapshot) []Signal {
	moved := prev != nil && (intChanged(prev, next, "registered_count") || intChanged(prev, next, "available_slots"))
	if prev != nil && !moved {
		return nil
	}

	var signals []Signal
	if moved {
		signals = append(signals, Signal{Kind: CapacityChanged, Tier: TierFor(next)})
	}
	if slots, ok := next.Int("available_slots"); ok && slots > 0 && slots <= lowCapacitySlots {
		signals = append(signals, Signal{Kind: LowCapacityWarning, Tier: TierFor(next), Slots: slots})
	}
	return signals
}

func intChanged(prev, next Snapshot, key string) bool {
	a, okA := prev.Int(key)
	b, okB := next.Int(key)
	return okA != okB || a != b
}
