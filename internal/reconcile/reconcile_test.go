package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) Snapshot {
	t.Helper()
	s, err := ParseSnapshot([]byte(raw))
	require.NoError(t, err)
	return s
}

func TestReconcile_SameSnapshotIsUnchanged(t *testing.T) {
	s := mustParse(t, `{"unread_notifications": 3, "pending_follow_requests": 1}`)
	res := Reconciler{}.Reconcile(&s, s)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Signals)
}

func TestReconcile_FirstCycleAlwaysApplies(t *testing.T) {
	s := mustParse(t, `{}`)
	res := Reconciler{}.Reconcile(nil, s)
	assert.True(t, res.Changed)
	assert.Equal(t, s, res.Snapshot)
}

func TestReconcile_KeyOrderInsensitive(t *testing.T) {
	a := mustParse(t, `{"a": 1, "b": 2}`)
	b := mustParse(t, `{"b": 2, "a": 1}`)
	assert.False(t, Reconciler{}.Reconcile(&a, b).Changed)

	nestedA := mustParse(t, `{"x": {"p": 1, "q": [1, 2]}, "y": true}`)
	nestedB := mustParse(t, `{"y": true, "x": {"q": [1, 2], "p": 1}}`)
	assert.False(t, Reconciler{}.Reconcile(&nestedA, nestedB).Changed)
}

func TestReconcile_DetectsValueChange(t *testing.T) {
	a := mustParse(t, `{"phase": "registration"}`)
	b := mustParse(t, `{"phase": "check_in"}`)
	res := Reconciler{}.Reconcile(&a, b)
	assert.True(t, res.Changed)
	phase, _ := res.Snapshot.Text("phase")
	assert.Equal(t, "check_in", phase)
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	prev := mustParse(t, `{"available_slots": 6, "registered_count": 10}`)
	next := mustParse(t, `{"available_slots": 4, "registered_count": 12}`)
	prevCanon, nextCanon := prev.Canonical(), next.Canonical()

	res := Reconciler{Derive: CapacitySignals}.Reconcile(&prev, next)
	res.Snapshot["available_slots"] = "tampered"

	assert.Equal(t, prevCanon, prev.Canonical())
	assert.Equal(t, nextCanon, next.Canonical())
}

func TestCapacitySignals(t *testing.T) {
	tests := []struct {
		name     string
		prev     string
		next     string
		want     []SignalKind
		wantTier Tier
	}{
		{
			name:     "dropping into low capacity",
			prev:     `{"available_slots": 6, "registered_count": 10, "max_teams": 16}`,
			next:     `{"available_slots": 4, "registered_count": 12, "max_teams": 16}`,
			want:     []SignalKind{CapacityChanged, LowCapacityWarning},
			wantTier: TierLow,
		},
		{
			name: "plenty of room",
			prev: `{"available_slots": 20}`,
			next: `{"available_slots": 18}`,
			want: []SignalKind{CapacityChanged},
		},
		{
			name: "registered count only",
			prev: `{"registered_count": 3, "available_slots": 13}`,
			next: `{"registered_count": 4, "available_slots": 13}`,
			want: []SignalKind{CapacityChanged},
		},
		{
			name: "unrelated field",
			prev: `{"available_slots": 13, "phase": "registration"}`,
			next: `{"available_slots": 13, "phase": "check_in"}`,
			want: nil,
		},
		{
			name: "still low without movement",
			prev: `{"available_slots": 1, "max_teams": 16, "phase": "registration"}`,
			next: `{"available_slots": 1, "max_teams": 16, "phase": "check_in"}`,
			want: nil,
		},
		{
			name:     "low and shrinking",
			prev:     `{"available_slots": 3, "max_teams": 16}`,
			next:     `{"available_slots": 1, "max_teams": 16}`,
			want:     []SignalKind{CapacityChanged, LowCapacityWarning},
			wantTier: TierCritical,
		},
		{
			name: "zero slots is not a warning",
			prev: `{"available_slots": 1}`,
			next: `{"available_slots": 0}`,
			want: []SignalKind{CapacityChanged},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := mustParse(t, tt.prev)
			next := mustParse(t, tt.next)
			res := Reconciler{Derive: CapacitySignals}.Reconcile(&prev, next)
			require.True(t, res.Changed)

			var got []SignalKind
			for _, s := range res.Signals {
				got = append(got, s.Kind)
			}
			assert.Equal(t, tt.want, got)

			if warn, ok := res.Signal(LowCapacityWarning); ok {
				assert.Equal(t, tt.wantTier, warn.Tier)
				slots, _ := next.Int("available_slots")
				assert.Equal(t, slots, warn.Slots)
			}
		})
	}
}

func TestCapacitySignals_FirstCycleHasNoCapacityChanged(t *testing.T) {
	next := mustParse(t, `{"available_slots": 3, "max_teams": 8}`)
	res := Reconciler{Derive: CapacitySignals}.Reconcile(nil, next)
	assert.False(t, res.Has(CapacityChanged))
	assert.True(t, res.Has(LowCapacityWarning))
}

func TestCapacitySignals_CountdownDoesNotRepeatWarning(t *testing.T) {
	r := Reconciler{Derive: CapacitySignals}
	var prev *Snapshot
	warnings := 0
	for _, remaining := range []string{"5m", "4m", "3m", "2m"} {
		next := mustParse(t, `{"available_slots": 3, "max_teams": 16, "time_until_start": "`+remaining+`"}`)
		res := r.Reconcile(prev, next)
		require.True(t, res.Changed)
		if res.Has(LowCapacityWarning) {
			warnings++
		}
		assert.False(t, res.Has(CapacityChanged))
		prev = &res.Snapshot
	}
	assert.Equal(t, 1, warnings, "only the first cycle should warn")
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		raw  string
		want Tier
	}{
		{`{"is_full": true}`, TierFull},
		{`{"available_slots": 0, "max_teams": 16}`, TierFull},
		{`{"available_slots": 12, "max_teams": 16}`, TierPlenty},
		{`{"available_slots": 4, "max_teams": 16}`, TierLow},
		{`{"available_slots": 1, "max_teams": 16}`, TierCritical},
		{`{"registered_count": 15, "max_teams": 16}`, TierCritical},
		{`{"registered_count": 15}`, TierPlenty},
		{`{}`, TierPlenty},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(mustParse(t, tt.raw)))
		})
	}
}

func TestParseSnapshot_Errors(t *testing.T) {
	_, err := ParseSnapshot([]byte(`{not-json`))
	require.Error(t, err)

	_, err = ParseSnapshot([]byte(`[1, 2]`))
	require.ErrorIs(t, err, ErrNotObject)

	_, err = ParseSnapshot([]byte(`{"a": 1} {"b": 2}`))
	require.Error(t, err)
}

func TestSnapshot_Accessors(t *testing.T) {
	s := mustParse(t, `{"n": 16, "f": 2.0, "half": 4.5, "s": "open", "b": true, "ns": "7"}`)

	n, ok := s.Int("n")
	assert.True(t, ok)
	assert.Equal(t, 16, n)

	f, ok := s.Int("f")
	assert.True(t, ok)
	assert.Equal(t, 2, f)

	_, ok = s.Int("half")
	assert.False(t, ok, "fractional numbers are not integers")

	_, ok = s.Int("ns")
	assert.False(t, ok, "numeric strings are not integers")

	_, ok = s.Int("missing")
	assert.False(t, ok)

	str, ok := s.Text("s")
	assert.True(t, ok)
	assert.Equal(t, "open", str)

	b, ok := s.Bool("b")
	assert.True(t, ok)
	assert.True(t, b)
}

func TestCapacitySignals_IgnoresFractionalSlots(t *testing.T) {
	prev := mustParse(t, `{"available_slots": 6, "max_teams": 16}`)
	next := mustParse(t, `{"available_slots": 4.5, "max_teams": 16}`)
	res := Reconciler{Derive: CapacitySignals}.Reconcile(&prev, next)
	assert.False(t, res.Has(LowCapacityWarning))
}
