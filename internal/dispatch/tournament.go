package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/notify"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/state"
)

// Tournament render targets.
const (
	SelectorSlug          = "[data-tournament-slug]"
	SelectorRegState      = "[data-tournament-reg-state]"
	SelectorStatusBadge   = "[data-tournament-status-badge]"
	SelectorTimeRemaining = "[data-tournament-time-remaining]"
	SelectorSlots         = "[data-tournament-slots]"
	SelectorPhase         = "[data-tournament-phase]"
)

// TournamentSelectors lists every target the tournament dispatcher writes.
var TournamentSelectors = []string{
	SelectorSlug,
	SelectorRegState,
	SelectorStatusBadge,
	SelectorTimeRemaining,
	SelectorSlots,
	SelectorPhase,
}

const tournamentSync = "tournament"

// Tournament applies tournament state snapshots.
type Tournament struct {
	deps     Deps
	slug     string
	notifier Notifier
	sound    Sounder
	focus    FocusReporter
}

// NewTournament creates the tournament dispatcher. notifier, sound and focus
// may be nil, which disables the matching side-channel.
func NewTournament(deps Deps, slug string, notifier Notifier, sound Sounder, focus FocusReporter) *Tournament {
	return &Tournament{
		deps:     deps.withDefaults(),
		slug:     slug,
		notifier: notifier,
		sound:    sound,
		focus:    focus,
	}
}

var _ Dispatcher = (*Tournament)(nil)

// Dispatch renders the snapshot, fires the capacity side-channels and
// broadcasts tournament:state-changed.
func (t *Tournament) Dispatch(_ context.Context, res reconcile.Result) {
	if !res.Changed {
		return
	}
	snap := res.Snapshot

	t.deps.update(SelectorSlug, func(e *state.Element) { e.Text = t.slug })
	t.renderRegistration(snap)
	t.renderStatus(snap)
	t.renderTimeRemaining(snap)
	t.renderSlots(snap)
	t.renderPhase(snap)

	if sig, ok := res.Signal(reconcile.LowCapacityWarning); ok {
		t.notifyLowCapacity(snap, sig)
	}
	if res.Has(reconcile.CapacityChanged) {
		t.playCue()
	}

	t.deps.publish(tournamentSync, events.TournamentStateChanged, snap)
}

func (t *Tournament) renderRegistration(snap reconcile.Snapshot) {
	raw, ok := snap.Text("registration_state")
	if !ok {
		return
	}
	label := RegistrationLabel(raw)
	t.deps.update(SelectorRegState, func(e *state.Element) {
		e.Text = label.Text
		e.SetClass("reg-", label.Class)
	})
}

func (t *Tournament) renderStatus(snap reconcile.Snapshot) {
	text, hasText := snap.Text("button_text")
	if !hasText || text == "" {
		raw, ok := snap.Text("registration_state")
		if !ok {
			return
		}
		text = RegistrationLabel(raw).Text
	}
	buttonClass := ""
	if bs, ok := snap.Text("button_state"); ok && bs != "" {
		buttonClass = "status-" + bs
	}
	tier := reconcile.TierFor(snap)
	t.deps.update(SelectorStatusBadge, func(e *state.Element) {
		e.Text = text
		e.SetClass("status-", buttonClass)
		e.SetClass("tier-", "tier-"+tier.String())
	})
}

func (t *Tournament) renderTimeRemaining(snap reconcile.Snapshot) {
	remaining, ok := snap.Text("time_until_start")
	if !ok {
		return
	}
	t.deps.update(SelectorTimeRemaining, func(e *state.Element) {
		e.Text = remaining
		e.Hidden = remaining == ""
	})
}

func (t *Tournament) renderSlots(snap reconcile.Snapshot) {
	registered, hasRegistered := snap.Int("registered_count")
	maxTeams, hasMax := snap.Int("max_teams")
	available, hasAvailable := snap.Int("available_slots")
	_, hasFull := snap.Bool("is_full")
	if !hasRegistered && !hasMax && !hasAvailable && !hasFull {
		return
	}
	if !hasAvailable {
		available = max(maxTeams-registered, 0)
	}
	tier := reconcile.TierFor(snap)
	label := SlotsLabel(tier == reconcile.TierFull, available, registered, maxTeams)
	t.deps.update(SelectorSlots, func(e *state.Element) {
		e.Text = label
		e.SetClass("tier-", "tier-"+tier.String())
	})
}

func (t *Tournament) renderPhase(snap reconcile.Snapshot) {
	raw, ok := snap.Text("phase")
	if !ok {
		return
	}
	label := PhaseLabel(raw)
	t.deps.update(SelectorPhase, func(e *state.Element) {
		e.Text = label.Text
		e.SetClass("phase-", label.Class)
	})
}

func (t *Tournament) notifyLowCapacity(snap reconcile.Snapshot, sig reconcile.Signal) {
	if t.notifier == nil {
		return
	}
	switch t.notifier.Permission() {
	case notify.PermissionGranted:
		title, _ := snap.Text("dc_title")
		if title == "" {
			title = t.slug
		}
		if t.notifier.Notify(title+": registration almost full", slotsLeft(sig.Slots)) {
			t.deps.record(tournamentSync, EffectNotification)
		}
	case notify.PermissionDefault:
		if t.notifier.RequestPermission() {
			t.deps.record(tournamentSync, EffectPermissionRequest)
		}
	}
}

func (t *Tournament) playCue() {
	if t.sound == nil {
		return
	}
	if t.focus != nil && !t.focus.Focused() {
		return
	}
	if err := t.sound.Play(); err != nil {
		t.deps.Logger.Debug("audio cue failed", zap.Error(err))
		t.deps.record(tournamentSync, EffectSoundFailed)
		return
	}
	t.deps.record(tournamentSync, EffectSound)
}

func slotsLeft(n int) string {
	if n == 1 {
		return "1 slot left"
	}
	return fmt.Sprintf("%d slots left", n)
}
