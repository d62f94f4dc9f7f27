package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/notify"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/state"
)

type fakeBus struct{ events []events.Event }

func (b *fakeBus) Publish(ev events.Event) { b.events = append(b.events, ev) }

type fakeSound struct {
	plays int
	err   error
}

func (s *fakeSound) Play() error {
	s.plays++
	return s.err
}

type fixedFocus bool

func (f fixedFocus) Focused() bool { return bool(f) }

type effectLog map[string]int

func (l effectLog) DispatchEffect(sync, effect string) { l[sync+"/"+effect]++ }

func changed(t *testing.T, raw string, signals ...reconcile.Signal) reconcile.Result {
	t.Helper()
	snap, err := reconcile.ParseSnapshot([]byte(raw))
	require.NoError(t, err)
	return reconcile.Result{Changed: true, Snapshot: snap, Signals: signals}
}

func mountedStore(selectors ...string) *state.Store {
	var s state.Store
	s.Mount(selectors...)
	return &s
}

func TestTournament_NoTargetsStillBroadcasts(t *testing.T) {
	bus := &fakeBus{}
	doc := mountedStore()
	d := NewTournament(Deps{Doc: doc, Bus: bus}, "spring-cup", nil, nil, nil)

	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), changed(t, `{"registration_state":"open","phase":"finals","available_slots":3}`))
	})

	require.Len(t, bus.events, 1)
	assert.Equal(t, events.TournamentStateChanged, bus.events[0].Name)
	assert.Equal(t, 3, mustInt(t, bus.events[0].Detail, "available_slots"))
	assert.Empty(t, doc.Snapshot().Elements)
}

func TestTournament_FullRendersFullLabel(t *testing.T) {
	doc := mountedStore(TournamentSelectors...)
	d := NewTournament(Deps{Doc: doc}, "spring-cup", nil, nil, nil)

	d.Dispatch(context.Background(), changed(t, `{"is_full":true,"registered_count":16,"max_teams":16}`))

	el, _ := doc.Snapshot().Element(SelectorSlots)
	assert.Equal(t, "Full (16/16)", el.Text)
	assert.NotContains(t, el.Text, "slots available")
	assert.True(t, el.HasClass("tier-full"))
}

func TestTournament_SlotsAvailable(t *testing.T) {
	doc := mountedStore(TournamentSelectors...)
	d := NewTournament(Deps{Doc: doc}, "spring-cup", nil, nil, nil)

	d.Dispatch(context.Background(), changed(t, `{"is_full":false,"registered_count":10,"max_teams":16,"available_slots":6}`))

	el, _ := doc.Snapshot().Element(SelectorSlots)
	assert.Equal(t, "6 slots available (10/16)", el.Text)
	assert.True(t, el.HasClass("tier-plenty"))
}

func TestTournament_UnknownPhaseRendersVerbatim(t *testing.T) {
	doc := mountedStore(TournamentSelectors...)
	d := NewTournament(Deps{Doc: doc}, "spring-cup", nil, nil, nil)

	d.Dispatch(context.Background(), changed(t, `{"phase":"group_stage"}`))
	d.Dispatch(context.Background(), changed(t, `{"phase":"qualifiers_extended"}`))

	el, _ := doc.Snapshot().Element(SelectorPhase)
	assert.Equal(t, "qualifiers_extended", el.Text)
	assert.Empty(t, el.Classes)
}

func TestTournament_RendersLabelsAndSlug(t *testing.T) {
	doc := mountedStore(TournamentSelectors...)
	d := NewTournament(Deps{Doc: doc}, "spring-cup", nil, nil, nil)

	d.Dispatch(context.Background(), changed(t, `{
		"registration_state":"open","phase":"check_in","time_until_start":"2h 5m",
		"registered_count":14,"max_teams":16,"available_slots":2,
		"button_state":"register","button_text":"Register now"}`))

	snap := doc.Snapshot()
	slug, _ := snap.Element(SelectorSlug)
	assert.Equal(t, "spring-cup", slug.Text)

	reg, _ := snap.Element(SelectorRegState)
	assert.Equal(t, "Registration open", reg.Text)
	assert.Equal(t, []string{"reg-open"}, reg.Classes)

	phase, _ := snap.Element(SelectorPhase)
	assert.Equal(t, "Check-in", phase.Text)
	assert.True(t, phase.HasClass("phase-check-in"))

	badge, _ := snap.Element(SelectorStatusBadge)
	assert.Equal(t, "Register now", badge.Text)
	assert.True(t, badge.HasClass("status-register"))
	assert.True(t, badge.HasClass("tier-low"))

	remaining, _ := snap.Element(SelectorTimeRemaining)
	assert.Equal(t, "2h 5m", remaining.Text)
	assert.False(t, remaining.Hidden)
}

func TestTournament_UnknownRegistrationStateDropsClass(t *testing.T) {
	doc := mountedStore(SelectorRegState)
	d := NewTournament(Deps{Doc: doc}, "", nil, nil, nil)

	d.Dispatch(context.Background(), changed(t, `{"registration_state":"open"}`))
	d.Dispatch(context.Background(), changed(t, `{"registration_state":"paused"}`))

	el, _ := doc.Snapshot().Element(SelectorRegState)
	assert.Equal(t, "paused", el.Text)
	assert.Empty(t, el.Classes)
}

func TestTournament_UnchangedResultIsIgnored(t *testing.T) {
	bus := &fakeBus{}
	d := NewTournament(Deps{Doc: mountedStore(), Bus: bus}, "", nil, nil, nil)
	d.Dispatch(context.Background(), reconcile.Result{Changed: false})
	assert.Empty(t, bus.events)
}

func TestTournament_NotificationNeedsGrantedPermission(t *testing.T) {
	low := reconcile.Signal{Kind: reconcile.LowCapacityWarning, Tier: reconcile.TierCritical, Slots: 2}
	payload := `{"dc_title":"Spring Cup","available_slots":2,"max_teams":16}`

	t.Run("default requests permission only", func(t *testing.T) {
		center := notify.NewCenter(notify.PermissionDefault)
		effects := effectLog{}
		d := NewTournament(Deps{Doc: mountedStore(), Metrics: effects}, "spring-cup", center, nil, nil)

		d.Dispatch(context.Background(), changed(t, payload, low))

		assert.True(t, center.PendingRequest())
		assert.Empty(t, center.Toasts())
		assert.Equal(t, 1, effects["tournament/permission_request"])
	})

	t.Run("granted notifies once", func(t *testing.T) {
		center := notify.NewCenter(notify.PermissionGranted)
		d := NewTournament(Deps{Doc: mountedStore()}, "spring-cup", center, nil, nil)

		d.Dispatch(context.Background(), changed(t, payload, low, low))

		toasts := center.Toasts()
		require.Len(t, toasts, 1)
		assert.Equal(t, "Spring Cup: registration almost full", toasts[0].Title)
		assert.Equal(t, "2 slots left", toasts[0].Body)
	})

	t.Run("denied stays silent", func(t *testing.T) {
		center := notify.NewCenter(notify.PermissionDenied)
		d := NewTournament(Deps{Doc: mountedStore()}, "spring-cup", center, nil, nil)

		d.Dispatch(context.Background(), changed(t, payload, low))

		assert.False(t, center.PendingRequest())
		assert.Empty(t, center.Toasts())
	})

	t.Run("no signal no notification", func(t *testing.T) {
		center := notify.NewCenter(notify.PermissionGranted)
		d := NewTournament(Deps{Doc: mountedStore()}, "spring-cup", center, nil, nil)

		d.Dispatch(context.Background(), changed(t, payload))

		assert.Empty(t, center.Toasts())
	})
}

func TestTournament_AudioCue(t *testing.T) {
	moved := reconcile.Signal{Kind: reconcile.CapacityChanged}
	payload := `{"registered_count":11}`

	t.Run("focused plays once", func(t *testing.T) {
		sound := &fakeSound{}
		d := NewTournament(Deps{Doc: mountedStore()}, "", nil, sound, fixedFocus(true))
		d.Dispatch(context.Background(), changed(t, payload, moved, moved))
		assert.Equal(t, 1, sound.plays)
	})

	t.Run("blurred stays silent", func(t *testing.T) {
		sound := &fakeSound{}
		d := NewTournament(Deps{Doc: mountedStore()}, "", nil, sound, fixedFocus(false))
		d.Dispatch(context.Background(), changed(t, payload, moved))
		assert.Zero(t, sound.plays)
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		bus := &fakeBus{}
		effects := effectLog{}
		sound := &fakeSound{err: errors.New("blocked")}
		d := NewTournament(Deps{Doc: mountedStore(), Bus: bus, Metrics: effects}, "", nil, sound, fixedFocus(true))

		require.NotPanics(t, func() { d.Dispatch(context.Background(), changed(t, payload, moved)) })
		assert.Len(t, bus.events, 1)
		assert.Equal(t, 1, effects["tournament/sound_failed"])
	})

	t.Run("no signal no cue", func(t *testing.T) {
		sound := &fakeSound{}
		d := NewTournament(Deps{Doc: mountedStore()}, "", nil, sound, fixedFocus(true))
		d.Dispatch(context.Background(), changed(t, payload))
		assert.Zero(t, sound.plays)
	})
}

func TestNotifications_BadgeVisibility(t *testing.T) {
	doc := mountedStore(NotificationSelectors...)
	bus := &fakeBus{}
	d := NewNotifications(Deps{Doc: doc, Bus: bus})

	d.Dispatch(context.Background(), changed(t, `{"unread_notifications":0,"pending_follow_requests":0}`))
	bell, _ := doc.Snapshot().Element(SelectorBellBadge)
	assert.True(t, bell.Hidden)
	pending, _ := doc.Snapshot().Element(SelectorPendingBadge)
	assert.True(t, pending.Hidden)

	d.Dispatch(context.Background(), changed(t, `{"unread_notifications":3,"pending_follow_requests":2}`))
	snap := doc.Snapshot()
	bell, _ = snap.Element(SelectorBellBadge)
	assert.False(t, bell.Hidden)
	assert.Equal(t, "3", bell.Text)
	pending, _ = snap.Element(SelectorPendingBadge)
	assert.False(t, pending.Hidden)
	assert.Equal(t, "2", pending.Text)
	count, _ := snap.Element(SelectorCountPending)
	assert.Equal(t, "2", count.Text)

	require.Len(t, bus.events, 2)
	assert.Equal(t, events.NotificationsUpdated, bus.events[1].Name)
}

func TestNotifications_CapsBadgeAt99(t *testing.T) {
	doc := mountedStore(SelectorBellBadge)
	d := NewNotifications(Deps{Doc: doc})

	d.Dispatch(context.Background(), changed(t, `{"unread_notifications":150}`))

	bell, _ := doc.Snapshot().Element(SelectorBellBadge)
	assert.Equal(t, "99+", bell.Text)
}

func TestNotifications_MissingTargetsBroadcast(t *testing.T) {
	bus := &fakeBus{}
	d := NewNotifications(Deps{Bus: bus})

	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), changed(t, `{"unread_notifications":1}`))
	})
	require.Len(t, bus.events, 1)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, Label{Text: "Registration full", Class: "reg-full"}, RegistrationLabel("full"))
	assert.Equal(t, Label{Text: "weird"}, RegistrationLabel("weird"))
	assert.Equal(t, Label{Text: "Finals", Class: "phase-finals"}, PhaseLabel("finals"))
	assert.Equal(t, "Full (8/8)", SlotsLabel(true, 0, 8, 8))
	assert.Equal(t, "3 slots available (5/8)", SlotsLabel(false, 3, 5, 8))
	assert.Equal(t, "99", BadgeCount(99))
	assert.Equal(t, "99+", BadgeCount(100))
}

func mustInt(t *testing.T, s reconcile.Snapshot, key string) int {
	t.Helper()
	v, ok := s.Int(key)
	require.True(t, ok, "missing %s", key)
	return v
}
