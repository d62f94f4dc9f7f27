package state

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestStore_UpdateOnlyTouchesMountedTargets(t *testing.T) {
	var s Store
	s.Mount("#notification-bell-badge")

	if ok := s.Update("#pending-badge", func(e *Element) { e.Text = "2" }); ok {
		t.Fatalf("Update on unmounted selector returned true")
	}
	if ok := s.Update("#notification-bell-badge", func(e *Element) { e.Text = "3" }); !ok {
		t.Fatalf("Update on mounted selector returned false")
	}

	snap := s.Snapshot()
	if _, ok := snap.Element("#pending-badge"); ok {
		t.Fatalf("unmounted selector appeared in snapshot")
	}
	el, ok := snap.Element("#notification-bell-badge")
	if !ok || el.Text != "3" {
		t.Fatalf("badge = %#v, want text 3", el)
	}
}

func TestStore_MountKeepsExistingContent(t *testing.T) {
	var s Store
	s.Mount("[data-tournament-phase]")
	s.Update("[data-tournament-phase]", func(e *Element) { e.Text = "Check-in" })
	s.Mount("[data-tournament-phase]", "[data-tournament-slots]")

	if !s.Has("[data-tournament-slots]") {
		t.Fatalf("second selector not mounted")
	}
	el, _ := s.Snapshot().Element("[data-tournament-phase]")
	if el.Text != "Check-in" {
		t.Fatalf("remount cleared text: %#v", el)
	}
}

func TestStore_SnapshotClonesClasses(t *testing.T) {
	var s Store
	s.Mount("[data-tournament-reg-state]")
	s.Update("[data-tournament-reg-state]", func(e *Element) { e.SetClass("reg-", "reg-open") })

	snap := s.Snapshot()
	el := snap.Elements["[data-tournament-reg-state]"]
	el.Classes[0] = "mutated"

	again, _ := s.Snapshot().Element("[data-tournament-reg-state]")
	if !again.HasClass("reg-open") {
		t.Fatalf("Snapshot should clone classes; got %v", again.Classes)
	}
}

func TestElement_SetClassReplacesPrefix(t *testing.T) {
	e := Element{Classes: []string{"badge", "tier-low"}}
	e.SetClass("tier-", "tier-critical")
	if !reflect.DeepEqual(e.Classes, []string{"badge", "tier-critical"}) {
		t.Fatalf("Classes = %v, want [badge tier-critical]", e.Classes)
	}
	e.SetClass("tier-", "")
	if !reflect.DeepEqual(e.Classes, []string{"badge"}) {
		t.Fatalf("Classes = %v, want [badge]", e.Classes)
	}
}

func TestStore_FailureKeepsPreviousContent(t *testing.T) {
	var s Store
	s.Mount("#count-pending")
	s.Update("#count-pending", func(e *Element) { e.Text = "4" })
	s.RecordApplied("notifications")

	before := time.Now()
	origErr := errors.New("boom")
	s.RecordFailure("notifications", origErr)

	snap := s.Snapshot()
	if el, _ := snap.Element("#count-pending"); el.Text != "4" {
		t.Fatalf("content changed on failure: %#v", el)
	}
	st := snap.Syncs["notifications"]
	if st.LastErrorAt.Before(before) {
		t.Fatalf("LastErrorAt = %v, want >= %v", st.LastErrorAt, before)
	}
	if st.LastError == nil || st.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", st.LastError)
	}
	if reflect.ValueOf(st.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if st := s.Snapshot().Syncs["tournament"]; st.IsOffline() {
		t.Fatal("IsOffline() = true, want false before any cycle")
	}

	s.RecordFailure("tournament", errors.New("fail 1"))
	if st := s.Snapshot().Syncs["tournament"]; st.ConsecutiveFailures != 1 || st.IsOffline() {
		t.Fatalf("after one failure: %#v", st)
	}

	s.RecordFailure("tournament", errors.New("fail 2"))
	if st := s.Snapshot().Syncs["tournament"]; !st.IsOffline() {
		t.Fatalf("IsOffline() = false, want true with 2 failures")
	}

	s.RecordApplied("tournament")
	st := s.Snapshot().Syncs["tournament"]
	if st.ConsecutiveFailures != 0 || st.IsOffline() || st.LastError != nil {
		t.Fatalf("success did not reset failures: %#v", st)
	}
}

func TestStore_RecordConnection(t *testing.T) {
	var s Store
	s.RecordConnection("notifications", "pull", "pull-active", 3)
	st := s.Snapshot().Syncs["notifications"]
	if st.Name != "notifications" || st.Mode != "pull" || st.Phase != "pull-active" || st.RetryCount != 3 {
		t.Fatalf("sync status = %#v", st)
	}
}
