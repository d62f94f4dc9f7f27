package dispatch

import (
	"context"
	"strconv"

	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/state"
)

// Notification render targets.
const (
	SelectorBellBadge    = "#notification-bell-badge"
	SelectorPendingBadge = "#pending-badge"
	SelectorCountPending = "#count-pending"
)

// NotificationSelectors lists every target the notifications dispatcher
// writes.
var NotificationSelectors = []string{
	SelectorBellBadge,
	SelectorPendingBadge,
	SelectorCountPending,
}

const notificationsSync = "notifications"

// Notifications applies unread/pending counter snapshots.
type Notifications struct {
	deps Deps
}

// NewNotifications creates the counters dispatcher.
func NewNotifications(deps Deps) *Notifications {
	return &Notifications{deps: deps.withDefaults()}
}

var _ Dispatcher = (*Notifications)(nil)

// Dispatch updates the badges and broadcasts notifications:updated.
func (n *Notifications) Dispatch(_ context.Context, res reconcile.Result) {
	if !res.Changed {
		return
	}
	snap := res.Snapshot

	if unread, ok := snap.Int("unread_notifications"); ok {
		n.deps.update(SelectorBellBadge, func(e *state.Element) {
			e.Hidden = unread <= 0
			e.Text = BadgeCount(max(unread, 0))
		})
	}
	if pending, ok := snap.Int("pending_follow_requests"); ok {
		n.deps.update(SelectorPendingBadge, func(e *state.Element) {
			e.Hidden = pending <= 0
			e.Text = BadgeCount(max(pending, 0))
		})
		n.deps.update(SelectorCountPending, func(e *state.Element) {
			e.Text = strconv.Itoa(max(pending, 0))
		})
	}

	n.deps.publish(notificationsSync, events.NotificationsUpdated, snap)
}
