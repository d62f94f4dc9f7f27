package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/logtail"
	"github.com/deltacrown/crownwatch/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type eventMsg events.Event

type logTailMsg []string

type logErrorMsg struct{ err error }

type visibilityMsg struct{ suspended bool }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitEventCmd blocks until the bus delivers. A closed subscription ends
// the chain.
func waitEventCmd(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func readLogCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Tail(path, diagLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logTailMsg(lines)
	}
}

// visibility converges the syncs on the most recent focus state. Suspend
// waits for the sync goroutine to exit, so apply runs off the update loop.
type visibility struct {
	mu        sync.Mutex
	hidden    atomic.Bool
	suspended bool
	syncs     []Sync
}

func (v *visibility) apply() visibilityMsg {
	v.mu.Lock()
	defer v.mu.Unlock()
	want := v.hidden.Load()
	if want != v.suspended {
		for _, s := range v.syncs {
			if want {
				s.Suspend()
			} else {
				s.Resume()
			}
		}
		v.suspended = want
	}
	return visibilityMsg{suspended: v.suspended}
}

func visibilityCmd(v *visibility) tea.Cmd {
	return func() tea.Msg { return v.apply() }
}
