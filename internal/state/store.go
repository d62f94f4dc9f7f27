package state

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Element is one render target addressed by a selector such as
// "[data-tournament-slots]" or "#notification-bell-badge".
type Element struct {
	Text    string
	Classes []string
	Hidden  bool
}

// HasClass reports whether the element carries class.
func (e Element) HasClass(class string) bool {
	return slices.Contains(e.Classes, class)
}

// SetClass replaces every class that starts with prefix by class. An empty
// class only removes the prefixed classes.
func (e *Element) SetClass(prefix, class string) {
	kept := e.Classes[:0]
	for _, c := range e.Classes {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			continue
		}
		kept = append(kept, c)
	}
	e.Classes = kept
	if class != "" {
		e.Classes = append(e.Classes, class)
	}
}

// SyncStatus is the per-sync connection summary shown alongside the targets.
type SyncStatus struct {
	Name                string
	Mode                string
	Phase               string
	RetryCount          int
	LastApplied         time.Time
	LastError           error
	LastErrorAt         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when the sync has failed multiple cycles in a row.
func (s SyncStatus) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Snapshot is an immutable copy of the store.
type Snapshot struct {
	Elements map[string]Element
	Syncs    map[string]SyncStatus
}

// Element returns the target for selector and whether it is mounted.
func (s Snapshot) Element(selector string) (Element, bool) {
	e, ok := s.Elements[selector]
	return e, ok
}

// Store holds the mounted render targets and sync status. The zero value is
// ready to use and has no targets mounted.
type Store struct {
	mu       sync.RWMutex
	elements map[string]*Element
	syncs    map[string]SyncStatus
}

// Mount registers render targets. Mounting an existing selector keeps its
// current content.
func (s *Store) Mount(selectors ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.elements == nil {
		s.elements = make(map[string]*Element)
	}
	for _, sel := range selectors {
		if _, ok := s.elements[sel]; !ok {
			s.elements[sel] = &Element{}
		}
	}
}

// Has reports whether selector is mounted.
func (s *Store) Has(selector string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.elements[selector]
	return ok
}

// Update applies fn to the target for selector. It returns false and does
// nothing when the selector is not mounted.
func (s *Store) Update(selector string, fn func(*Element)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[selector]
	if !ok {
		return false
	}
	fn(el)
	return true
}

// RecordApplied marks a successful apply cycle for a sync.
func (s *Store) RecordApplied(name string) {
	s.updateSync(name, func(st *SyncStatus) {
		st.LastApplied = time.Now()
		st.LastError = nil
		st.ConsecutiveFailures = 0
	})
}

// RecordFailure records a skipped cycle. Previously applied content is kept.
func (s *Store) RecordFailure(name string, err error) {
	s.updateSync(name, func(st *SyncStatus) {
		st.LastError = err
		st.LastErrorAt = time.Now()
		st.ConsecutiveFailures++
	})
}

// RecordConnection stores the transport mode for a sync.
func (s *Store) RecordConnection(name, mode, phase string, retries int) {
	s.updateSync(name, func(st *SyncStatus) {
		st.Mode = mode
		st.Phase = phase
		st.RetryCount = retries
	})
}

func (s *Store) updateSync(name string, fn func(*SyncStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncs == nil {
		s.syncs = make(map[string]SyncStatus)
	}
	st := s.syncs[name]
	st.Name = name
	fn(&st)
	s.syncs[name] = st
}

// Snapshot returns a deep copy of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Elements: make(map[string]Element, len(s.elements)),
		Syncs:    make(map[string]SyncStatus, len(s.syncs)),
	}
	for sel, el := range s.elements {
		dup := *el
		dup.Classes = slices.Clone(el.Classes)
		snap.Elements[sel] = dup
	}
	for name, st := range s.syncs {
		if st.LastError != nil {
			st.LastError = fmt.Errorf("%w", st.LastError)
		}
		snap.Syncs[name] = st
	}
	return snap
}
