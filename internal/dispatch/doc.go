// Package dispatch applies reconciled snapshots to the render targets.
//
// Each dispatcher writes a fixed set of selector-addressed targets in a
// state.Store. Targets the current view did not mount are skipped silently,
// and only keys present in the snapshot are rendered. Every changed cycle
// ends with a broadcast on the event bus whether or not any target exists.
//
// The tournament dispatcher also owns two side-channels. A desktop
// notification fires at most once per cycle on LOW_CAPACITY_WARNING and only
// with granted permission; an undecided permission raises a prompt instead.
// The audio cue plays at most once per cycle on CAPACITY_CHANGED, only while
// the terminal has focus, and playback errors are logged and dropped.
package dispatch
