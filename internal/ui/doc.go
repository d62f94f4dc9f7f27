// Package ui provides the Bubble Tea dashboard for crownwatch.
//
// # Package Structure
//
//   - model.go: Model, Options, Update loop and Run
//   - commands.go: messages, tea.Cmd helpers and the visibility controller
//   - view.go: header, tournament and notification cards, activity feed,
//     toasts, permission prompt and diagnostics
//   - help.go: help overlay
//   - keys.go / theme.go: key bindings and color themes
//
// # Data Flow
//
// The live syncs write into a state.Store from their own goroutines. The
// model never touches the store directly during rendering; a tick command
// takes a Snapshot and the view renders that copy. Only mounted targets
// are drawn, and hidden targets are skipped.
//
// The activity feed subscribes to the event bus and re-arms its wait
// command after every event. The toast queue and the permission prompt flag
// are read from notify.Center on each tick.
//
// # Focus
//
// The program enables focus reporting. FocusMsg and BlurMsg update the
// shared notify.Focus, which gates the audio cue. When SuspendWhenHidden is
// set, blur suspends every sync and focus resumes them. The visibility
// controller serializes those calls and always converges on the latest focus
// state.
//
// # Preferences
//
// Theme, sound and notification permission changes are written back to the
// prefs file with prefs.Update so unrelated fields survive.
package ui
