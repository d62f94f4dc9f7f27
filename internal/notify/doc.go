// Package notify provides the terminal stand-ins for the browser
// notification, permission and audio APIs used by the sync dispatchers.
//
// Center holds the desktop-notification permission and a bounded queue of
// toasts the UI renders. Requesting permission only raises a prompt flag;
// the UI asks the user and reports the answer back with Answer, which is
// persisted through the configured callback. Bell writes the terminal bell
// character. Focus tracks whether the terminal currently has focus.
package notify
