package notify

import (
	"io"
	"sync"
	"sync/atomic"
)

// Bell rings the terminal bell.
type Bell struct {
	mu      sync.Mutex
	w       io.Writer
	enabled atomic.Bool
}

// NewBell creates an enabled Bell writing to w.
func NewBell(w io.Writer) *Bell {
	b := &Bell{w: w}
	b.enabled.Store(true)
	return b
}

// SetEnabled turns the cue on or off.
func (b *Bell) SetEnabled(on bool) { b.enabled.Store(on) }

// Enabled reports whether the cue is on.
func (b *Bell) Enabled() bool { return b.enabled.Load() }

// Play writes BEL. A disabled or writer-less bell does nothing.
func (b *Bell) Play() error {
	if b == nil || b.w == nil || !b.enabled.Load() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, "\a")
	return err
}

// Focus tracks terminal focus. The zero value reports focused.
type Focus struct {
	blurred atomic.Bool
}

// Focused reports whether the terminal has focus.
func (f *Focus) Focused() bool {
	if f == nil {
		return true
	}
	return !f.blurred.Load()
}

// Set records a focus change and reports whether the value changed.
func (f *Focus) Set(focused bool) bool {
	return f.blurred.Swap(!focused) != !focused
}
