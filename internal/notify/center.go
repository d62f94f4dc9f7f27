package notify

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Permission mirrors the three notification permission states.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a stored value to a Permission. Unknown values are
// treated as never asked.
func ParsePermission(s string) Permission {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// Toast is one desktop notification.
type Toast struct {
	Title string
	Body  string
	At    time.Time
}

// DefaultMaxToasts bounds the queue when no limit is configured.
const DefaultMaxToasts = 5

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithMaxToasts bounds the toast queue; the oldest toast is dropped first.
func WithMaxToasts(n int) CenterOption {
	return func(c *Center) {
		if n > 0 {
			c.max = n
		}
	}
}

// WithPersist registers a callback invoked with the new permission after
// the user answers a prompt.
func WithPersist(fn func(Permission) error) CenterOption {
	return func(c *Center) { c.persist = fn }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *zap.Logger) CenterOption {
	return func(c *Center) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Center tracks notification permission and queued toasts.
type Center struct {
	mu      sync.Mutex
	perm    Permission
	pending bool
	toasts  []Toast
	max     int
	persist func(Permission) error
	logger  *zap.Logger
}

// NewCenter creates a Center starting at perm.
func NewCenter(perm Permission, opts ...CenterOption) *Center {
	c := &Center{
		perm:   ParsePermission(string(perm)),
		max:    DefaultMaxToasts,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Permission returns the current permission.
func (c *Center) Permission() Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perm
}

// RequestPermission raises the prompt flag when permission was never
// decided. It returns true if a prompt is now pending.
func (c *Center) RequestPermission() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.perm != PermissionDefault {
		return false
	}
	c.pending = true
	return true
}

// PendingRequest reports whether a permission prompt awaits an answer.
func (c *Center) PendingRequest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Answer resolves the pending prompt and persists the result. The new
// permission is kept even if persisting fails.
func (c *Center) Answer(granted bool) error {
	perm := PermissionDenied
	if granted {
		perm = PermissionGranted
	}

	c.mu.Lock()
	c.perm = perm
	c.pending = false
	persist := c.persist
	c.mu.Unlock()

	if persist == nil {
		return nil
	}
	if err := persist(perm); err != nil {
		c.logger.Warn("persist notification permission failed", zap.String("permission", string(perm)), zap.Error(err))
		return err
	}
	return nil
}

// Notify queues a toast when permission is granted and reports whether it
// was shown.
func (c *Center) Notify(title, body string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.perm != PermissionGranted {
		return false
	}
	c.toasts = append(c.toasts, Toast{Title: title, Body: body, At: time.Now()})
	if over := len(c.toasts) - c.max; over > 0 {
		c.toasts = append(c.toasts[:0], c.toasts[over:]...)
	}
	return true
}

// Toasts returns a copy of the queued toasts, oldest first.
func (c *Center) Toasts() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Expire drops toasts older than ttl.
func (c *Center) Expire(now time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if now.Sub(t.At) < ttl {
			kept = append(kept, t)
		}
	}
	c.toasts = kept
}
