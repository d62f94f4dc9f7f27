package livesync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/deltacrown/crownwatch/internal/dispatch"
	"github.com/deltacrown/crownwatch/internal/metrics"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/transport"
)

// StatusRecorder receives per-sync status for display. *state.Store
// satisfies it.
type StatusRecorder interface {
	RecordApplied(name string)
	RecordFailure(name string, err error)
	RecordConnection(name, mode, phase string, retries int)
}

// Options configures a Client. Name, Pull and Dispatcher are required.
type Options struct {
	Name       string
	Pull       transport.PullSource
	Push       transport.PushSource
	Reconciler reconcile.Reconciler
	Dispatcher dispatch.Dispatcher
	// Transport options are applied after the ones derived from the fields
	// above.
	Transport []transport.Option
	// AllowStale applies every parsed payload in arrival order instead of
	// dropping payloads older than the last one applied.
	AllowStale bool
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Status     StatusRecorder
}

// Client runs one Source → Diff → Apply loop.
type Client struct {
	name       string
	transport  *transport.Transport
	reconciler reconcile.Reconciler
	dispatcher dispatch.Dispatcher
	allowStale bool
	logger     *zap.Logger
	metrics    *metrics.Metrics
	status     StatusRecorder

	mu      sync.Mutex
	last    reconcile.Snapshot
	hasLast bool
	lastSeq uint64
}

// New builds a Client and its transport.
func New(opts Options) (*Client, error) {
	if opts.Name == "" {
		return nil, errors.New("livesync: name is required")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("livesync %s: dispatcher is required", opts.Name)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		name:       opts.Name,
		reconciler: opts.Reconciler,
		dispatcher: opts.Dispatcher,
		allowStale: opts.AllowStale,
		logger:     logger.With(zap.String("sync", opts.Name)),
		metrics:    opts.Metrics,
		status:     opts.Status,
	}

	topts := []transport.Option{
		transport.WithLogger(logger.Named("transport")),
		transport.WithObserver(c),
	}
	if opts.Push != nil {
		topts = append(topts, transport.WithPush(opts.Push))
	}
	topts = append(topts, opts.Transport...)

	t, err := transport.New(opts.Name, opts.Pull, c.Handle, topts...)
	if err != nil {
		return nil, fmt.Errorf("livesync %s: %w", opts.Name, err)
	}
	c.transport = t
	return c, nil
}

// Name identifies the sync.
func (c *Client) Name() string { return c.name }

// State returns the transport connection state.
func (c *Client) State() transport.ConnectionState { return c.transport.State() }

// Start begins syncing.
func (c *Client) Start(ctx context.Context) error { return c.transport.Start(ctx) }

// Stop ends syncing for good.
func (c *Client) Stop() { c.transport.Stop() }

// Suspend releases the connection while the view is hidden.
func (c *Client) Suspend() { c.transport.Suspend() }

// Resume reconnects in the mode held before Suspend.
func (c *Client) Resume() { c.transport.Resume() }

// Last returns a copy of the last applied snapshot.
func (c *Client) Last() (reconcile.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasLast {
		return nil, false
	}
	return c.last.Clone(), true
}

// Handle runs one reconciliation cycle. Cycles never overlap.
func (c *Client) Handle(ctx context.Context, p transport.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.allowStale && c.lastSeq != 0 && p.Seq <= c.lastSeq {
		c.logger.Debug("dropping stale payload",
			zap.Uint64("seq", p.Seq),
			zap.Uint64("last_seq", c.lastSeq))
		c.metrics.SyncCycle(c.name, metrics.OutcomeStale)
		return
	}

	next, err := reconcile.ParseSnapshot(p.Data)
	if err != nil {
		c.logger.Warn("skipping malformed payload",
			zap.Error(err),
			zap.Uint64("seq", p.Seq),
			zap.Stringer("source", p.Source))
		c.metrics.SyncCycle(c.name, metrics.OutcomeInvalid)
		if c.status != nil {
			c.status.RecordFailure(c.name, err)
		}
		return
	}
	if p.Seq > c.lastSeq {
		c.lastSeq = p.Seq
	}

	var prev *reconcile.Snapshot
	if c.hasLast {
		prev = &c.last
	}
	res := c.reconciler.Reconcile(prev, next)
	if c.status != nil {
		c.status.RecordApplied(c.name)
	}
	if !res.Changed {
		c.metrics.SyncCycle(c.name, metrics.OutcomeUnchanged)
		return
	}

	c.last = res.Snapshot
	c.hasLast = true
	c.dispatcher.Dispatch(ctx, res)
	c.metrics.SyncCycle(c.name, metrics.OutcomeApplied)
	c.logger.Debug("applied snapshot",
		zap.Uint64("seq", p.Seq),
		zap.Stringer("source", p.Source),
		zap.Int("signals", len(res.Signals)))
}

// StateChanged implements transport.Observer.
func (c *Client) StateChanged(s transport.ConnectionState) {
	c.metrics.TransportMode(c.name, int(s.Mode))
	if c.status != nil {
		c.status.RecordConnection(c.name, s.Mode.String(), s.Phase.String(), s.RetryCount)
	}
}

// PushFailed implements transport.Observer.
func (c *Client) PushFailed(error) {
	c.metrics.PushFailure(c.name)
}

// PullFailed implements transport.Observer.
func (c *Client) PullFailed(err error) {
	if c.status != nil {
		c.status.RecordFailure(c.name, err)
	}
}

var _ transport.Observer = (*Client)(nil)
