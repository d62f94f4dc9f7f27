package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	DefaultPushGrace    = 2 * time.Second
	DefaultPushBackoff  = 3 * time.Second
	DefaultMaxRetries   = 3
	DefaultPollInterval = 15 * time.Second
)

var (
	// ErrStopped is returned by Start once Stop has been called.
	ErrStopped = errors.New("transport stopped")

	errGraceExpired = errors.New("push channel not open within grace period")
)

// Option configures a Transport.
type Option func(*Transport)

// WithPush enables the push channel. Without it the transport polls only.
func WithPush(src PushSource) Option {
	return func(t *Transport) { t.push = src }
}

// WithPollInterval sets the pull cadence.
func WithPollInterval(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithPushGrace sets how long a push attempt may take to report open.
func WithPushGrace(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.grace = d
		}
	}
}

// WithMaxRetries sets the push retry budget.
func WithMaxRetries(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxRetries = n
		}
	}
}

// WithBackOff sets the wait between push attempts.
func WithBackOff(b backoff.BackOff) Option {
	return func(t *Transport) {
		if b != nil {
			t.backoff = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithObserver registers a health observer.
func WithObserver(o Observer) Option {
	return func(t *Transport) { t.observer = o }
}

// Transport delivers raw state payloads to a sink over a push channel with
// a permanent pull fallback.
type Transport struct {
	name         string
	pull         PullSource
	push         PushSource
	sink         Sink
	grace        time.Duration
	pollInterval time.Duration
	maxRetries   int
	backoff      backoff.BackOff
	logger       *zap.Logger
	observer     Observer

	seq atomic.Uint64

	mu      sync.Mutex
	state   ConnectionState
	parent  context.Context
	running bool
	stopped bool
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a Transport. The pull source and sink are required.
func New(name string, pull PullSource, sink Sink, opts ...Option) (*Transport, error) {
	if pull == nil {
		return nil, fmt.Errorf("transport %s: pull source is required", name)
	}
	if sink == nil {
		return nil, fmt.Errorf("transport %s: sink is required", name)
	}
	t := &Transport{
		name:         name,
		pull:         pull,
		sink:         sink,
		grace:        DefaultPushGrace,
		pollInterval: DefaultPollInterval,
		maxRetries:   DefaultMaxRetries,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.backoff == nil {
		t.backoff = backoff.NewConstantBackOff(DefaultPushBackoff)
	}
	t.logger = t.logger.With(zap.String("sync", name))
	t.state = ConnectionState{
		Mode:         ModePush,
		Phase:        PhaseInit,
		MaxRetries:   t.maxRetries,
		PollInterval: t.pollInterval,
	}
	if t.push == nil {
		t.state.Mode = ModePull
	}
	return t, nil
}

// Name identifies the transport in logs and metrics.
func (t *Transport) Name() string { return t.name }

// State returns a copy of the current connection state.
func (t *Transport) State() ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start begins delivery. Calling Start on a running transport logs a warning
// and does nothing. A suspended transport resumes in its prior mode.
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return ErrStopped
	}
	if t.running {
		t.mu.Unlock()
		t.logger.Warn("start called on running transport")
		return nil
	}
	t.parent = ctx
	t.launchLocked()
	t.mu.Unlock()
	return nil
}

// Suspend releases the active channel without giving up the transport. The
// push/pull mode and retry budget survive until Resume.
func (t *Transport) Suspend() {
	t.mu.Lock()
	if !t.running || t.stopped {
		t.mu.Unlock()
		return
	}
	done := t.haltLocked()
	t.state.Phase = PhaseSuspended
	snap := t.state
	t.mu.Unlock()

	<-done
	t.logger.Debug("transport suspended", zap.Stringer("mode", snap.Mode))
	t.notifyState(snap)
}

// Resume restarts a suspended transport in its prior mode. Push is only
// re-attempted if the retry budget was never exhausted.
func (t *Transport) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.running || t.state.Phase != PhaseSuspended || t.parent == nil {
		return
	}
	t.logger.Debug("transport resuming", zap.Stringer("mode", t.state.Mode))
	t.launchLocked()
}

// Stop releases any open channel and moves to the terminal disconnected
// state. It is safe to call more than once.
func (t *Transport) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	var done chan struct{}
	if t.running {
		done = t.haltLocked()
	}
	t.state.Mode = ModeDisconnected
	t.state.Phase = PhaseDisconnected
	snap := t.state
	t.mu.Unlock()

	if done != nil {
		<-done
	}
	t.logger.Debug("transport stopped")
	t.notifyState(snap)
}

func (t *Transport) launchLocked() {
	runCtx, cancel := context.WithCancel(t.parent)
	t.gen++
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true
	go t.run(runCtx, t.gen, t.done)
}

func (t *Transport) haltLocked() chan struct{} {
	t.gen++
	t.cancel()
	t.running = false
	return t.done
}

func (t *Transport) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	if t.push != nil && !t.State().FellBack {
		if !t.runPush(ctx, gen) {
			return
		}
	}
	t.runPull(ctx, gen)
}

// runPush keeps the push channel alive. It returns true when the retry
// budget is exhausted and the caller should fall back to pull.
func (t *Transport) runPush(ctx context.Context, gen uint64) bool {
	for {
		t.setPhase(gen, ModePush, PhasePushPending)
		err := t.attemptPush(ctx, gen)
		if ctx.Err() != nil {
			return false
		}

		retries := t.recordPushFailure(gen)
		t.logger.Warn("push channel failed",
			zap.Error(err),
			zap.Int("retry_count", retries),
			zap.Int("max_retries", t.maxRetries))
		if t.observer != nil {
			t.observer.PushFailed(err)
		}

		if retries >= t.maxRetries {
			t.fallBack(gen)
			return true
		}
		wait := t.backoff.NextBackOff()
		if wait == backoff.Stop {
			t.fallBack(gen)
			return true
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

type openResult struct {
	stream Stream
	err    error
}

func (t *Transport) attemptPush(ctx context.Context, gen uint64) error {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opened := make(chan openResult, 1)
	go func() {
		s, err := t.push.Open(attemptCtx)
		opened <- openResult{stream: s, err: err}
	}()

	grace := time.NewTimer(t.grace)
	defer grace.Stop()

	var stream Stream
	select {
	case <-ctx.Done():
		go drainOpen(opened)
		return ctx.Err()
	case <-grace.C:
		cancel()
		go drainOpen(opened)
		return errGraceExpired
	case res := <-opened:
		if res.err != nil {
			return fmt.Errorf("open push channel: %w", res.err)
		}
		stream = res.stream
	}
	defer func() { _ = stream.Close() }()

	t.setPhase(gen, ModePush, PhasePushActive)
	t.logger.Info("push channel open")
	for {
		data, err := stream.Next(attemptCtx)
		if err != nil {
			return fmt.Errorf("push channel: %w", err)
		}
		t.resetRetries(gen)
		t.deliver(ctx, Payload{
			Seq:        t.seq.Add(1),
			Source:     ModePush,
			Data:       data,
			ReceivedAt: time.Now(),
		})
	}
}

// drainOpen closes a stream that finished opening after its attempt was
// abandoned.
func drainOpen(opened <-chan openResult) {
	if res := <-opened; res.stream != nil {
		_ = res.stream.Close()
	}
}

func (t *Transport) runPull(ctx context.Context, gen uint64) {
	t.setPhase(gen, ModePull, PhasePullActive)
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		t.pollOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Transport) pollOnce(ctx context.Context) {
	seq := t.seq.Add(1)
	data, err := t.pull.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Warn("poll failed", zap.Error(err), zap.Uint64("seq", seq))
			if t.observer != nil {
				t.observer.PullFailed(err)
			}
		}
		return
	}
	t.deliver(ctx, Payload{
		Seq:        seq,
		Source:     ModePull,
		Data:       data,
		ReceivedAt: time.Now(),
	})
}

func (t *Transport) deliver(ctx context.Context, p Payload) {
	if ctx.Err() != nil {
		return
	}
	t.sink(ctx, p)
}

func (t *Transport) setPhase(gen uint64, mode Mode, phase Phase) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	if t.state.Mode == mode && t.state.Phase == phase {
		t.mu.Unlock()
		return
	}
	t.state.Mode = mode
	t.state.Phase = phase
	snap := t.state
	t.mu.Unlock()
	t.notifyState(snap)
}

func (t *Transport) recordPushFailure(gen uint64) int {
	t.mu.Lock()
	if gen != t.gen {
		n := t.state.RetryCount
		t.mu.Unlock()
		return n
	}
	t.state.RetryCount++
	n := t.state.RetryCount
	snap := t.state
	t.mu.Unlock()
	t.notifyState(snap)
	return n
}

func (t *Transport) resetRetries(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state.RetryCount == 0 {
		t.mu.Unlock()
		return
	}
	t.state.RetryCount = 0
	snap := t.state
	t.mu.Unlock()
	t.backoff.Reset()
	t.notifyState(snap)
}

func (t *Transport) fallBack(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.state.FellBack = true
	t.state.Mode = ModePull
	t.mu.Unlock()
	t.logger.Warn("push retry budget exhausted, falling back to polling",
		zap.Duration("poll_interval", t.pollInterval))
}

func (t *Transport) notifyState(s ConnectionState) {
	if t.observer != nil {
		t.observer.StateChanged(s)
	}
}
