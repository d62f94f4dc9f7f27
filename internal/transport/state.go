package transport

import (
	"context"
	"time"
)

// Mode is the delivery channel currently in use.
type Mode int

const (
	ModePush Mode = iota
	ModePull
	ModeDisconnected
)

func (m Mode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModePull:
		return "pull"
	default:
		return "disconnected"
	}
}

// Phase is the lifecycle position of a transport.
type Phase int

const (
	PhaseInit Phase = iota
	PhasePushPending
	PhasePushActive
	PhasePullActive
	PhaseSuspended
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhasePushPending:
		return "push-pending"
	case PhasePushActive:
		return "push-active"
	case PhasePullActive:
		return "pull-active"
	case PhaseSuspended:
		return "suspended"
	default:
		return "disconnected"
	}
}

// ConnectionState describes the health of one transport.
type ConnectionState struct {
	Mode         Mode
	Phase        Phase
	RetryCount   int
	MaxRetries   int
	PollInterval time.Duration
	// FellBack is set once the push retry budget is exhausted. It never resets.
	FellBack bool
}

// Payload is one raw state message delivered to the sink.
type Payload struct {
	// Seq increases monotonically per transport. Pull payloads take their
	// sequence when the request is issued, push payloads on arrival.
	Seq        uint64
	Source     Mode
	Data       []byte
	ReceivedAt time.Time
}

// Sink receives payloads. It is called from the transport goroutine, one
// payload at a time, and must not call Stop or Suspend on its own transport.
type Sink func(ctx context.Context, p Payload)

// PullSource performs one request/response fetch of the full state.
type PullSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// PushSource opens a long-lived push channel. Open returns once the channel
// reports a healthy open state.
type PushSource interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open push channel.
type Stream interface {
	// Next blocks until the next message arrives. It returns an error when
	// the channel fails or is closed by the server.
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Observer is notified about transport health. Calls are made outside of
// the transport's lock.
type Observer interface {
	StateChanged(ConnectionState)
	PushFailed(err error)
	PullFailed(err error)
}
