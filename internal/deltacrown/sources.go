package deltacrown

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/deltacrown/crownwatch/internal/transport"
)

var (
	_ transport.PullSource = NotificationPull{}
	_ transport.PushSource = (*NotificationPush)(nil)
	_ transport.PullSource = TournamentPull{}
)

// NotificationPull polls both notification counters.
type NotificationPull struct {
	Fetcher Fetcher
}

// Fetch returns the combined counters encoded like a stream message.
func (p NotificationPull) Fetch(ctx context.Context) ([]byte, error) {
	counts, err := p.Fetcher.FetchNotificationCounts(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return nil, fmt.Errorf("encode counts: %w", err)
	}
	return data, nil
}

// NotificationPush opens the notification event stream. Each reconnect
// resumes from the last event id the previous stream delivered.
type NotificationPush struct {
	fetcher Fetcher

	mu     sync.Mutex
	lastID string
}

// NewNotificationPush returns a push source reading from f.
func NewNotificationPush(f Fetcher) *NotificationPush {
	return &NotificationPush{fetcher: f}
}

// Open connects to the stream.
func (p *NotificationPush) Open(ctx context.Context) (transport.Stream, error) {
	es, err := p.fetcher.OpenNotificationStream(ctx, p.LastEventID())
	if err != nil {
		return nil, err
	}
	return &messageStream{events: es, push: p}, nil
}

// LastEventID returns the id sent on the next reconnect.
func (p *NotificationPush) LastEventID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastID
}

func (p *NotificationPush) remember(id string) {
	if id == "" {
		return
	}
	p.mu.Lock()
	p.lastID = id
	p.mu.Unlock()
}

// TournamentPull polls one tournament's state endpoint.
type TournamentPull struct {
	Fetcher Fetcher
	Slug    string
}

// Fetch returns the raw state payload.
func (p TournamentPull) Fetch(ctx context.Context) ([]byte, error) {
	return p.Fetcher.FetchTournamentStateRaw(ctx, p.Slug)
}

// messageStream yields the data of unnamed events only, the way an
// EventSource onmessage handler would see them.
type messageStream struct {
	events *EventStream
	push   *NotificationPush
}

func (m *messageStream) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := m.events.Next()
		if err != nil {
			return nil, err
		}
		m.push.remember(m.events.LastEventID())
		if !ev.IsMessage() || len(ev.Data) == 0 {
			continue
		}
		return ev.Data, nil
	}
}

func (m *messageStream) Close() error {
	return m.events.Close()
}
