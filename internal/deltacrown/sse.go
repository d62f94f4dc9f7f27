package deltacrown

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	sseInitialBuffer = 64 * 1024
	sseMaxLine       = 1024 * 1024
)

// Event is one dispatched server-sent event.
type Event struct {
	ID    string
	Type  string
	Data  []byte
	Retry time.Duration
}

// IsMessage reports whether the event would reach an EventSource onmessage
// handler, i.e. it is unnamed or explicitly named "message".
func (e Event) IsMessage() bool {
	return e.Type == "" || e.Type == "message"
}

// EventStream reads server-sent events from a response body.
type EventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	lastID  string
}

// NewEventStream wraps an event-stream body.
func NewEventStream(body io.ReadCloser) *EventStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, sseInitialBuffer), sseMaxLine)
	return &EventStream{body: body, scanner: scanner}
}

// LastEventID returns the id of the most recent event that carried one.
func (s *EventStream) LastEventID() string {
	return s.lastID
}

// Next blocks until a complete event is dispatched. It returns io.EOF when
// the server closes the stream; a trailing event without its blank-line
// terminator is discarded.
func (s *EventStream) Next() (Event, error) {
	var (
		ev      Event
		data    bytes.Buffer
		hasData bool
	)
	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")
		if line == "" {
			if !hasData {
				ev = Event{}
				continue
			}
			ev.Data = bytes.TrimSuffix(data.Bytes(), []byte("\n"))
			if ev.ID != "" {
				s.lastID = ev.ID
			}
			return ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "event":
			ev.Type = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				ev.ID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				ev.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
	if err := s.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("read event stream: %w", err)
	}
	return Event{}, io.EOF
}

// Close releases the underlying connection.
func (s *EventStream) Close() error {
	return s.body.Close()
}
