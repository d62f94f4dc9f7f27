package deltacrown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Fetcher defines the DeltaCrown reads used by the sync clients.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchNotificationCounts(ctx context.Context) (NotificationCounts, error)
	FetchTournamentStateRaw(ctx context.Context, slug string) ([]byte, error)
	OpenNotificationStream(ctx context.Context, lastEventID string) (*EventStream, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the DeltaCrown HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	stream    *http.Client
	userAgent string
	session   string
	clientID  string
}

const (
	defaultBaseURL    = "http://127.0.0.1:8000"
	defaultUserAgent  = "crownwatch/0.1"
	sessionCookieName = "sessionid"
	requestTimeout    = 10 * time.Second
	maxResponseBytes  = 1 << 20
)

// NewClient builds a Client for the given site root. sessionCookie is the
// Django session id; leave it empty for anonymous access.
func NewClient(baseURL, sessionCookie string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		// Streams stay open indefinitely; cancellation goes through the context.
		stream:    &http.Client{},
		userAgent: defaultUserAgent,
		session:   strings.TrimSpace(sessionCookie),
		clientID:  uuid.NewString(),
	}, nil
}

// Authenticated reports whether a session cookie is configured.
func (c *Client) Authenticated() bool {
	return c != nil && c.session != ""
}

// BaseURL returns the normalized site root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchUnreadCount returns the number of unread notifications.
func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	var payload CountResponse
	if err := c.do(ctx, &url.URL{Path: "/notifications/unread_count/"}, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// FetchPendingFollowRequests returns the number of pending follow requests.
func (c *Client) FetchPendingFollowRequests(ctx context.Context) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("status", "PENDING")
	rel := &url.URL{Path: "/me/follow-requests/", RawQuery: values.Encode()}
	var payload CountResponse
	if err := c.do(ctx, rel, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// FetchNotificationCounts reads both counters concurrently and combines them
// into the same shape the notification stream pushes.
func (c *Client) FetchNotificationCounts(ctx context.Context) (NotificationCounts, error) {
	if c == nil {
		return NotificationCounts{}, fmt.Errorf("client is nil")
	}
	var counts NotificationCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.FetchUnreadCount(gctx)
		if err != nil {
			return fmt.Errorf("unread count: %w", err)
		}
		counts.UnreadNotifications = n
		return nil
	})
	g.Go(func() error {
		n, err := c.FetchPendingFollowRequests(gctx)
		if err != nil {
			return fmt.Errorf("follow requests: %w", err)
		}
		counts.PendingFollowRequests = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return NotificationCounts{}, err
	}
	return counts, nil
}

// FetchTournamentStateRaw returns the undecoded tournament state payload.
func (c *Client) FetchTournamentStateRaw(ctx context.Context, slug string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("tournament slug required")
	}
	// Path holds the decoded form; RawPath keeps a "/" inside the slug escaped.
	rel := &url.URL{
		Path:    "/tournaments/api/" + slug + "/state/",
		RawPath: "/tournaments/api/" + url.PathEscape(slug) + "/state/",
	}
	return c.getRaw(ctx, rel)
}

// OpenNotificationStream opens the server-sent event stream. It returns once
// the server has answered with an event-stream response. A non-empty
// lastEventID is sent as Last-Event-ID so the server can resume.
func (c *Client) OpenNotificationStream(ctx context.Context, lastEventID string) (*EventStream, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/notifications/stream/"}
	req, err := c.newRequest(ctx, rel, "text/event-stream")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api %s returned content type %q, want text/event-stream", rel.String(), ct)
	}
	return NewEventStream(resp.Body), nil
}

func (c *Client) do(ctx context.Context, rel *url.URL, dest any) error {
	body, err := c.getRaw(ctx, rel)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, rel *url.URL) ([]byte, error) {
	req, err := c.newRequest(ctx, rel, "application/json")
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, rel *url.URL, accept string) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("X-Client-ID", c.clientID)
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.session})
	}
	return req, nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base_url %q: missing host", baseURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
