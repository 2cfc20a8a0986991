// Package follow reads Datastar events from a remote endpoint, reconnecting
// when the connection drops.
package follow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v4"

	"github.com/tmaxmax/go-datastar"
)

// The ResponseValidator type defines the type of the function that checks
// whether server responses are valid, before events are read from them.
//
// Returning an error type that implements the Temporary method will tell the
// follower to reconnect.
type ResponseValidator func(*http.Response) error

// A Follower connects to Datastar endpoints and hands every received event to
// a callback. It is safe for concurrent use.
type Follower struct {
	// The HTTP client to be used. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// A callback that's executed whenever a reconnection attempt starts.
	OnRetry backoff.Notify
	// Checks the response before events are read. Defaults to DefaultValidator.
	ResponseValidator ResponseValidator
	// The maximum number of reconnections to attempt when an error occurs.
	// If MaxRetries is negative, reconnection is attempted indefinitely.
	// Defaults to 0 (no retries).
	//
	// This counter is reset after every successful connection.
	MaxRetries int
	// The delay before the first reconnection. Afterwards the retryDuration of
	// the last received event is used. Defaults to datastar.DefaultRetryDuration.
	DefaultReconnectionTime time.Duration
	// Defaults to a logger that discards everything.
	Logger *slog.Logger
}

func contentType(header string) string {
	cts := strings.FieldsFunc(header, func(r rune) bool {
		return unicode.IsSpace(r) || r == ';' || r == ','
	})
	if len(cts) == 0 {
		return ""
	}
	return strings.ToLower(cts[0])
}

// StatusError is returned by DefaultValidator for responses that aren't 200 OK.
type StatusError struct {
	Code int
}

func (s *StatusError) Error() string {
	return fmt.Sprintf("expected status code %d %s, received %d %s", http.StatusOK, http.StatusText(http.StatusOK), s.Code, http.StatusText(s.Code))
}

// Temporary reports whether the server may answer successfully later.
func (s *StatusError) Temporary() bool {
	return s.Code == http.StatusTooManyRequests || s.Code >= http.StatusInternalServerError
}

// DefaultValidator checks the response status code to be 200 OK and the
// content type to be text/event-stream. Rate limiting and server errors are
// temporary, every other failure is permanent.
var DefaultValidator ResponseValidator = func(r *http.Response) error {
	if r.StatusCode != http.StatusOK {
		return &StatusError{Code: r.StatusCode}
	}
	cts := r.Header.Get("Content-Type")
	if ct := contentType(cts); ct != datastar.ContentType {
		return fmt.Errorf("expected content type to have %q, received %q", datastar.ContentType, cts)
	}
	return nil
}

// ConnectionError is the type that wraps all the connection errors that occur.
type ConnectionError struct {
	// The request for which the connection failed.
	Req *http.Request
	// The reason the operation failed.
	Err error
	// The reason why the request failed.
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("request failed: %s: %v", e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Temporary returns whether the underlying error is temporary.
// Streams that end in the middle of an event are temporary.
func (e *ConnectionError) Temporary() bool {
	if errors.Is(e.Err, datastar.ErrUnexpectedEOF) || errors.Is(e.Err, io.ErrUnexpectedEOF) {
		return true
	}
	var t interface{ Temporary() bool }
	if errors.As(e.Err, &t) {
		return t.Temporary()
	}
	return false
}

// Timeout returns whether the underlying error is caused by a timeout.
func (e *ConnectionError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) {
		return t.Timeout()
	}
	return false
}

func (e *ConnectionError) toPermanent() error {
	if e.Temporary() || e.Timeout() {
		return e
	}
	return backoff.Permanent(e)
}

func (f *Follower) withDefaults() Follower {
	c := *f
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.ResponseValidator == nil {
		c.ResponseValidator = DefaultValidator
	}
	if c.DefaultReconnectionTime <= 0 {
		c.DefaultReconnectionTime = datastar.DefaultRetryDuration
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// NewRequest creates a GET request to target which carries signals in the
// datastar query parameter, the way the Datastar client sends them.
// If signals is empty, the query is left untouched.
func NewRequest(ctx context.Context, target string, signals []byte) (*http.Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target: %w", err)
	}
	if len(signals) > 0 {
		q := u.Query()
		q.Set(datastar.QueryKey, string(signals))
		u.RawQuery = q.Encode()
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
}

// Follow sends r and calls fn with every event received in response.
// The caller goroutine is blocked until the stream ends, r's context is
// done or an error occurs. If the stream ends cleanly or the context is done,
// Follow returns nil.
//
// Failed connections are reattempted as many times as the Follower is
// configured to, waiting for the retryDuration of the last received event.
// The ID of the last event received is sent back in the Last-Event-ID header.
// Permanent errors (e.g. an invalid response) stop the follower immediately.
// Errors returned by fn stop the follower and are returned as they are; all
// other errors are of type *ConnectionError.
func (f *Follower) Follow(r *http.Request, fn func(datastar.Event) error) error {
	if r == nil {
		panic("go-datastar/follow: request cannot be nil")
	}

	c := f.withDefaults()
	ctx := r.Context()

	s := &session{
		follower: &c,
		req:      r.Clone(ctx),
		fn:       fn,
	}
	s.req.Header.Set("Accept", datastar.ContentType)
	s.req.Header.Set("Cache-Control", datastar.CacheControl)

	s.base = backoff.NewConstantBackOff(c.DefaultReconnectionTime)
	s.b = backoff.WithContext(s.base, ctx)
	if c.MaxRetries >= 0 {
		s.b = backoff.WithMaxRetries(s.b, uint64(c.MaxRetries))
	}

	notify := func(err error, d time.Duration) {
		c.Logger.WarnContext(ctx, "reconnecting", "url", s.req.URL.String(), "err", err, "delay", d)
		if c.OnRetry != nil {
			c.OnRetry(err, d)
		}
	}

	err := backoff.RetryNotify(s.connect, s.b, notify)
	if isSuccess(err) {
		return nil
	}
	return err
}

type session struct {
	follower    *Follower
	req         *http.Request
	fn          func(datastar.Event) error
	base        *backoff.ConstantBackOff
	b           backoff.BackOff
	lastEventID string
}

func (s *session) connect() error {
	if s.lastEventID != "" {
		s.req.Header.Set("Last-Event-ID", s.lastEventID)
	}

	res, err := s.follower.HTTPClient.Do(s.req)
	if err != nil {
		e := &ConnectionError{Req: s.req, Reason: "unable to execute request", Err: err}
		return e.toPermanent()
	}
	defer res.Body.Close()

	if err := s.follower.ResponseValidator(res); err != nil {
		e := &ConnectionError{Req: s.req, Reason: "response validation failed", Err: err}
		return e.toPermanent()
	}

	s.follower.Logger.DebugContext(s.req.Context(), "connected", "url", s.req.URL.String())
	s.b.Reset()

	return s.read(res.Body)
}

func (s *session) read(r io.Reader) error {
	d := datastar.NewDecoder(r)

	for {
		e, err := d.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if isSuccess(err) {
				return nil
			}
			ce := &ConnectionError{Req: s.req, Reason: "reading response body failed", Err: err}
			return ce.toPermanent()
		}

		if id := e.ID(); id.IsSet() {
			s.lastEventID = id.String()
		}
		if retry := e.Retry().Std(); retry != s.base.Interval {
			s.base.Interval = retry
			s.b.Reset()
		}

		if err := s.fn(e); err != nil {
			return backoff.Permanent(err)
		}
	}
}

func isSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
