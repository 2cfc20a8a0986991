package datastar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Values of the headers sent with every Datastar response.
const (
	CacheControl = "no-cache"
	Connection   = "keep-alive"
	ContentType  = "text/event-stream"
)

// Canonicalized header keys.
const (
	headerCacheControl = "Cache-Control"
	headerConnection   = "Connection"
	headerContentType  = "Content-Type"
)

// Pre-allocated header values.
var (
	headerCacheControlValue = []string{CacheControl}
	headerConnectionValue   = []string{Connection}
	headerContentTypeValue  = []string{ContentType}
)

func setHeaders(h http.Header) {
	h[headerCacheControl] = headerCacheControlValue
	h[headerConnection] = headerConnectionValue
	h[headerContentType] = headerContentTypeValue
}

// ErrUpgradeUnsupported is returned when a response writer can't be flushed,
// so events can't be streamed through it.
var ErrUpgradeUnsupported = errors.New("go-datastar: upgrade unsupported")

// A Generator sends events to a single client. Each event is written as a
// whole and then flushed.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	w     io.Writer
	flush func() error
	// header is nil for generators not backed by an http.ResponseWriter.
	header     http.Header
	didUpgrade bool
}

type writeFlusher interface {
	http.ResponseWriter
	http.Flusher
}

// Upgrade prepares an HTTP response for streaming Datastar events.
// It fails with ErrUpgradeUnsupported if w doesn't implement http.Flusher.
//
// The stream headers are only sent when the first event is sent. Until
// then, other headers and status codes can safely be set.
func Upgrade(w http.ResponseWriter) (*Generator, error) {
	fw, ok := w.(writeFlusher)
	if !ok {
		return nil, ErrUpgradeUnsupported
	}

	return &Generator{
		w: fw,
		flush: func() error {
			fw.Flush()
			return nil
		},
		header: fw.Header(),
	}, nil
}

// NewGenerator creates a Generator that writes events to w and calls flush
// after each one. The caller is responsible for sending the stream headers.
func NewGenerator(w io.Writer, flush func() error) *Generator {
	if flush == nil {
		flush = func() error { return nil }
	}
	return &Generator{w: w, flush: flush, didUpgrade: true}
}

// Send writes the event to the client and flushes it.
func (g *Generator) Send(e Event) error {
	if !g.didUpgrade {
		setHeaders(g.header)
		if err := g.flush(); err != nil {
			return err
		}
		g.didUpgrade = true
	}
	if _, err := e.WriteTo(g.w); err != nil {
		return err
	}
	return g.flush()
}

// MergeFragments sends a merge-fragments event. See the MergeFragments function.
func (g *Generator) MergeFragments(fragments string, opts MergeFragmentsOptions) error {
	return g.Send(MergeFragments(fragments, opts))
}

// RemoveFragments sends a remove-fragments event. See the RemoveFragments function.
func (g *Generator) RemoveFragments(selector string, opts RemoveFragmentsOptions) error {
	return g.Send(RemoveFragments(selector, opts))
}

// MergeSignals sends a merge-signals event. See the MergeSignals function.
func (g *Generator) MergeSignals(signals string, opts MergeSignalsOptions) error {
	return g.Send(MergeSignals(signals, opts))
}

// MarshalSignals encodes v to JSON and sends it as a merge-signals event.
// Nothing is sent if encoding fails.
func (g *Generator) MarshalSignals(v any, opts MergeSignalsOptions) error {
	e, err := MarshalSignals(v, opts)
	if err != nil {
		return err
	}
	return g.Send(e)
}

// RemoveSignals sends a remove-signals event. See the RemoveSignals function.
func (g *Generator) RemoveSignals(paths []string, opts RemoveSignalsOptions) error {
	return g.Send(RemoveSignals(paths, opts))
}

// ExecuteScript sends an execute-script event. See the ExecuteScript function.
func (g *Generator) ExecuteScript(script string, opts ExecuteScriptOptions) error {
	return g.Send(ExecuteScript(script, opts))
}

// Redirect sends an event that navigates the client to url.
func (g *Generator) Redirect(url string, opts ExecuteScriptOptions) error {
	return g.Send(Redirect(url, opts))
}

// A StreamOption configures Stream.
type StreamOption func(*streamConfig)

type streamConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger Stream reports send failures to.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) StreamOption {
	return func(c *streamConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Stream sends every event received from events to the client, until events
// is closed or ctx is done. It returns nil when events is closed, the
// context's error when ctx is done, and the write error if sending fails.
func Stream(ctx context.Context, w http.ResponseWriter, events <-chan Event, opts ...StreamOption) error {
	cfg := streamConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	g, err := Upgrade(w)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := g.Send(e); err != nil {
				cfg.logger.WarnContext(ctx, "send error", "event", e.Type().String(), "err", err)
				return err
			}
		}
	}
}

// A Response is a fixed list of events sent in a single response body.
// It implements http.Handler.
type Response struct {
	events []Event
}

// NewResponse creates a response with the given events.
func NewResponse(events ...Event) *Response {
	return &Response{events: events}
}

// Push appends an event to the response.
func (r *Response) Push(e Event) {
	r.events = append(r.events, e)
}

// Events returns the response's events.
func (r *Response) Events() []Event {
	return append([]Event(nil), r.events...)
}

// WriteTo writes all the events to w, in order.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, e := range r.events {
		m, err := e.WriteTo(w)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *Response) String() string {
	s := strings.Builder{}
	_, _ = r.WriteTo(&s)
	return s.String()
}

// ServeHTTP writes the stream headers followed by all the events.
func (r *Response) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	setHeaders(w.Header())
	_, _ = r.WriteTo(w)
}
