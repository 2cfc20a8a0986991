package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tmaxmax/go-datastar"
	"github.com/tmaxmax/go-datastar/internal/config"
	"github.com/tmaxmax/go-datastar/internal/logger"
)

func newTestDemo() *demo {
	d := newDemo(time.Millisecond, logger.Nop())
	d.now = func() time.Time {
		return time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	}
	return d
}

func eventsPath(signals string) string {
	return "/events?" + url.Values{datastar.QueryKey: {signals}}.Encode()
}

func decodeAll(t *testing.T, r io.Reader) []datastar.Event {
	t.Helper()

	var events []datastar.Event
	d := datastar.NewDecoder(r)
	for {
		e, err := d.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func requireDemoEvents(t *testing.T, events []datastar.Event) {
	t.Helper()

	require.Len(t, events, 5)

	expectedTypes := []datastar.EventType{
		datastar.EventTypeMergeFragments,
		datastar.EventTypeMergeSignals,
		datastar.EventTypeMergeFragments,
		datastar.EventTypeMergeSignals,
		datastar.EventTypeExecuteScript,
	}
	for i, e := range events {
		require.Equal(t, expectedTypes[i], e.Type(), "event %d", i)
	}

	require.Equal(t, []string{`<div id="clock">12:30:00</div>`}, events[0].Values("fragments"))
	require.Equal(t, []string{`{"ticks":1}`}, events[1].Values("signals"))
	require.Equal(t, []string{`{"ticks":0}`}, events[3].Values("signals"))
	require.Equal(t, []string{`console.log("done")`}, events[4].Values("script"))

	_, err := uuid.Parse(events[0].ID().String())
	require.NoError(t, err)
	require.NotEqual(t, events[0].ID(), events[2].ID())
}

func TestDemoHTTP(t *testing.T) {
	t.Parallel()

	d := newTestDemo()
	ts := httptest.NewServer(d.handler())
	t.Cleanup(ts.Close)

	t.Run("Events", func(t *testing.T) {
		res, err := http.Get(ts.URL + eventsPath(`{"ticks":2}`))
		require.NoError(t, err)
		defer res.Body.Close()

		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, datastar.ContentType, res.Header.Get("Content-Type"))
		requireDemoEvents(t, decodeAll(t, res.Body))
	})

	t.Run("Missing signals", func(t *testing.T) {
		res, err := http.Get(ts.URL + "/events?foo=1")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.Equal(t, "Query string with the format `?datastar=<json>` was not found", string(body))
	})

	t.Run("Reset", func(t *testing.T) {
		res, err := http.Get(ts.URL + "/reset")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		require.Equal(t, d.reset().String(), string(body))
	})

	t.Run("Index", func(t *testing.T) {
		res, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `data-on-click="@get('/events')"`)
	})
}

func TestDemoFiber(t *testing.T) {
	t.Parallel()

	d := newTestDemo()
	app := d.fiberApp()

	res, err := app.Test(httptest.NewRequest(http.MethodGet, eventsPath(`{"ticks":2}`), http.NoBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, datastar.ContentType, res.Header.Get("Content-Type"))
	requireDemoEvents(t, decodeAll(t, res.Body))

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/events", http.NoBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/reset", http.NoBody))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, d.reset().String(), string(body))
}

func TestTail(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestDemo().handler())
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"tail", "--url", ts.URL + "/events", "--signals", `{"ticks":1}`, "--max-retries", "0", "--pretty=false"})

	require.NoError(t, cmd.Execute())

	events := decodeAll(t, &out)
	require.Len(t, events, 3)
	require.Equal(t, datastar.EventTypeExecuteScript, events[2].Type())
}

func TestTailRejected(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestDemo().handler())
	t.Cleanup(ts.Close)

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"tail", "--url", ts.URL + "/events", "--max-retries", "3"})

	require.Error(t, cmd.Execute())
}

func TestServeInvalidEngine(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--engine", "gin"})

	require.ErrorIs(t, cmd.Execute(), config.ErrUnknownEngine)
}
