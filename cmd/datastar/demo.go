package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tmaxmax/go-datastar"
	"github.com/tmaxmax/go-datastar/dsfiber"
)

const defaultTicks = 5

const indexPage = `<!doctype html>
<html>
<head>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-beta.1/bundles/datastar.js"></script>
</head>
<body data-signals="{ticks: 5}">
<div id="clock"></div>
<p>Ticks left: <span data-text="$ticks"></span></p>
<button data-on-click="@get('/events')">Start</button>
<button data-on-click="@get('/reset')">Reset</button>
</body>
</html>
`

// demoSignals are the signals the demo page sends.
type demoSignals struct {
	Ticks int `json:"ticks"`
}

type demo struct {
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func newDemo(interval time.Duration, logger *slog.Logger) *demo {
	return &demo{interval: interval, logger: logger, now: time.Now}
}

func (d *demo) eventID() datastar.EventID {
	return datastar.MustEventID(uuid.NewString())
}

// events streams ticks clock updates, counting the ticks down in the client's
// signals, and finally runs a script. The channel is closed when done or when
// ctx is canceled.
func (d *demo) events(ctx context.Context, ticks int) <-chan datastar.Event {
	if ticks <= 0 {
		ticks = defaultTicks
	}

	ch := make(chan datastar.Event)
	send := func(e datastar.Event) bool {
		select {
		case ch <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)

		t := time.NewTicker(d.interval)
		defer t.Stop()

		for left := ticks; left > 0; left-- {
			clock := fmt.Sprintf(`<div id="clock">%s</div>`, d.now().Format(time.TimeOnly))
			if !send(datastar.MergeFragments(clock, datastar.MergeFragmentsOptions{EventID: d.eventID()})) {
				return
			}
			signals, err := datastar.MarshalSignals(demoSignals{Ticks: left - 1}, datastar.MergeSignalsOptions{})
			if err != nil {
				d.logger.ErrorContext(ctx, "encoding signals", "err", err)
				return
			}
			if !send(signals) {
				return
			}

			select {
			case <-t.C:
			case <-ctx.Done():
				return
			}
		}

		send(datastar.ExecuteScript(`console.log("done")`, datastar.ExecuteScriptOptions{EventID: d.eventID()}))
	}()

	return ch
}

func (d *demo) reset() *datastar.Response {
	return datastar.NewResponse(
		datastar.RemoveFragments("#clock", datastar.RemoveFragmentsOptions{}),
		datastar.MergeSignals(fmt.Sprintf(`{"ticks":%d}`, defaultTicks), datastar.MergeSignalsOptions{}),
	)
}

func (d *demo) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, indexPage)
	})
	mux.HandleFunc("GET /events", d.serveEvents)
	mux.Handle("GET /reset", d.reset())
	return mux
}

func (d *demo) serveEvents(w http.ResponseWriter, r *http.Request) {
	var s demoSignals
	if err := datastar.ReadSignals(r, &s); err != nil {
		d.logger.DebugContext(r.Context(), "rejected request", "err", err)
		datastar.Reject(w, err)
		return
	}

	d.logger.InfoContext(r.Context(), "stream started", "engine", "http", "ticks", s.Ticks, "remote", r.RemoteAddr)
	err := datastar.Stream(r.Context(), w, d.events(r.Context(), s.Ticks), datastar.WithLogger(d.logger))
	d.logger.InfoContext(r.Context(), "stream ended", "engine", "http", "err", err)
}

func (d *demo) fiberApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(indexPage)
	})
	app.Get("/events", d.fiberEvents)
	app.Get("/reset", dsfiber.Handler(d.reset()))

	return app
}

func (d *demo) fiberEvents(c *fiber.Ctx) error {
	var s demoSignals
	if err := dsfiber.ReadSignals(c, &s); err != nil {
		d.logger.Debug("rejected request", "err", err)
		return dsfiber.Reject(c, err)
	}

	d.logger.Info("stream started", "engine", "fiber", "ticks", s.Ticks, "remote", c.IP())
	return dsfiber.Stream(c, func(g *datastar.Generator) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		for e := range d.events(ctx, s.Ticks) {
			if err := g.Send(e); err != nil {
				d.logger.Warn("send error", "event", e.Type().String(), "err", err)
				return err
			}
		}
		d.logger.Info("stream ended", "engine", "fiber")
		return nil
	})
}
