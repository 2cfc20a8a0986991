package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmaxmax/go-datastar/internal/config"
)

const serveLongDesc string = `Run the demo server.

The page at / starts a clock on /events which ticks a few times, counting down
a signal, and then runs a script. /reset removes the clock in a single response.`

const serveShortDesc string = "Run the demo server"

var serveFlags = []string{config.FlagListen, config.FlagEngine, config.FlagInterval}

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagEngine)
	config.AddDurationFlag(cmd, config.Flags, config.FlagInterval)

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	d := newDemo(a.cfg.Serve.Interval, a.logger)
	listen := a.cfg.Serve.Listen

	errChan := make(chan error, 1)
	var shutdown func(context.Context) error

	switch a.cfg.Serve.Engine {
	case config.EngineFiber:
		fapp := d.fiberApp()
		shutdown = func(ctx context.Context) error {
			return fapp.ShutdownWithContext(ctx)
		}
		go func() {
			errChan <- fapp.Listen(listen)
		}()
	default:
		s := &http.Server{
			Addr:              listen,
			Handler:           d.handler(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		shutdown = s.Shutdown
		go func() {
			errChan <- s.ListenAndServe()
		}()
	}

	a.logger.Info("starting demo server", "listen", listen, "engine", a.cfg.Serve.Engine, "interval", a.cfg.Serve.Interval)

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return shutdown(shutdownCtx)
}
