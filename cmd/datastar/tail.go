package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tmaxmax/go-datastar"
	"github.com/tmaxmax/go-datastar/internal/config"
	"github.com/tmaxmax/go-datastar/internal/follow"
)

const tailLongDesc string = `Print the events of a remote Datastar stream.

The signals are sent as JSON in the datastar query parameter. The connection
is reattempted when it drops, waiting for the retryDuration of the last event.`

const tailShortDesc string = "Print the events of a remote stream"

var tailFlags = []string{config.FlagURL, config.FlagSignals, config.FlagMaxRetries}

func newTailCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: tailShortDesc,
		Long:  tailLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.tail(ctx, cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagSignals)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxRetries)

	return cmd
}

func (a *app) tail(ctx context.Context, out io.Writer) error {
	r, err := follow.NewRequest(ctx, a.cfg.Tail.URL, []byte(a.cfg.Tail.Signals))
	if err != nil {
		return err
	}

	f := &follow.Follower{
		MaxRetries: a.cfg.Tail.MaxRetries,
		Logger:     a.logger,
	}

	a.logger.Debug("following", "url", r.URL.String(), "max_retries", f.MaxRetries)

	err = f.Follow(r, func(e datastar.Event) error {
		_, err := e.WriteTo(out)
		return err
	})
	if err != nil {
		return fmt.Errorf("following %s: %w", a.cfg.Tail.URL, err)
	}
	return nil
}
