package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tmaxmax/go-datastar/internal/config"
	"github.com/tmaxmax/go-datastar/internal/logger"
)

const rootLongDesc string = `Serve and inspect Datastar event streams.

  datastar serve    Run the demo server
  datastar tail     Print the events of a remote stream`

const rootShortDesc string = "Datastar event stream tools"

// app holds what every subcommand needs after flags and config are resolved.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

var globalFlags = []string{config.FlagDebug, config.FlagJSON, config.FlagPretty}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configFile string

	cmd := &cobra.Command{
		Use:          "datastar",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, configFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a config file (toml, yaml or json)")
	for _, key := range globalFlags {
		config.AddPersistentBoolFlag(cmd, config.Flags, key)
	}

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newTailCmd(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	v, err := config.InitViper(configFile)
	if err != nil {
		return err
	}

	keys := append([]string{}, globalFlags...)
	keys = append(keys, serveFlags...)
	keys = append(keys, tailFlags...)
	config.BindRegisteredFlags(v, cmd, config.Flags, keys)

	a.cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	a.logger = logger.New(
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithDebug(a.cfg.Log.Debug),
		logger.WithJSON(a.cfg.Log.JSON),
		logger.WithPretty(a.cfg.Log.Pretty),
	)
	return nil
}
