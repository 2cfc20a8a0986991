package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag. Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "serve.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen     = "listen"
	FlagEngine     = "engine"
	FlagInterval   = "interval"
	FlagURL        = "url"
	FlagSignals    = "signals"
	FlagMaxRetries = "max-retries"
	FlagDebug      = "debug"
	FlagJSON       = "json"
	FlagPretty     = "pretty"
)

// Flags holds every flag of the datastar command.
var Flags = FlagSet{
	FlagListen:     {Name: "listen", Shorthand: "l", ViperKey: "serve.listen", Description: "Address to listen on"},
	FlagEngine:     {Name: "engine", Shorthand: "e", ViperKey: "serve.engine", Description: "HTTP engine (http, fiber)"},
	FlagInterval:   {Name: "interval", ViperKey: "serve.interval", Description: "Time between clock updates"},
	FlagURL:        {Name: "url", Shorthand: "u", ViperKey: "tail.url", Description: "Event stream URL to follow"},
	FlagSignals:    {Name: "signals", Shorthand: "s", ViperKey: "tail.signals", Description: "JSON signals sent with the request"},
	FlagMaxRetries: {Name: "max-retries", ViperKey: "tail.max_retries", Description: "Reconnection attempts, negative for unlimited"},
	FlagDebug:      {Name: "debug", Shorthand: "d", ViperKey: "log.debug", Description: "Enable debug logging"},
	FlagJSON:       {Name: "json", ViperKey: "log.json", Description: "Log in JSON"},
	FlagPretty:     {Name: "pretty", ViperKey: "log.pretty", Description: "Colorized log output"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().StringP(def.Name, def.Shorthand, defaults().GetString(def.ViperKey), def.Description)
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().IntP(def.Name, def.Shorthand, defaults().GetInt(def.ViperKey), def.Description)
}

// AddDurationFlag registers a duration flag on cmd from the given FlagSet.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, key string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().DurationP(def.Name, def.Shorthand, defaults().GetDuration(def.ViperKey), def.Description)
}

// AddPersistentBoolFlag registers a bool flag inherited by the subcommands of cmd.
func AddPersistentBoolFlag(cmd *cobra.Command, fs FlagSet, key string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.PersistentFlags().BoolP(def.Name, def.Shorthand, defaults().GetBool(def.ViperKey), def.Description)
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this after InitViper to connect flags to the
// viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
