package config

import "time"

const (
	defaultListen     = ":8080"
	defaultEngine     = EngineHTTP
	defaultInterval   = time.Second
	defaultTailURL    = "http://localhost:8080/events"
	defaultMaxRetries = -1
)

// NewDefaultConfig returns a Config with defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Serve: ServeConfig{
			Listen:   defaultListen,
			Engine:   defaultEngine,
			Interval: defaultInterval,
		},
		Tail: TailConfig{
			URL:        defaultTailURL,
			MaxRetries: defaultMaxRetries,
		},
		Log: LogConfig{
			Pretty: true,
		},
	}
}
