// Package config loads the settings of the datastar command from defaults,
// an optional config file, DATASTAR_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Engines the serve command can run on.
const (
	EngineHTTP  = "http"
	EngineFiber = "fiber"
)

// Config is the complete configuration of the datastar command.
type Config struct {
	Serve ServeConfig `mapstructure:"serve"`
	Tail  TailConfig  `mapstructure:"tail"`
	Log   LogConfig   `mapstructure:"log"`
}

// ServeConfig configures the demo server.
type ServeConfig struct {
	Listen string `mapstructure:"listen"`
	// Engine is either EngineHTTP or EngineFiber.
	Engine string `mapstructure:"engine"`
	// Interval between two clock updates on the event stream.
	Interval time.Duration `mapstructure:"interval"`
}

// TailConfig configures the follower of remote streams.
type TailConfig struct {
	URL string `mapstructure:"url"`
	// Signals is the JSON object sent in the datastar query parameter.
	Signals    string `mapstructure:"signals"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Debug  bool `mapstructure:"debug"`
	JSON   bool `mapstructure:"json"`
	Pretty bool `mapstructure:"pretty"`
}

// Errors returned by Validate.
var (
	ErrUnknownEngine = errors.New("unknown engine")
	ErrInvalidListen = errors.New("listen address is empty")
	ErrInvalidTick   = errors.New("interval must be positive")
)

// Validate checks the values that can't be used as they are.
func (c *Config) Validate() error {
	switch c.Serve.Engine {
	case EngineHTTP, EngineFiber:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownEngine, c.Serve.Engine, EngineHTTP, EngineFiber)
	}
	if c.Serve.Listen == "" {
		return ErrInvalidListen
	}
	if c.Serve.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTick, c.Serve.Interval)
	}
	return nil
}

// Load reads the configuration out of v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
