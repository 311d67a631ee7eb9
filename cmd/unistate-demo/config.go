package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joeycumines/logiface"
)

// executor names
const (
	execImmediate = `immediate`
	execMain      = `main`
	execLoop      = `loop`
	execGo        = `go`
)

// config is loaded from the environment, then overridden by flags.
type config struct {
	Executor string        `env:"EXECUTOR"  envDefault:"immediate"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
	Workers  int           `env:"WORKERS"   envDefault:"1"`
	Timeout  time.Duration `env:"TIMEOUT"   envDefault:"30s"`
}

const envPrefix = `UNISTATE_`

func loadConfig(environment map[string]string) (config, error) {
	var cfg config
	opts := env.Options{Prefix: envPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	switch c.Executor {
	case execImmediate, execMain, execLoop, execGo:
	default:
		return fmt.Errorf("invalid executor: %s (must be %s, %s, %s, or %s)", c.Executor, execImmediate, execMain, execLoop, execGo)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// parseLevel accepts the short syslog keywords used by logiface.Level.String.
func parseLevel(s string) (logiface.Level, error) {
	for level := logiface.LevelDisabled; level <= logiface.LevelTrace; level++ {
		if level.String() == s {
			return level, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("invalid log level: %s", s)
}
