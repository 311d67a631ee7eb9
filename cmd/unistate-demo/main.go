// Command unistate-demo drives a set of counter stores from a script file,
// dispatching private and shared actions from concurrent workers, using a
// configurable executor.
//
// Configuration is read from UNISTATE_* environment variables, and may be
// overridden by flags. Logs are written to stderr, as JSON.
//
// Example script (YAML, TOML is also supported):
//
//	stores: [left, right]
//	steps:
//	  - store: left
//	    action: increment
//	    repeat: 3
//	  - action: add
//	    amount: 10
//	    shared: true
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joeycumines/go-unistate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newCommand(nil, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newCommand builds the root command. The environment defaults to the
// process environment, if nil.
func newCommand(environment map[string]string, logOutput io.Writer) *cobra.Command {
	cfg, envErr := loadConfig(environment)

	cmd := &cobra.Command{
		Use:           `unistate-demo [flags] script.(yaml|yml|toml)`,
		Short:         `Drive counter stores from a script`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			level, _ := parseLevel(cfg.LogLevel)
			logger := newLogger(logOutput, level)
			unistate.SetLogger(logger)
			defer unistate.SetLogger(nil)

			s, err := loadScript(args[0])
			if err != nil {
				return err
			}

			if _, err := run(cmd.Context(), cfg, s, logger, cmd.OutOrStdout()); err != nil {
				logger.Err().Err(err).Log(`script failed`)
				return fmt.Errorf("run script: %w", err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Executor, `executor`, `e`, cfg.Executor, `executor: immediate, main, loop, or go (env `+envPrefix+`EXECUTOR)`)
	flags.StringVar(&cfg.LogLevel, `log-level`, cfg.LogLevel, `log level, e.g. info, debug, trace (env `+envPrefix+`LOG_LEVEL)`)
	flags.IntVarP(&cfg.Workers, `workers`, `w`, cfg.Workers, `number of goroutines replaying the script (env `+envPrefix+`WORKERS)`)
	flags.DurationVar(&cfg.Timeout, `timeout`, cfg.Timeout, `maximum duration (env `+envPrefix+`TIMEOUT)`)

	return cmd
}

func newLogger(w io.Writer, level logiface.Level) *unistate.Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}
