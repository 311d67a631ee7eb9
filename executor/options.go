package executor

import (
	"github.com/joeycumines/go-unistate/internal/logging"
)

// executorOptions holds configuration for [Main] and [Queue].
type executorOptions struct {
	logger *logging.Logger
}

// Option configures a [Main] or [Queue] instance.
type Option interface {
	applyExecutor(*executorOptions) error
}

// executorOptionImpl implements Option.
type executorOptionImpl struct {
	applyExecutorFunc func(*executorOptions) error
}

func (o *executorOptionImpl) applyExecutor(opts *executorOptions) error {
	return o.applyExecutorFunc(opts)
}

// WithLogger configures the logger used to report recovered panics and
// submission failures. Defaults to the package-level logger (which may be
// nil, disabling logging).
func WithLogger(logger *logging.Logger) Option {
	return &executorOptionImpl{func(opts *executorOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies Option instances to executorOptions.
func resolveOptions(opts []Option) (*executorOptions, error) {
	cfg := &executorOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyExecutor(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
