package unistate

import (
	"errors"

	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrRegistryRequired is returned by [NewStore] if no registry was
	// provided.
	ErrRegistryRequired = errors.New("unistate: registry must be provided via WithRegistry")

	// ErrNilMutation is returned by [NewStore] if the mutation is nil.
	ErrNilMutation = errors.New("unistate: mutation must not be nil")

	// ErrNilExecutor is returned by [WithExecutor] if the executor is nil.
	ErrNilExecutor = errors.New("unistate: executor must not be nil")
)

const instrumentationName = `github.com/joeycumines/go-unistate`

type (
	// storeOptions holds configuration for [Store].
	storeOptions struct {
		registry       *Registry
		executor       executor.Executor
		kind           Kind
		logger         *logging.Logger
		tracerProvider trace.TracerProvider
	}

	// registryOptions holds configuration for [Registry].
	registryOptions struct {
		logger *logging.Logger
	}

	// Option configures a [Store].
	Option interface {
		applyStore(*storeOptions) error
	}

	// RegistryOption configures a [Registry].
	RegistryOption interface {
		applyRegistry(*registryOptions) error
	}

	// SharedOption configures either a [Store] or a [Registry].
	SharedOption interface {
		Option
		RegistryOption
	}

	// storeOptionImpl implements Option.
	storeOptionImpl struct {
		applyStoreFunc func(*storeOptions) error
	}

	// sharedOptionImpl implements SharedOption.
	sharedOptionImpl struct {
		applyStoreFunc    func(*storeOptions) error
		applyRegistryFunc func(*registryOptions) error
	}
)

func (o *storeOptionImpl) applyStore(opts *storeOptions) error {
	return o.applyStoreFunc(opts)
}

func (o *sharedOptionImpl) applyStore(opts *storeOptions) error {
	return o.applyStoreFunc(opts)
}

func (o *sharedOptionImpl) applyRegistry(opts *registryOptions) error {
	return o.applyRegistryFunc(opts)
}

// WithRegistry configures the registry providing the shared dispatcher.
// Required.
func WithRegistry(registry *Registry) Option {
	return &storeOptionImpl{func(opts *storeOptions) error {
		opts.registry = registry
		return nil
	}}
}

// WithExecutor configures the executor actions are applied on. Defaults to
// [executor.Immediate].
func WithExecutor(exec executor.Executor) Option {
	return &storeOptionImpl{func(opts *storeOptions) error {
		if exec == nil {
			return ErrNilExecutor
		}
		opts.executor = exec
		return nil
	}}
}

// WithKind overrides the kind of the store, which determines the shared
// dispatcher. Defaults to [KindOf] the state type.
func WithKind(kind Kind) Option {
	return &storeOptionImpl{func(opts *storeOptions) error {
		opts.kind = kind
		return nil
	}}
}

// WithTracerProvider configures the provider of the tracer used to record
// commits. Defaults to the global provider (see [otel.GetTracerProvider]).
func WithTracerProvider(provider trace.TracerProvider) Option {
	return &storeOptionImpl{func(opts *storeOptions) error {
		opts.tracerProvider = provider
		return nil
	}}
}

// WithLogger configures the logger. Defaults to the package-level logger
// (see [SetLogger]).
func WithLogger(logger *Logger) SharedOption {
	return &sharedOptionImpl{
		applyStoreFunc: func(opts *storeOptions) error {
			opts.logger = logger
			return nil
		},
		applyRegistryFunc: func(opts *registryOptions) error {
			opts.logger = logger
			return nil
		},
	}
}

// resolveStoreOptions applies Option instances to storeOptions, with the
// defaults for state type S.
func resolveStoreOptions[S any](opts []Option) (*storeOptions, error) {
	cfg := &storeOptions{
		executor: executor.Immediate,
		kind:     KindOf[S](),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyStore(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registry == nil {
		return nil, ErrRegistryRequired
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	return cfg, nil
}

// resolveRegistryOptions applies RegistryOption instances to registryOptions.
func resolveRegistryOptions(opts []RegistryOption) (*registryOptions, error) {
	cfg := &registryOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRegistry(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
