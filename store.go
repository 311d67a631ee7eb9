package unistate

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/logging"
	"github.com/joeycumines/go-unistate/reactive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Mutation applies action to state, in place.
type Mutation[S, A any] func(state *S, action A)

// Action sources, recorded on commit spans.
const (
	sourcePrivate = `private`
	sourceShared  = `shared`
)

// Store owns a state value of type S, changed only by applying actions of
// type A, via a [Mutation]. See the package documentation for details.
//
// State values are shared with observers, so S should be treated as
// immutable outside the mutation, e.g. a mutation should replace, rather than
// modify, any maps or slices it contains.
type Store[S, A any] struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	logger   *logging.Logger
	tracer   trace.Tracer
	executor executor.Executor
	mutate   Mutation[S, A]
	state    *reactive.Variable[S]
	constant *reactive.Constant[S]
	private  *Dispatcher[A]
	shared   *Dispatcher[A]
	kind     Kind

	privateKey Key
	sharedKey  Key

	commits atomic.Uint64
	closed  atomic.Bool
}

// NewStore returns a Store holding initial, subscribed to its private
// dispatcher, and the shared dispatcher of its kind. [WithRegistry] is
// required.
func NewStore[S, A any](initial S, mutate Mutation[S, A], opts ...Option) (*Store[S, A], error) {
	if mutate == nil {
		return nil, ErrNilMutation
	}
	cfg, err := resolveStoreOptions[S](opts)
	if err != nil {
		return nil, err
	}

	x := &Store[S, A]{
		logger:   cfg.logger,
		tracer:   cfg.tracerProvider.Tracer(instrumentationName),
		executor: cfg.executor,
		mutate:   mutate,
		state:    reactive.NewVariable(initial),
		private:  NewDispatcher[A](),
		shared:   SharedDispatcher[A](cfg.registry, cfg.kind),
		kind:     cfg.kind,
	}
	x.constant = x.state.Constant()
	x.private.setLogger(x.logger)

	x.privateKey = x.private.Subscribe(x.executor, func(action A) { x.commit(sourcePrivate, action) })
	x.sharedKey = x.shared.Subscribe(x.executor, func(action A) { x.commit(sourceShared, action) })

	logging.Or(x.logger).Debug().
		Str(`category`, logging.CategoryStore).
		Str(`kind`, string(x.kind)).
		Log(`store created`)

	return x, nil
}

// Actions returns the facade dispatching to this store only.
func (x *Store[S, A]) Actions() Actions[A] {
	return Actions[A]{dispatcher: x.private}
}

// SharedActions returns the facade dispatching to every store of this
// store's kind, within the same registry.
func (x *Store[S, A]) SharedActions() Actions[A] {
	return Actions[A]{dispatcher: x.shared}
}

// State returns the state, as a read-only reactive value.
func (x *Store[S, A]) State() *reactive.Constant[S] {
	return x.constant
}

// Value returns the current state.
func (x *Store[S, A]) Value() S {
	return x.state.Value()
}

// Kind returns the kind of the store.
func (x *Store[S, A]) Kind() Kind {
	return x.kind
}

// Commits returns the number of actions applied.
func (x *Store[S, A]) Commits() uint64 {
	return x.commits.Load()
}

// Close unsubscribes the store from both dispatchers. Actions dispatched
// after Close are not applied, including any already scheduled on the
// executor but not yet started. Subscribers to the state are unaffected.
// Subsequent calls are no-ops.
func (x *Store[S, A]) Close() {
	if !x.closed.CompareAndSwap(false, true) {
		return
	}
	x.private.Unsubscribe(x.privateKey)
	x.shared.Unsubscribe(x.sharedKey)
	logging.Or(x.logger).Debug().
		Str(`category`, logging.CategoryStore).
		Str(`kind`, string(x.kind)).
		Uint64(`commits`, x.commits.Load()).
		Log(`store closed`)
}

// commit applies action, under the lock of the state variable, then
// broadcasts the new state. A panicking mutation is logged, and its result is
// discarded, though it may have modified values referenced by the state.
func (x *Store[S, A]) commit(source string, action A) {
	if x.closed.Load() {
		return
	}

	_, span := x.tracer.Start(context.Background(), `unistate.commit`, trace.WithAttributes(
		attribute.String(`unistate.kind`, string(x.kind)),
		attribute.String(`unistate.source`, source),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, fmt.Sprint(r))
			span.RecordError(logging.PanicError{Value: r})
			logging.Recovered(x.logger, logging.CategoryStore, r)
		}
	}()

	x.state.Modify(func(state *S) {
		next := *state
		x.mutate(&next, action)
		*state = next
	})

	span.SetAttributes(attribute.Int64(`unistate.commit`, int64(x.commits.Add(1))))
}

// Select returns a read-only reactive value derived from the state of store.
// The selector is applied lazily, on each read, and each delivery to each
// subscriber, so it should be cheap, and free of side effects.
func Select[S, A, F any](store *Store[S, A], selector func(state S) F) *reactive.Constant[F] {
	return reactive.Map[S, F](store.state, selector)
}
