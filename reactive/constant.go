package reactive

import (
	"github.com/joeycumines/go-unistate/executor"
)

// Constant is a read-only projection of an [Observable]: it exposes the
// value and its changes, but not the means to write. A transform may be
// applied (see [Map]), in which case it is applied lazily, on every read,
// and separately for every delivery to every subscriber.
type Constant[T any] struct {
	value     func() T
	subscribe func(exec executor.Executor, observer Observer[T], replay bool) *Subscription
}

var _ Observable[int] = (*Constant[int])(nil)

// NewConstant returns a read-only projection of source.
func NewConstant[T any](source Observable[T]) *Constant[T] {
	if c, ok := source.(*Constant[T]); ok {
		return c
	}
	return &Constant[T]{
		value: source.Value,
		subscribe: func(exec executor.Executor, observer Observer[T], replay bool) *Subscription {
			if replay {
				return source.Subscribe(exec, observer)
			}
			return source.SubscribeChanges(exec, observer)
		},
	}
}

// Map returns a read-only projection of source, transformed by transform.
func Map[T, U any](source Observable[T], transform func(value T) U) *Constant[U] {
	if transform == nil {
		panic(`reactive: nil transform`)
	}
	return &Constant[U]{
		value: func() U { return transform(source.Value()) },
		subscribe: func(exec executor.Executor, observer Observer[U], replay bool) *Subscription {
			if observer == nil {
				panic(`reactive: nil observer`)
			}
			fn := func(value T) { observer(transform(value)) }
			if replay {
				return source.Subscribe(exec, fn)
			}
			return source.SubscribeChanges(exec, fn)
		},
	}
}

// Just returns a Constant that always holds value, and never changes.
func Just[T any](value T) *Constant[T] {
	return &Constant[T]{
		value: func() T { return value },
		subscribe: func(exec executor.Executor, observer Observer[T], replay bool) *Subscription {
			if exec == nil || observer == nil {
				panic(`reactive: nil executor or observer`)
			}
			subscription := NewSubscription(nil)
			if replay {
				exec.Execute(func() {
					if !subscription.Unsubscribed() {
						observer(value)
					}
				})
			}
			return subscription
		},
	}
}

// Value returns the current value.
func (x *Constant[T]) Value() T {
	return x.value()
}

// Subscribe registers observer, invoked via exec, with the current value,
// followed by every subsequent value.
func (x *Constant[T]) Subscribe(exec executor.Executor, observer Observer[T]) *Subscription {
	return x.subscribe(exec, observer, true)
}

// SubscribeChanges registers observer, invoked via exec, with every value
// written after this call.
func (x *Constant[T]) SubscribeChanges(exec executor.Executor, observer Observer[T]) *Subscription {
	return x.subscribe(exec, observer, false)
}
