package reactive

import (
	"github.com/joeycumines/go-unistate/executor"
)

type (
	// Observer receives values.
	Observer[T any] func(value T)

	// Publisher is a source of values that may be subscribed to.
	Publisher[T any] interface {
		// Subscribe registers observer, invoked via exec. The semantics of
		// values delivered prior to subsequent values (e.g. replay) are
		// defined by the implementation.
		Subscribe(exec executor.Executor, observer Observer[T]) *Subscription
	}

	// Observable is a [Publisher] with a current value, that replays the
	// current value to each new subscriber.
	Observable[T any] interface {
		Publisher[T]

		// Value returns the current value.
		Value() T

		// SubscribeChanges is like Subscribe, but without replay.
		SubscribeChanges(exec executor.Executor, observer Observer[T]) *Subscription
	}
)
