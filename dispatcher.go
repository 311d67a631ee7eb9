package unistate

import (
	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/broadcast"
	"github.com/joeycumines/go-unistate/internal/logging"
	"github.com/joeycumines/go-unistate/syncx"
)

// Key identifies a subscription to a [Dispatcher].
type Key = syncx.Key

// Dispatcher is a publish/subscribe bus for actions of type A.
//
// Each call to [Dispatcher.Dispatch] delivers the action to the observers
// registered when it was called, each via its own executor, in the order
// the observers were registered. Dispatch calls are totally ordered: every
// observer sees actions in the same order, provided its executor preserves
// submission order. An action dispatched by an observer, during delivery, is
// delivered after the current delivery completes.
//
// The zero value is ready to use.
type Dispatcher[A any] struct {
	hub syncx.Mutex[broadcast.State[A]]
}

// NewDispatcher returns a new Dispatcher.
func NewDispatcher[A any]() *Dispatcher[A] {
	return new(Dispatcher[A])
}

// Subscribe registers observer, which will be invoked via exec with every
// action dispatched after this call, until unsubscribed. Neither exec nor
// observer may be nil.
func (x *Dispatcher[A]) Subscribe(exec executor.Executor, observer func(action A)) Key {
	return syncx.Modify(&x.hub, func(s *broadcast.State[A]) Key {
		return s.Subscribe(exec, observer)
	})
}

// Unsubscribe removes the observer identified by key, returning false if it
// was already removed. Once Unsubscribe returns, the observer will not be
// invoked, unless an invocation had already started.
func (x *Dispatcher[A]) Unsubscribe(key Key) bool {
	return syncx.Modify(&x.hub, func(s *broadcast.State[A]) bool {
		return s.Unsubscribe(key)
	})
}

// Dispatch delivers action to every current observer. When it returns, the
// action has been handed to each observer's executor, so observers using
// [executor.Immediate] have run, though observers using other executors may
// not have. If another goroutine is delivering earlier actions, Dispatch
// waits for them first. A Dispatch made from within an observer, on the
// delivering goroutine, returns immediately, and the action is delivered
// after the current delivery.
func (x *Dispatcher[A]) Dispatch(action A) {
	ticket := syncx.Modify(&x.hub, func(s *broadcast.State[A]) broadcast.Ticket {
		s.Broadcast(action)
		return s.Claim()
	})
	broadcast.Settle(&x.hub, dispatcherHub[A], ticket)
}

// Len returns the number of observers.
func (x *Dispatcher[A]) Len() int {
	return syncx.Modify(&x.hub, func(s *broadcast.State[A]) int { return s.Len() })
}

// setLogger configures the logger used to report panics raised by
// observers.
func (x *Dispatcher[A]) setLogger(logger *logging.Logger) {
	x.hub.Modify(func(s *broadcast.State[A]) { s.SetLogger(logger) })
}

func dispatcherHub[A any](s *broadcast.State[A]) *broadcast.State[A] { return s }
