package reactive

import (
	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/broadcast"
	"github.com/joeycumines/go-unistate/syncx"
)

// Variable is an observable value. Reads and writes are exclusive, and every
// write is broadcast to subscribers within the same critical section as the
// write itself, so every subscriber observes writes in the order they
// happened.
//
// The zero value is ready to use, and holds the zero value of T.
type Variable[T any] struct {
	state syncx.Mutex[variableState[T]]
}

type variableState[T any] struct {
	hub   broadcast.State[T]
	value T
}

var _ Observable[int] = (*Variable[int])(nil)

// NewVariable returns a Variable holding value.
func NewVariable[T any](value T) *Variable[T] {
	x := new(Variable[T])
	x.state.Modify(func(s *variableState[T]) { s.value = value })
	return x
}

// Value returns the current value.
func (x *Variable[T]) Value() T {
	return syncx.Modify(&x.state, func(s *variableState[T]) T { return s.value })
}

// Set replaces the current value, and broadcasts it. When Set returns, the
// value has been handed to every subscriber's executor, unless Set was
// called from within a subscriber, on the delivering goroutine, in which
// case it is delivered after the current delivery.
func (x *Variable[T]) Set(value T) {
	x.update(func(v *T) { *v = value })
}

// Swap replaces the current value, broadcasts it, and returns the previous
// value.
func (x *Variable[T]) Swap(value T) (old T) {
	x.update(func(v *T) { old, *v = *v, value })
	return old
}

// Modify calls fn with a pointer to the current value, then broadcasts the
// result, atomically. The pointer must not be retained beyond the call, and
// fn must not call methods of x.
func (x *Variable[T]) Modify(fn func(value *T)) {
	x.update(fn)
}

// Subscribe registers observer, invoked via exec, with the current value,
// followed by every subsequent value. The replayed value and the
// registration are captured atomically, so no write can be skipped or
// replayed out of order.
func (x *Variable[T]) Subscribe(exec executor.Executor, observer Observer[T]) *Subscription {
	return x.subscribe(exec, observer, true)
}

// SubscribeChanges registers observer, invoked via exec, with every value
// written after this call.
func (x *Variable[T]) SubscribeChanges(exec executor.Executor, observer Observer[T]) *Subscription {
	return x.subscribe(exec, observer, false)
}

// Len returns the number of subscribers.
func (x *Variable[T]) Len() int {
	return syncx.Modify(&x.state, func(s *variableState[T]) int { return s.hub.Len() })
}

// Constant returns a read-only projection of x.
func (x *Variable[T]) Constant() *Constant[T] {
	return NewConstant[T](x)
}

func (x *Variable[T]) update(fn func(value *T)) {
	ticket := syncx.Modify(&x.state, func(s *variableState[T]) broadcast.Ticket {
		fn(&s.value)
		s.hub.Broadcast(s.value)
		return s.hub.Claim()
	})
	broadcast.Settle(&x.state, variableHub[T], ticket)
}

func (x *Variable[T]) subscribe(exec executor.Executor, observer Observer[T], replay bool) *Subscription {
	var (
		key    syncx.Key
		ticket broadcast.Ticket
	)
	x.state.Modify(func(s *variableState[T]) {
		key = s.hub.Subscribe(exec, observer)
		if replay {
			s.hub.Send(key, s.value)
			ticket = s.hub.Claim()
		}
	})
	broadcast.Settle(&x.state, variableHub[T], ticket)
	return NewSubscription(func() {
		x.state.Modify(func(s *variableState[T]) { s.hub.Unsubscribe(key) })
	})
}

func variableHub[T any](s *variableState[T]) *broadcast.State[T] { return &s.hub }
