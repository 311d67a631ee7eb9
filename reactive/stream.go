package reactive

import (
	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/broadcast"
	"github.com/joeycumines/go-unistate/syncx"
)

// Stream is a hot multicast stream. Subscribers receive every value sent
// after they subscribed, and nothing before. The zero value is ready to use.
type Stream[T any] struct {
	hub syncx.Mutex[broadcast.State[T]]
}

var _ Publisher[int] = (*Stream[int])(nil)

// NewStream returns a new Stream.
func NewStream[T any]() *Stream[T] {
	return new(Stream[T])
}

// Send delivers value to the current subscribers. If another goroutine is
// delivering values sent earlier, Send waits for those, then its own, to be
// handed to each subscriber's executor. A Send made from within a subscriber,
// on the delivering goroutine, returns immediately, and its value is
// delivered after the current delivery.
func (x *Stream[T]) Send(value T) {
	ticket := syncx.Modify(&x.hub, func(s *broadcast.State[T]) broadcast.Ticket {
		s.Broadcast(value)
		return s.Claim()
	})
	broadcast.Settle(&x.hub, streamHub[T], ticket)
}

// Subscribe registers observer, which will receive values sent after this
// call, invoked via exec. Neither exec nor observer may be nil.
func (x *Stream[T]) Subscribe(exec executor.Executor, observer Observer[T]) *Subscription {
	key := syncx.Modify(&x.hub, func(s *broadcast.State[T]) syncx.Key {
		return s.Subscribe(exec, observer)
	})
	return NewSubscription(func() {
		x.hub.Modify(func(s *broadcast.State[T]) { s.Unsubscribe(key) })
	})
}

// Len returns the number of subscribers.
func (x *Stream[T]) Len() int {
	return syncx.Modify(&x.hub, func(s *broadcast.State[T]) int { return s.Len() })
}

func streamHub[T any](s *broadcast.State[T]) *broadcast.State[T] { return s }
