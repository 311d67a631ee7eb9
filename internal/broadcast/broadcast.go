// Package broadcast implements serialized multicast delivery, shared by
// reactive streams and values, and by action dispatchers.
//
// A [State] is embedded in a value guarded by a [syncx.Mutex], alongside any
// other state that must change atomically with a broadcast (e.g. the current
// value of a variable). While holding the lock, callers register observers,
// enqueue deliveries, then take a [Ticket] (see [State.Claim]). After
// releasing the lock, they pass the ticket to [Settle], which hands pending
// deliveries to each observer's executor, in order, on exactly one goroutine
// at a time (the drainer).
//
// This gives the following guarantees:
//
//   - deliveries are handed to executors in the order they were enqueued
//     (i.e. the order of the critical sections that enqueued them)
//   - when Settle returns, every delivery enqueued by the caller has been
//     handed to its executor, so with an executor that runs work inline,
//     the observers have run
//   - observers may re-enter the source (read, write, subscribe, unsubscribe)
//     without deadlocking, as no lock is held while an executor is invoked,
//     and deliveries enqueued by the drainer itself are delivered after the
//     current delivery completes
//   - an observer is never invoked after it was unsubscribed, unless the
//     invocation had already started
//
// A caller that is not the drainer waits for the drainer to complete the
// deliveries enqueued before its own, then takes over as drainer once the
// previous drainer's own deliveries are complete. Waiting for a drainer that
// is itself waiting (e.g. two sources, each delivering to an inline observer
// that writes to the other, on two goroutines) deadlocks, as nested locks
// would.
package broadcast

import (
	"sync/atomic"

	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/goroutineid"
	"github.com/joeycumines/go-unistate/internal/logging"
	"github.com/joeycumines/go-unistate/syncx"
)

type (
	// State holds observers and pending deliveries. It is not safe for
	// concurrent use, and must be guarded by a [syncx.Mutex]. The zero value
	// is ready to use.
	State[T any] struct {
		logger    *logging.Logger
		observers syncx.Slots[*entry[T]]
		queue     []delivery[T]
		waiters   []waiter

		// drainer is the goroutine ID of the current drainer, if draining
		drainer uint64
		// target is the sequence number the drainer must complete before
		// handing over to a waiter
		target uint64

		// enqueued and completed count deliveries
		enqueued  uint64
		completed uint64

		draining bool
	}

	// Ticket is returned by [State.Claim], and must be passed to [Settle].
	Ticket struct {
		wait  chan bool
		drain bool
	}

	waiter struct {
		// ch receives true if the waiter has become the drainer
		ch        chan bool
		seq       uint64
		goroutine uint64
	}

	entry[T any] struct {
		executor executor.Executor
		observer func(T)
		live     atomic.Bool
	}

	delivery[T any] struct {
		entry *entry[T]
		value T
	}
)

// SetLogger configures the logger used to report panics raised by
// observers. Defaults to the package-level logger.
func (x *State[T]) SetLogger(logger *logging.Logger) {
	x.logger = logger
}

// Subscribe registers observer, to be invoked via exec. Neither may be nil.
func (x *State[T]) Subscribe(exec executor.Executor, observer func(T)) syncx.Key {
	if exec == nil {
		panic(`broadcast: nil executor`)
	}
	if observer == nil {
		panic(`broadcast: nil observer`)
	}
	e := &entry[T]{executor: exec, observer: observer}
	e.live.Store(true)
	return x.observers.Add(e)
}

// Unsubscribe removes the observer identified by key, returning false if it
// was not found. Pending deliveries to the observer will be skipped.
func (x *State[T]) Unsubscribe(key syncx.Key) bool {
	e, ok := x.observers.Remove(key)
	if ok {
		e.live.Store(false)
	}
	return ok
}

// Len returns the number of observers.
func (x *State[T]) Len() int {
	return x.observers.Len()
}

// Broadcast enqueues a delivery of value to every current observer.
func (x *State[T]) Broadcast(value T) {
	for _, e := range x.observers.All() {
		x.push(delivery[T]{entry: e, value: value})
	}
}

// Send enqueues a delivery of value to the single observer identified by
// key, returning false if it was not found.
func (x *State[T]) Send(key syncx.Key, value T) bool {
	for k, e := range x.observers.All() {
		if k == key {
			x.push(delivery[T]{entry: e, value: value})
			return true
		}
	}
	return false
}

func (x *State[T]) push(d delivery[T]) {
	x.queue = append(x.queue, d)
	x.enqueued++
}

// Claim decides what the caller must do, after releasing the lock, to
// settle the deliveries it enqueued: drain, wait for the current drainer, or
// nothing. The result must be passed to [Settle].
func (x *State[T]) Claim() Ticket {
	if x.enqueued == x.completed {
		return Ticket{}
	}
	id := goroutineid.Get()
	if !x.draining {
		x.draining = true
		x.drainer = id
		x.target = x.enqueued
		return Ticket{drain: true}
	}
	if x.drainer == id {
		// reentrant, delivered after the current delivery
		x.target = x.enqueued
		return Ticket{}
	}
	w := waiter{ch: make(chan bool, 1), seq: x.enqueued, goroutine: id}
	x.waiters = append(x.waiters, w)
	return Ticket{wait: w.ch}
}

// next completes the previous delivery (if finished), then pops the next
// delivery, or relinquishes the drainer role.
func (x *State[T]) next(finished bool) (d delivery[T], ok bool) {
	if finished {
		x.complete()
		if x.handover() {
			return d, false
		}
	}
	if len(x.queue) == 0 {
		x.draining = false
		x.drainer = 0
		// avoid retaining a large backing array
		x.queue = nil
		return d, false
	}
	d = x.queue[0]
	x.queue[0] = delivery[T]{}
	x.queue = x.queue[1:]
	return d, true
}

// abandon is called if the drainer exits abnormally (e.g. runtime.Goexit)
// during a delivery.
func (x *State[T]) abandon() {
	x.complete()
	if !x.handover() {
		x.draining = false
		x.drainer = 0
	}
}

// complete records a finished delivery, releasing waiters whose deliveries
// are all complete.
func (x *State[T]) complete() {
	x.completed++
	var i int
	for i < len(x.waiters) && x.waiters[i].seq <= x.completed {
		x.waiters[i].ch <- false
		x.waiters[i] = waiter{}
		i++
	}
	x.waiters = x.waiters[i:]
	if len(x.waiters) == 0 {
		x.waiters = nil
	}
}

// handover passes the drainer role to the first waiter, once the current
// drainer's own deliveries are complete.
func (x *State[T]) handover() bool {
	if x.completed < x.target || len(x.waiters) == 0 {
		return false
	}
	w := x.waiters[0]
	x.waiters[0] = waiter{}
	x.waiters = x.waiters[1:]
	x.drainer = w.goroutine
	x.target = w.seq
	w.ch <- true
	return true
}

// Settle performs the action decided by [State.Claim]. It must be called
// without holding the lock of cell.
func Settle[C, T any](cell *syncx.Mutex[C], state func(c *C) *State[T], ticket Ticket) {
	switch {
	case ticket.drain:
		Drain(cell, state)
	case ticket.wait != nil:
		if <-ticket.wait {
			Drain(cell, state)
		}
	}
}

// Drain delivers pending values until the caller's deliveries are complete,
// and either the queue is empty, or the drainer role has been handed to a
// waiting caller. It must only be called (without holding the lock) by the
// current drainer, see [Settle].
func Drain[C, T any](cell *syncx.Mutex[C], state func(c *C) *State[T]) {
	var (
		finished bool
		inFlight bool
	)
	defer func() {
		if inFlight {
			cell.Modify(func(c *C) { state(c).abandon() })
		}
	}()
	for {
		var (
			d      delivery[T]
			ok     bool
			logger *logging.Logger
		)
		cell.Modify(func(c *C) {
			s := state(c)
			d, ok = s.next(finished)
			logger = s.logger
		})
		if !ok {
			return
		}
		inFlight = true
		d.deliver(logger)
		inFlight = false
		finished = true
	}
}

func (x delivery[T]) deliver(logger *logging.Logger) {
	e, value := x.entry, x.value
	if !e.live.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Recovered(logger, logging.CategoryReactive, r)
		}
	}()
	e.executor.Execute(func() {
		if e.live.Load() {
			e.observer(value)
		}
	})
}
