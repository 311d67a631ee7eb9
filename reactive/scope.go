package reactive

import (
	"github.com/joeycumines/go-unistate/syncx"
)

// Scope owns subscriptions, unsubscribing all of them when it is disposed.
// It is either active (accumulating), or disposed (terminal).
//
// A Scope is the explicit lifetime handle for anything that observes values:
// an owner (e.g. a UI element) holds a Scope, adds its subscriptions to it,
// and calls [Scope.Dispose] as part of its own teardown.
//
// The zero value is an active, empty Scope.
type Scope struct {
	state syncx.Mutex[scopeState]
}

type scopeState struct {
	subscriptions []*Subscription
	disposed      bool
}

// NewScope returns an active, empty Scope.
func NewScope() *Scope {
	return new(Scope)
}

// Add transfers ownership of subscription to the scope. If the scope has
// already been disposed, the subscription is unsubscribed immediately.
func (x *Scope) Add(subscription *Subscription) {
	if subscription == nil {
		return
	}
	var disposed bool
	x.state.Modify(func(s *scopeState) {
		if s.disposed {
			disposed = true
			return
		}
		s.subscriptions = append(s.subscriptions, subscription)
	})
	if disposed {
		subscription.Unsubscribe()
	}
}

// Dispose unsubscribes every owned subscription, in the order they were
// added, then marks the scope as disposed. Only the first call has any
// effect, even if called concurrently.
func (x *Scope) Dispose() {
	var subscriptions []*Subscription
	x.state.Modify(func(s *scopeState) {
		if s.disposed {
			return
		}
		s.disposed = true
		subscriptions, s.subscriptions = s.subscriptions, nil
	})
	for _, subscription := range subscriptions {
		subscription.Unsubscribe()
	}
}

// Disposed returns true if Dispose has been called.
func (x *Scope) Disposed() bool {
	return syncx.Synchronized(&x.state, func(s scopeState) bool { return s.disposed })
}

// Len returns the number of subscriptions currently owned.
func (x *Scope) Len() int {
	return syncx.Synchronized(&x.state, func(s scopeState) int { return len(s.subscriptions) })
}
