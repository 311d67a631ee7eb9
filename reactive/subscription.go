package reactive

import (
	"sync/atomic"
)

// Subscription is a cancellation handle, returned by subscribe-like
// operations. It is either active, or unsubscribed (terminal).
//
// The transition is atomic and idempotent: the unsubscribe action runs at
// most once, on whichever caller wins the race. A nil *Subscription is valid,
// and behaves as if already unsubscribed.
type Subscription struct {
	action atomic.Pointer[func()]
}

// NewSubscription returns an active Subscription, that will call unsubscribe
// (if non-nil) on the first call to [Subscription.Unsubscribe].
func NewSubscription(unsubscribe func()) *Subscription {
	if unsubscribe == nil {
		unsubscribe = func() {}
	}
	x := new(Subscription)
	x.action.Store(&unsubscribe)
	return x
}

// Unsubscribe transitions the subscription to unsubscribed. Only the first
// call (across all goroutines) runs the unsubscribe action, subsequent calls
// are no-ops.
func (x *Subscription) Unsubscribe() {
	if x == nil {
		return
	}
	if action := x.action.Swap(nil); action != nil {
		(*action)()
	}
}

// Unsubscribed returns true if Unsubscribe has been called.
func (x *Subscription) Unsubscribed() bool {
	return x == nil || x.action.Load() == nil
}

// AddTo adds x to scope, returning x, to facilitate chaining. The scope
// must not be nil.
func (x *Subscription) AddTo(scope *Scope) *Subscription {
	if scope == nil {
		panic(`reactive: nil scope`)
	}
	scope.Add(x)
	return x
}
