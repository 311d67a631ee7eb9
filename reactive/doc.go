// Package reactive implements a minimal set of thread-safe reactive values.
//
//   - [Stream] is a hot multicast stream: subscribers receive values sent
//     after they subscribed
//   - [Variable] holds a current value, and replays it to each new subscriber
//     before any later value (replay-then-live)
//   - [Constant] is a read-only projection of an [Observable], optionally
//     transformed (see [Map])
//
// Every subscribe-like operation accepts an [executor.Executor], deciding
// where the observer runs, and returns a [Subscription]. A [Scope] collects
// subscriptions, cancelling them all when it is disposed. Binding a value to
// some external target (e.g. a UI element) is done via [Bind], with the
// target owning a Scope, that it disposes as part of its own teardown.
//
// # Ordering
//
// Values set on a single [Variable] (or sent on a single [Stream]) are
// totally ordered, and every subscriber observes them in that order, provided
// its executor preserves submission order. No ordering is guaranteed between
// deliveries to subscribers using different executors.
//
// Set and Send return once their deliveries have been handed to each
// subscriber's executor, so with [executor.Immediate] the observers have run
// by the time the call returns. If another goroutine is delivering earlier
// values of the same source, the caller waits for those, then delivers its
// own. The goroutine delivering is never held up by later callers.
//
// Observers may freely call back into the source they are observing. A value
// set (or sent) from within an observer is queued, and delivered after the
// current delivery completes, before the outermost call returns. An observer
// must not block waiting on another goroutine that is itself setting a value
// on the same source, just as it must not with nested locks.
//
// # Cancellation
//
// [Subscription.Unsubscribe] is safe to call from any goroutine, at any time,
// including from within the observer. An observer is not invoked after
// Unsubscribe returns, unless that invocation had already started.
package reactive
