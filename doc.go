// Package unistate implements unidirectional state management: a [Store]
// owns a state value and a mutation function, and is changed only by
// dispatching actions, which are applied one at a time.
//
// Actions are delivered via a [Dispatcher]. Each store subscribes to two:
// its own private dispatcher (see [Store.Actions]), and the dispatcher
// shared by every store of the same [Kind], obtained from a [Registry] (see
// [Store.SharedActions] and [SharedActions]). The registry is an explicit
// value, typically created once, by the composition root of an application.
//
// State is exposed as a reactive value (see [Store.State] and [Select]),
// from package [github.com/joeycumines/go-unistate/reactive]. Where
// observers and actions are run is decided by an [executor.Executor].
//
// # Mutation
//
// A store applies its mutation function while holding the lock of its state
// value, so mutations never run concurrently for a given store, regardless of
// the executor. The mutation function must not call methods of the store
// whose state it is mutating, though it may dispatch actions, which will be
// applied after it returns (or concurrently with it, on another store).
package unistate
