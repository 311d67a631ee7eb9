// Package executor decides where, and when, a callback runs.
//
// An [Executor] is a policy, not a container: it holds no subscriber state,
// and the same value may be shared freely. Every implementation must
// eventually invoke each submitted work function exactly once, and must never
// drop work silently.
//
// Four implementations are provided:
//
//   - [Immediate] runs work synchronously, on the calling goroutine
//   - [Main] serializes work onto a single designated goroutine (the one
//     calling [Main.Run], or bound via [Main.Bind]), running it inline only
//     when submitted by the designated goroutine outside any work
//   - [Queue] hands work to an event loop, e.g. *eventloop.Loop from
//     github.com/joeycumines/go-eventloop
//   - [Go] runs each work function on a new goroutine
//
// # Ordering
//
// [Immediate], [Main] and [Queue] (over a serial loop) preserve submission
// order, for submissions made from a single goroutine. [Go] provides no
// ordering, and no mutual exclusion, between separate work functions.
//
// # Panics
//
// Panics raised by work are recovered and logged by [Main], [Queue] (as far
// as the loop does so) and [Go]. [Immediate] does not recover panics, they
// propagate to the caller.
package executor
