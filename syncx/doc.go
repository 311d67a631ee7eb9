// Package syncx provides the two low-level building blocks the rest of this
// module is built on: [Mutex], a value guarded by a lock, and [Slots], an
// ordered collection with stable, never-reused keys.
//
// # Thread Safety
//
// [Mutex] is safe for concurrent use. [Slots] is not, and is intended to be
// embedded in a value guarded by a [Mutex].
//
// Operations on a [Mutex] must not be nested, for the same cell, i.e. calling
// any method of a cell from within a function passed to the same cell will
// deadlock. This is a caller obligation, it is not detected.
package syncx
