package syncx

import (
	"sync"
)

// Mutex guards a value of type T. The value is only ever read or written
// while the lock is held. The zero value is ready to use, and holds the zero
// value of T.
//
// A Mutex must not be copied after first use.
type Mutex[T any] struct {
	_     [0]func() // prevent comparison
	value T
	mu    sync.Mutex
}

// NewMutex returns a Mutex holding value.
func NewMutex[T any](value T) *Mutex[T] {
	return &Mutex[T]{value: value}
}

// Load returns a copy of the current value.
func (x *Mutex[T]) Load() T {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.value
}

// Synchronized calls fn with the current value, while holding the lock.
func (x *Mutex[T]) Synchronized(fn func(value T)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn(x.value)
}

// Modify calls fn with a pointer to the current value, while holding the
// lock. The pointer must not be retained beyond the call.
func (x *Mutex[T]) Modify(fn func(value *T)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn(&x.value)
}

// Swap replaces the value, returning the previous one.
func (x *Mutex[T]) Swap(value T) (old T) {
	x.mu.Lock()
	defer x.mu.Unlock()
	old, x.value = x.value, value
	return old
}

// Synchronized is [Mutex.Synchronized], returning the result of fn.
func Synchronized[T, R any](x *Mutex[T], fn func(value T) R) (result R) {
	x.Synchronized(func(value T) { result = fn(value) })
	return result
}

// Modify is [Mutex.Modify], returning the result of fn.
func Modify[T, R any](x *Mutex[T], fn func(value *T) R) (result R) {
	x.Modify(func(value *T) { result = fn(value) })
	return result
}
