package syncx

import (
	"iter"
)

// Key identifies an element of [Slots]. Keys are issued in increasing order,
// starting at 1, and are never reused within the lifetime of a Slots value.
type Key uint64

// Slots is an ordered collection of elements, each addressable by the [Key]
// returned when it was added. Iteration is in insertion order.
//
// Removal is a linear scan, O(n) in the number of elements. Slots are used
// to store subscribers, which are expected to number in the tens.
//
// Slots is not safe for concurrent use. The zero value is ready to use.
type Slots[T any] struct {
	entries []slot[T]
	nextKey Key
}

type slot[T any] struct {
	value T
	key   Key
}

// Add appends value, returning its key.
func (x *Slots[T]) Add(value T) Key {
	x.nextKey++
	x.entries = append(x.entries, slot[T]{key: x.nextKey, value: value})
	return x.nextKey
}

// Remove deletes the element identified by key, returning it. If there is no
// such element (e.g. it was already removed), Remove returns false.
func (x *Slots[T]) Remove(key Key) (value T, ok bool) {
	for i := range x.entries {
		if x.entries[i].key == key {
			value = x.entries[i].value
			copy(x.entries[i:], x.entries[i+1:])
			// clear the vacated slot, so the element may be collected
			x.entries[len(x.entries)-1] = slot[T]{}
			x.entries = x.entries[:len(x.entries)-1]
			return value, true
		}
	}
	return value, false
}

// Len returns the number of elements.
func (x *Slots[T]) Len() int {
	return len(x.entries)
}

// All iterates over the elements in insertion order. The collection must not
// be modified during iteration.
func (x *Slots[T]) All() iter.Seq2[Key, T] {
	return func(yield func(Key, T) bool) {
		for _, e := range x.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Values returns a snapshot of the elements, in insertion order. The result
// is a copy, and is safe to retain after the lock guarding x is released.
func (x *Slots[T]) Values() []T {
	if len(x.entries) == 0 {
		return nil
	}
	values := make([]T, len(x.entries))
	for i, e := range x.entries {
		values[i] = e.value
	}
	return values
}
