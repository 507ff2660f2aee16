package sequence

import (
	"iter"
	"slices"
)

// Iterator is an immutable, chainable view over a sequence of T.
// Results are lazy: each terminal call re-runs the underlying sequence.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates an Iterator over a slice. The slice is not copied.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{seq: slices.Values(data)}
}

// FromSeq wraps a standard library sequence.
func FromSeq[T any](seq iter.Seq[T]) *Iterator[T] {
	if seq == nil {
		return Empty[T]()
	}
	return &Iterator[T]{seq: seq}
}

// Empty returns an iterator that yields nothing.
func Empty[T any]() *Iterator[T] {
	return &Iterator[T]{seq: func(func(T) bool) {}}
}

// Seq returns the underlying sequence, usable with range.
func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Collect exhausts the iterator and returns a slice of all elements.
func (i *Iterator[T]) Collect() []T {
	return slices.Collect(i.seq)
}

// Filter returns a new Iterator containing only elements that satisfy the predicate.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if pred(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// First returns the first element, or false if empty.
func (i *Iterator[T]) First() (T, bool) {
	for v := range i.seq {
		return v, true
	}
	var zero T
	return zero, false
}

// Any reports whether some element satisfies pred.
func (i *Iterator[T]) Any(pred func(T) bool) bool {
	for v := range i.seq {
		if pred(v) {
			return true
		}
	}
	return false
}

// Count returns the number of elements in the iterator.
func (i *Iterator[T]) Count() int {
	count := 0
	for range i.seq {
		count++
	}
	return count
}

// Chain concatenates multiple iterators into one.
func Chain[T any](iters ...*Iterator[T]) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, it := range iters {
				for v := range it.seq {
					if !yield(v) {
						return
					}
				}
			}
		},
	}
}
