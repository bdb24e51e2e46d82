package structarray

import (
	"github.com/pkg/errors"

	"github.com/outofforest/structarray/errs"
)

// Iterator returns a resettable cursor over the leaf elements in row-major
// order, positioned one before the start.
func (a *StructuredArray[T]) Iterator() *Iterator[T] {
	it := &Iterator[T]{
		arr:    a,
		cursor: make([]int64, len(a.dims)),
	}
	it.Reset()
	return it
}

// Iterator walks the leaf elements of an array. The cursor is a coordinate
// vector advanced with odometer arithmetic: the innermost coordinate
// increments, carrying into outer coordinates on wraparound.
type Iterator[T any] struct {
	arr    *StructuredArray[T]
	cursor []int64
	flat   int64
}

// HasNext returns true while the cursor has not passed the last position.
func (it *Iterator[T]) HasNext() bool {
	return it.flat+1 < it.arr.total
}

// Next advances the cursor and returns the element at the new position.
func (it *Iterator[T]) Next() (*T, error) {
	if !it.HasNext() {
		return nil, errors.Wrapf(errs.ErrIndexOutOfRange, "iterator exhausted after %d elements", it.arr.total)
	}

	i := len(it.cursor) - 1
	it.cursor[i]++
	for i > 0 && it.cursor[i] == it.arr.dims[i] {
		it.cursor[i] = 0
		i--
		it.cursor[i]++
	}
	it.flat++

	return it.arr.LeafAt(it.flat)
}

// Cursor returns the current position in the flattened leaf space.
func (it *Iterator[T]) Cursor() int64 {
	return it.flat
}

// Cursors returns the current coordinate vector.
func (it *Iterator[T]) Cursors() []int64 {
	cursors := make([]int64, len(it.cursor))
	copy(cursors, it.cursor)
	return cursors
}

// Reset returns the cursor to one before the start so the same iterator
// instance can run another full pass.
func (it *Iterator[T]) Reset() {
	for i := range it.cursor {
		it.cursor[i] = 0
	}
	it.cursor[len(it.cursor)-1] = -1
	it.flat = -1
}
