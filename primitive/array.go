package primitive

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/outofforest/photon"
	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/storage"
)

// Scalar constrains element types that may live in an off-heap arena. Types
// containing pointers must use the structured flavor instead, the garbage
// collector does not scan the arena.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Option configures a primitive array.
type Option func(c *config)

// WithHugePages backs the arena with huge pages.
func WithHugePages() Option {
	return func(c *config) {
		c.useHugePages = true
	}
}

type config struct {
	useHugePages bool
}

// New creates a primitive array of the given length backed by an mmap'd
// arena. Close must be called to release the memory.
func New[T Scalar](length int64, opts ...Option) (*Array[T], error) {
	if length < 0 {
		return nil, errors.Wrapf(errs.ErrInvalidArgument, "negative length %d", length)
	}

	var c config
	for _, opt := range opts {
		opt(&c)
	}

	a := &Array[T]{length: length}
	if length > 0 {
		var t T
		arena, err := storage.NewArena(uint64(length)*uint64(unsafe.Sizeof(t)), c.useHugePages)
		if err != nil {
			return nil, err
		}
		a.arena = arena
		a.elems = photon.SliceFromPointer[T](arena.Pointer(0), int(length))
	}
	return a, nil
}

// Array is the primitive (scalar element) array flavor. Slots live outside
// the Go heap.
type Array[T Scalar] struct {
	arena  *storage.Arena
	elems  []T
	length int64
}

// Length returns the number of elements.
func (a *Array[T]) Length() int64 {
	return a.length
}

// Get returns the element at the given index.
func (a *Array[T]) Get(index int64) (T, error) {
	if index < 0 || index >= a.length {
		var zero T
		return zero, errors.Wrapf(errs.ErrIndexOutOfRange, "index %d, length %d", index, a.length)
	}
	return a.elems[index], nil
}

// Set stores value at the given index.
func (a *Array[T]) Set(index int64, value T) error {
	if index < 0 || index >= a.length {
		return errors.Wrapf(errs.ErrIndexOutOfRange, "index %d, length %d", index, a.length)
	}
	a.elems[index] = value
	return nil
}

// Fill sets every element to value.
func (a *Array[T]) Fill(value T) {
	for i := range a.elems {
		a.elems[i] = value
	}
}

// Slice returns the elements as a plain slice sharing the arena.
func (a *Array[T]) Slice() []T {
	return a.elems
}

// Clear zeroes the whole arena.
func (a *Array[T]) Clear() {
	if a.arena != nil {
		a.arena.Clear()
	}
}

// Close releases the arena. The array must not be used afterwards.
func (a *Array[T]) Close() {
	if a.arena != nil {
		a.arena.Close()
		a.arena = nil
		a.elems = nil
	}
}

// CopyInstance creates an array with the same contents as src.
func CopyInstance[T Scalar](src *Array[T], opts ...Option) (*Array[T], error) {
	dst, err := New[T](src.length, opts...)
	if err != nil {
		return nil, err
	}
	copy(dst.elems, src.elems)
	return dst, nil
}
