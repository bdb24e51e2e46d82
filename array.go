package structarray

import (
	"github.com/pkg/errors"

	"github.com/outofforest/mass"
	"github.com/outofforest/structarray/ctor"
	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/storage"
	"github.com/outofforest/structarray/types"
)

// Config stores array configuration. At most one of Func and Provider may be
// set; with neither, elements start out as zero values.
type Config[T any] struct {
	// Dimensions is the shape of the array, outermost first.
	Dimensions types.Dimensions

	// Func produces elements directly from their construction context.
	Func func(c *ctor.Context) (T, error)

	// Provider is the constructor-and-arguments protocol for element
	// construction.
	Provider ctor.CtorAndArgsProvider[T]

	// Storage overrides the default partition constants.
	Storage *storage.Config
}

// New creates an array of the given shape with zero-valued elements.
func New[T any](dims ...int64) (*StructuredArray[T], error) {
	return NewWithConfig(Config[T]{Dimensions: dims})
}

// NewWithFunc creates an array whose elements are produced by fn, called once
// per element in coordinate order with the element's construction context.
func NewWithFunc[T any](fn func(c *ctor.Context) (T, error), dims ...int64) (*StructuredArray[T], error) {
	return NewWithConfig(Config[T]{Dimensions: dims, Func: fn})
}

// NewWithProvider creates an array whose elements are produced by the
// constructor-and-arguments provider.
func NewWithProvider[T any](provider ctor.CtorAndArgsProvider[T], dims ...int64) (*StructuredArray[T], error) {
	return NewWithConfig(Config[T]{Dimensions: dims, Provider: provider})
}

// NewWithConfig creates an array from the full configuration.
func NewWithConfig[T any](config Config[T]) (*StructuredArray[T], error) {
	dims := config.Dimensions
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if _, err := dims.TotalElementCount(); err != nil {
		return nil, err
	}
	if config.Func != nil && config.Provider != nil {
		return nil, errors.Wrap(errs.ErrInvalidArgument, "both construction function and provider set")
	}

	b := &buildState[T]{
		config:  config,
		massCtx: ctor.NewContextMass(),
	}

	return b.newInstance(dims.Clone(), nil)
}

type buildState[T any] struct {
	config  Config[T]
	massCtx *mass.Mass[ctor.Context]
}

func (b *buildState[T]) newInstance(dims types.Dimensions, containing *ctor.Context) (*StructuredArray[T], error) {
	total, err := dims.TotalElementCount()
	if err != nil {
		return nil, err
	}

	a := &StructuredArray[T]{
		dims:  dims,
		total: total,
	}

	if len(dims) == 1 {
		a.leaves, err = newStorage[T](b.config.Storage, dims[0])
		if err != nil {
			return nil, err
		}
		for i := range dims[0] {
			slot, err := a.leaves.Get(i)
			if err != nil {
				return nil, err
			}
			if err := b.construct(ctor.NewContext(b.massCtx, i, containing), slot); err != nil {
				return nil, err
			}
		}
		return a, nil
	}

	a.subs, err = newStorage[*StructuredArray[T]](b.config.Storage, dims[0])
	if err != nil {
		return nil, err
	}
	for i := range dims[0] {
		sub, err := b.newInstance(dims[1:], ctor.NewContext(b.massCtx, i, containing))
		if err != nil {
			return nil, err
		}
		if err := a.subs.Set(i, sub); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (b *buildState[T]) construct(c *ctor.Context, target *T) error {
	switch {
	case b.config.Func != nil:
		v, err := b.config.Func(c)
		if err != nil {
			return err
		}
		*target = v
		return nil
	case b.config.Provider != nil:
		ca, err := b.config.Provider.ForContext(c)
		if err != nil {
			return err
		}
		err = ctor.Construct(ca, target)
		b.config.Provider.Recycle(ca)
		return err
	default:
		// Slots start out zeroed.
		return nil
	}
}

func newStorage[T any](config *storage.Config, length int64) (*storage.Storage[T], error) {
	if config != nil {
		return storage.NewWithConfig[T](*config, length)
	}
	return storage.New[T](length)
}

// StructuredArray is a fixed-shape container of heavyweight elements built
// under explicit per-element construction control. For more than one
// dimension the outermost storage holds sub-arrays; leaf elements live at the
// innermost dimension.
type StructuredArray[T any] struct {
	dims  types.Dimensions
	total int64

	// Exactly one of these is set.
	leaves *storage.Storage[T]
	subs   *storage.Storage[*StructuredArray[T]]
}

// NumOfDimensions returns the number of dimensions.
func (a *StructuredArray[T]) NumOfDimensions() int {
	return len(a.dims)
}

// Length returns the length of the outermost dimension.
func (a *StructuredArray[T]) Length() int64 {
	return a.dims[0]
}

// Lengths returns the per-dimension lengths, outermost first.
func (a *StructuredArray[T]) Lengths() types.Dimensions {
	return a.dims.Clone()
}

// TotalElementCount returns the number of leaf elements.
func (a *StructuredArray[T]) TotalElementCount() int64 {
	return a.total
}

// Get returns pointer to the leaf element at the given coordinates. The
// number of coordinates must equal the number of dimensions; requesting a
// leaf where a sub-array lives is a type mismatch.
func (a *StructuredArray[T]) Get(coords ...int64) (*T, error) {
	if len(coords) == 0 {
		return nil, errors.Wrap(errs.ErrInvalidArgument, "no coordinates given")
	}
	if len(coords) != len(a.dims) {
		return nil, errors.Wrapf(errs.ErrTypeMismatch,
			"leaf element requested with %d coordinates from %d-dimensional array", len(coords), len(a.dims))
	}

	cur := a
	for _, c := range coords[:len(coords)-1] {
		sub, err := cur.subs.Get(c)
		if err != nil {
			return nil, err
		}
		cur = *sub
	}
	return cur.leaves.Get(coords[len(coords)-1])
}

// Set stores value in the leaf element at the given coordinates.
func (a *StructuredArray[T]) Set(value T, coords ...int64) error {
	slot, err := a.Get(coords...)
	if err != nil {
		return err
	}
	*slot = value
	return nil
}

// SubArray returns the intermediate sub-array at the given coordinates. The
// number of coordinates must be smaller than the number of dimensions;
// requesting a sub-array where a leaf lives is a type mismatch.
func (a *StructuredArray[T]) SubArray(coords ...int64) (*StructuredArray[T], error) {
	if len(coords) == 0 {
		return nil, errors.Wrap(errs.ErrInvalidArgument, "no coordinates given")
	}
	if len(coords) >= len(a.dims) {
		return nil, errors.Wrapf(errs.ErrTypeMismatch,
			"sub-array requested with %d coordinates from %d-dimensional array", len(coords), len(a.dims))
	}

	cur := a
	for _, c := range coords {
		sub, err := cur.subs.Get(c)
		if err != nil {
			return nil, err
		}
		cur = *sub
	}
	return cur, nil
}

// LeafAt returns pointer to the leaf element at the given position of the
// flattened (row-major) leaf space.
func (a *StructuredArray[T]) LeafAt(index int64) (*T, error) {
	if index < 0 || index >= a.total {
		return nil, errors.Wrapf(errs.ErrIndexOutOfRange, "flat index %d, total %d", index, a.total)
	}

	cur := a
	for len(cur.dims) > 1 {
		stride := cur.total / cur.dims[0]
		sub, err := cur.subs.Get(index / stride)
		if err != nil {
			return nil, err
		}
		cur = *sub
		index %= stride
	}
	return cur.leaves.Get(index)
}

// All iterates over all leaf elements in row-major order.
func (a *StructuredArray[T]) All() func(func(*T) bool) {
	return func(yield func(*T) bool) {
		if a.leaves != nil {
			for _, slot := range a.leaves.All() {
				if !yield(slot) {
					return
				}
			}
			return
		}
		for _, sub := range a.subs.All() {
			for slot := range (*sub).All() {
				if !yield(slot) {
					return
				}
			}
		}
	}
}
