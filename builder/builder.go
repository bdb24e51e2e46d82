package builder

import (
	"github.com/pkg/errors"

	"github.com/outofforest/structarray"
	"github.com/outofforest/structarray/ctor"
	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/storage"
	"github.com/outofforest/structarray/types"
)

// New creates a builder for the outermost dimension of an array.
func New[T any](length int64) *Builder[T] {
	return &Builder[T]{length: length}
}

// Builder assembles a nested array-of-arrays specification incrementally; a
// single Build call materializes the whole structure. Construction failures
// are whatever the innermost instantiation reports, the builder adds no
// failure modes of its own.
type Builder[T any] struct {
	length        int64
	sub           *Builder[T]
	provider      ctor.CtorAndArgsProvider[T]
	fn            func(c *ctor.Context) (T, error)
	storageConfig *storage.Config
}

// WithSubArray nests another dimension of the given length inside the current
// innermost one.
func (b *Builder[T]) WithSubArray(length int64) *Builder[T] {
	b.innermost().sub = &Builder[T]{length: length}
	return b
}

// WithSubBuilder nests a previously assembled builder inside the current
// innermost dimension.
func (b *Builder[T]) WithSubBuilder(sub *Builder[T]) *Builder[T] {
	b.innermost().sub = sub
	return b
}

// WithProvider sets the element factory for the level the builder currently
// ends at. Only the leaf level may carry one.
func (b *Builder[T]) WithProvider(provider ctor.CtorAndArgsProvider[T]) *Builder[T] {
	b.innermost().provider = provider
	return b
}

// WithFunc sets a plain construction function for the level the builder
// currently ends at. Only the leaf level may carry one.
func (b *Builder[T]) WithFunc(fn func(c *ctor.Context) (T, error)) *Builder[T] {
	b.innermost().fn = fn
	return b
}

// WithStorageConfig sets explicit partition constants for every dimension.
func (b *Builder[T]) WithStorageConfig(config storage.Config) *Builder[T] {
	b.storageConfig = &config
	return b
}

// Build resolves the nested levels innermost-first and materializes the
// array.
func (b *Builder[T]) Build() (*structarray.StructuredArray[T], error) {
	config := structarray.Config[T]{
		Dimensions: make(types.Dimensions, 0, 4),
		Storage:    b.storageConfig,
	}

	for level := b; level != nil; level = level.sub {
		if level != b && level.storageConfig != nil {
			return nil, errors.Wrap(errs.ErrInvalidArgument, "storage config belongs on the outermost level")
		}
		if level.sub != nil && (level.provider != nil || level.fn != nil) {
			return nil, errors.Wrap(errs.ErrInvalidArgument, "element factory set on a non-leaf level")
		}
		config.Dimensions = append(config.Dimensions, level.length)
		config.Provider = level.provider
		config.Func = level.fn
	}

	return structarray.NewWithConfig(config)
}

func (b *Builder[T]) innermost() *Builder[T] {
	level := b
	for level.sub != nil {
		level = level.sub
	}
	return level
}
