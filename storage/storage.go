package storage

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/types"
)

// Config stores storage configuration.
type Config struct {
	// MaxFast is the maximum length of the fast partition.
	MaxFast int64

	// MaxPartition is the length of a full overflow partition. Must be a power
	// of two.
	MaxPartition int64
}

// DefaultConfig is the configuration used by arrays unless overridden.
var DefaultConfig = Config{
	MaxFast:      types.MaxFastLength,
	MaxPartition: types.MaxPartitionLength,
}

// New creates storage for the requested number of elements using the default
// partition constants.
func New[T any](length int64) (*Storage[T], error) {
	return NewWithConfig[T](DefaultConfig, length)
}

// NewWithConfig creates storage for the requested number of elements. Indices
// below config.MaxFast address the fast partition directly; the rest is split
// into overflow partitions of config.MaxPartition elements each.
func NewWithConfig[T any](config Config, length int64) (*Storage[T], error) {
	if length < 0 {
		return nil, errors.Wrapf(errs.ErrInvalidArgument, "negative length %d", length)
	}
	if config.MaxFast <= 0 || config.MaxPartition <= 0 || config.MaxPartition&(config.MaxPartition-1) != 0 {
		return nil, errors.Wrapf(errs.ErrInvalidArgument,
			"malformed partition constants: maxFast %d, maxPartition %d", config.MaxFast, config.MaxPartition)
	}

	fastLength := min(length, config.MaxFast)
	if uint64(fastLength) > uint64(math.MaxInt) || uint64(config.MaxPartition) > uint64(math.MaxInt) {
		return nil, errors.Wrapf(errs.ErrAllocation, "partition of %d elements is not addressable", fastLength)
	}

	s := &Storage[T]{
		config: config,
		length: length,
		shift:  uint(bits.TrailingZeros64(uint64(config.MaxPartition))),
		mask:   config.MaxPartition - 1,
		fast:   make([]T, fastLength),
	}

	if remaining := length - config.MaxFast; remaining > 0 {
		s.overflow = make([][]T, 0, (remaining+config.MaxPartition-1)/config.MaxPartition)
		for remaining > 0 {
			partitionLength := min(remaining, config.MaxPartition)
			s.overflow = append(s.overflow, make([]T, partitionLength))
			remaining -= partitionLength
		}
	}

	return s, nil
}

// Storage owns the element slots of a single dimension. Lengths above the
// fast threshold are split into overflow partitions, so a single contiguous
// block must never be assumed.
type Storage[T any] struct {
	config   Config
	length   int64
	shift    uint
	mask     int64
	fast     []T
	overflow [][]T
}

// Length returns the number of element slots.
func (s *Storage[T]) Length() int64 {
	return s.length
}

// Get returns pointer to the slot at the given index.
func (s *Storage[T]) Get(index int64) (*T, error) {
	if index < 0 || index >= s.length {
		return nil, errors.Wrapf(errs.ErrIndexOutOfRange, "index %d, length %d", index, s.length)
	}
	if index < s.config.MaxFast {
		return &s.fast[index], nil
	}
	index -= s.config.MaxFast
	return &s.overflow[index>>s.shift][index&s.mask], nil
}

// Set stores value in the slot at the given index.
func (s *Storage[T]) Set(index int64, value T) error {
	slot, err := s.Get(index)
	if err != nil {
		return err
	}
	*slot = value
	return nil
}

// AsSlice returns the fast partition as a plain slice. Valid only when the
// whole storage fits in it.
func (s *Storage[T]) AsSlice() ([]T, error) {
	if s.length > s.config.MaxFast {
		return nil, errors.Wrapf(errs.ErrInvalidState,
			"storage of %d elements is partitioned and has no contiguous form", s.length)
	}
	return s.fast, nil
}

// Clone returns storage with every partition copied element-wise.
func (s *Storage[T]) Clone() *Storage[T] {
	clone := &Storage[T]{
		config: s.config,
		length: s.length,
		shift:  s.shift,
		mask:   s.mask,
		fast:   make([]T, len(s.fast)),
	}
	copy(clone.fast, s.fast)
	if len(s.overflow) > 0 {
		clone.overflow = make([][]T, 0, len(s.overflow))
		for _, partition := range s.overflow {
			p := make([]T, len(partition))
			copy(p, partition)
			clone.overflow = append(clone.overflow, p)
		}
	}
	return clone
}

// All iterates over all slots in index order.
func (s *Storage[T]) All() func(func(int64, *T) bool) {
	return func(yield func(int64, *T) bool) {
		for i := range s.fast {
			if !yield(int64(i), &s.fast[i]) {
				return
			}
		}
		index := s.config.MaxFast
		for _, partition := range s.overflow {
			for i := range partition {
				if !yield(index+int64(i), &partition[i]) {
					return
				}
			}
			index += int64(len(partition))
		}
	}
}
