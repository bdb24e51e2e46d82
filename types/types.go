package types

import (
	"github.com/pkg/errors"

	"github.com/outofforest/structarray/errs"
)

const (
	// MaxFastLength is the default number of elements addressable through the
	// fast partition of a storage instance.
	MaxFastLength int64 = 1 << 31

	// MaxPartitionLength is the default length of a single overflow partition.
	// Must be a power of two.
	MaxPartitionLength int64 = 1 << 30
)

// Dimensions describes the per-dimension lengths of an array, outermost first.
type Dimensions []int64

// Validate checks that the shape is well-formed.
func (d Dimensions) Validate() error {
	if len(d) == 0 {
		return errors.Wrap(errs.ErrInvalidArgument, "shape must have at least one dimension")
	}
	for i, length := range d {
		if length < 0 {
			return errors.Wrapf(errs.ErrInvalidArgument, "dimension %d has negative length %d", i, length)
		}
	}
	return nil
}

// TotalElementCount returns the product of all dimension lengths.
func (d Dimensions) TotalElementCount() (int64, error) {
	total := int64(1)
	for i, length := range d {
		if length == 0 {
			return 0, nil
		}
		product := total * length
		if product/length != total {
			return 0, errors.Wrapf(errs.ErrInvalidArgument, "element count overflows at dimension %d", i)
		}
		total = product
	}
	return total, nil
}

// Clone returns an owned copy of the shape.
func (d Dimensions) Clone() Dimensions {
	clone := make(Dimensions, len(d))
	copy(clone, d)
	return clone
}
