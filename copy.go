package structarray

import (
	"github.com/pkg/errors"

	"github.com/outofforest/structarray/errs"
)

// CopyInstance creates an array of the same shape as src and shallow-copies
// every leaf element into it. Storage partitions are cloned wholesale instead
// of re-running element construction.
func CopyInstance[T any](src *StructuredArray[T]) (*StructuredArray[T], error) {
	return cloneInstance(src), nil
}

func cloneInstance[T any](src *StructuredArray[T]) *StructuredArray[T] {
	dst := &StructuredArray[T]{
		dims:  src.dims.Clone(),
		total: src.total,
	}
	if src.leaves != nil {
		dst.leaves = src.leaves.Clone()
		return dst
	}
	dst.subs = src.subs.Clone()
	for _, slot := range dst.subs.All() {
		*slot = cloneInstance(*slot)
	}
	return dst
}

// CopyInstanceRange creates an array of shape counts and shallow-copies the
// region of src starting at offsets into its origin.
func CopyInstanceRange[T any](src *StructuredArray[T], offsets, counts []int64) (*StructuredArray[T], error) {
	if len(offsets) != len(src.dims) || len(counts) != len(src.dims) {
		return nil, errors.Wrapf(errs.ErrInvalidArgument,
			"offsets and counts must describe %d dimensions, got %d and %d",
			len(src.dims), len(offsets), len(counts))
	}
	for i := range offsets {
		if counts[i] < 0 {
			return nil, errors.Wrapf(errs.ErrInvalidArgument, "negative count %d at dimension %d", counts[i], i)
		}
		if offsets[i] < 0 || offsets[i]+counts[i] > src.dims[i] {
			return nil, errors.Wrapf(errs.ErrIndexOutOfRange,
				"region [%d, %d) exceeds dimension %d of length %d",
				offsets[i], offsets[i]+counts[i], i, src.dims[i])
		}
	}

	dst, err := New[T](counts...)
	if err != nil {
		return nil, err
	}
	return dst, copyRegion(src, dst, offsets)
}

func copyRegion[T any](src, dst *StructuredArray[T], offsets []int64) error {
	if len(src.dims) == 1 {
		for i := range dst.dims[0] {
			srcSlot, err := src.leaves.Get(offsets[0] + i)
			if err != nil {
				return err
			}
			dstSlot, err := dst.leaves.Get(i)
			if err != nil {
				return err
			}
			*dstSlot = *srcSlot
		}
		return nil
	}

	for i := range dst.dims[0] {
		srcSub, err := src.subs.Get(offsets[0] + i)
		if err != nil {
			return err
		}
		dstSub, err := dst.subs.Get(i)
		if err != nil {
			return err
		}
		if err := copyRegion(*srcSub, *dstSub, offsets[1:]); err != nil {
			return err
		}
	}
	return nil
}

// CopyOption configures a shallow copy.
type CopyOption func(c *copyConfig)

type copyConfig struct {
	allowFinalFieldOverwrite bool
}

// WithFinalFieldOverwrite permits overwriting write-once fields of the
// destination elements.
func WithFinalFieldOverwrite() CopyOption {
	return func(c *copyConfig) {
		c.allowFinalFieldOverwrite = true
	}
}

// ShallowCopy copies count contiguous leaf elements, addressed in the
// flattened leaf space, from src to dst. Fields are copied by value or
// reference, never deep-cloned. Element types carrying write-once fields
// (tagged `layout:"final"`) are refused unless WithFinalFieldOverwrite is
// given, because overwriting nominally-immutable state silently breaks
// invariants other code may depend on. Overlapping regions within one array
// copy in the direction preserving single-pass shift semantics. Overlap
// detection compares array identity only; a sub-array view sharing storage
// with its parent is not recognized as overlapping.
func ShallowCopy[T any](
	src *StructuredArray[T],
	srcStart int64,
	dst *StructuredArray[T],
	dstStart int64,
	count int64,
	opts ...CopyOption,
) error {
	var config copyConfig
	for _, opt := range opts {
		opt(&config)
	}

	if count < 0 {
		return errors.Wrapf(errs.ErrInvalidArgument, "negative count %d", count)
	}
	if srcStart < 0 || srcStart+count > src.total {
		return errors.Wrapf(errs.ErrIndexOutOfRange,
			"source region [%d, %d) exceeds %d leaf elements", srcStart, srcStart+count, src.total)
	}
	if dstStart < 0 || dstStart+count > dst.total {
		return errors.Wrapf(errs.ErrIndexOutOfRange,
			"destination region [%d, %d) exceeds %d leaf elements", dstStart, dstStart+count, dst.total)
	}
	if !config.allowFinalFieldOverwrite {
		if fields := finalFieldsOf(typeOf[T]()); len(fields) > 0 {
			return errors.Wrapf(errs.ErrIllegalFieldCopy,
				"element type %s carries write-once fields %v", typeOf[T](), fields)
		}
	}

	if src == dst && dstStart > srcStart {
		for i := count - 1; i >= 0; i-- {
			if err := copyLeaf(src, srcStart+i, dst, dstStart+i); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range count {
		if err := copyLeaf(src, srcStart+i, dst, dstStart+i); err != nil {
			return err
		}
	}
	return nil
}

func copyLeaf[T any](src *StructuredArray[T], srcIndex int64, dst *StructuredArray[T], dstIndex int64) error {
	srcSlot, err := src.LeafAt(srcIndex)
	if err != nil {
		return err
	}
	dstSlot, err := dst.LeafAt(dstIndex)
	if err != nil {
		return err
	}
	*dstSlot = *srcSlot
	return nil
}
