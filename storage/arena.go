package storage

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/outofforest/photon"
	"github.com/outofforest/structarray/errs"
)

// NewArena maps anonymous memory outside the Go heap. Primitive arrays put
// their element slots here so that huge lengths don't churn the garbage
// collector.
func NewArena(size uint64, useHugePages bool) (*Arena, error) {
	opts := unix.MAP_SHARED | unix.MAP_ANONYMOUS | unix.MAP_NORESERVE | unix.MAP_POPULATE
	if useHugePages {
		// When using huge pages, the size must be a multiple of the hugepage
		// size. Otherwise, munmap fails.
		opts |= unix.MAP_HUGETLB
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, opts)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrAllocation, "mmap of %d bytes failed: %s", size, err)
	}

	return &Arena{
		data:  data,
		dataP: unsafe.Pointer(&data[0]),
		size:  size,
	}, nil
}

// Arena is a fixed-size region of mmap'd memory.
type Arena struct {
	data  []byte
	dataP unsafe.Pointer
	size  uint64
}

// Size returns the size of the arena in bytes.
func (a *Arena) Size() uint64 {
	return a.size
}

// Pointer returns pointer to the byte at the given offset.
func (a *Arena) Pointer(offset uint64) unsafe.Pointer {
	return unsafe.Add(a.dataP, offset)
}

// Bytes returns the whole arena as a byte slice.
func (a *Arena) Bytes() []byte {
	return photon.SliceFromPointer[byte](a.dataP, int(a.size))
}

// Clear sets all the bytes of the arena to zero.
func (a *Arena) Clear() {
	clear(a.Bytes())
}

// Close unmaps the arena. The arena must not be used afterwards.
func (a *Arena) Close() {
	if a.data != nil {
		_ = unix.Munmap(a.data)
		a.data = nil
		a.dataP = nil
	}
}
