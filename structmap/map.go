package structmap

import (
	"math/bits"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"

	"github.com/outofforest/photon"
	"github.com/outofforest/structarray"
	"github.com/outofforest/structarray/errs"
)

// slotState enumerates bucket states.
type slotState uint8

const (
	stateFree slotState = iota
	stateDeleted
	stateData
)

const minCapacity = 8

// bucket stores a single key-value pair of the map.
type bucket[K comparable, V any] struct {
	Hash  uint64
	Key   K
	Value V
	State slotState
}

// New creates a hash map of at least the given capacity layered on a
// structured array. The map consumes the array exclusively through indexed
// access.
//
// Keys are hashed over their in-memory representation, so the key type must
// not contain pointers (strings included): two equal keys must be equal byte
// for byte.
func New[K comparable, V any](capacity int64) (*Map[K, V], error) {
	if capacity < 0 {
		return nil, errors.Wrapf(errs.ErrInvalidArgument, "negative capacity %d", capacity)
	}
	capacity = max(capacity, minCapacity)
	// Linear probing needs a power-of-two bucket count.
	if capacity&(capacity-1) != 0 {
		capacity = 1 << (64 - bits.LeadingZeros64(uint64(capacity)))
	}

	buckets, err := structarray.New[bucket[K, V]](capacity)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{
		buckets: buckets,
		mask:    capacity - 1,
	}, nil
}

// Map is a hash map storing its buckets in a structured array.
type Map[K comparable, V any] struct {
	buckets *structarray.StructuredArray[bucket[K, V]]
	mask    int64
	count   int64
}

// Count returns the number of stored key-value pairs.
func (m *Map[K, V]) Count() int64 {
	return m.count
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	hash := hashKey(key)
	for i := int64(0); i <= m.mask; i++ {
		b, err := m.buckets.Get((int64(hash) + i) & m.mask)
		if err != nil {
			break
		}
		switch b.State {
		case stateFree:
			var zero V
			return zero, false
		case stateData:
			if b.Hash == hash && b.Key == key {
				return b.Value, true
			}
		}
	}
	var zero V
	return zero, false
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) error {
	// Keep load below 3/4 so probe chains stay short.
	if 4*(m.count+1) > 3*(m.mask+1) {
		if err := m.grow(); err != nil {
			return err
		}
	}

	hash := hashKey(key)
	var insertAt *bucket[K, V]
	for i := int64(0); i <= m.mask; i++ {
		b, err := m.buckets.Get((int64(hash) + i) & m.mask)
		if err != nil {
			return err
		}
		switch b.State {
		case stateFree:
			if insertAt == nil {
				insertAt = b
			}
			insertAt.Hash = hash
			insertAt.Key = key
			insertAt.Value = value
			insertAt.State = stateData
			m.count++
			return nil
		case stateDeleted:
			if insertAt == nil {
				insertAt = b
			}
		case stateData:
			if b.Hash == hash && b.Key == key {
				b.Value = value
				return nil
			}
		}
	}
	if insertAt != nil {
		insertAt.Hash = hash
		insertAt.Key = key
		insertAt.Value = value
		insertAt.State = stateData
		m.count++
		return nil
	}
	return errors.Wrap(errs.ErrAllocation, "map is full")
}

// Delete removes the value stored under key.
func (m *Map[K, V]) Delete(key K) bool {
	hash := hashKey(key)
	for i := int64(0); i <= m.mask; i++ {
		b, err := m.buckets.Get((int64(hash) + i) & m.mask)
		if err != nil {
			return false
		}
		switch b.State {
		case stateFree:
			return false
		case stateData:
			if b.Hash == hash && b.Key == key {
				var zero bucket[K, V]
				*b = zero
				b.State = stateDeleted
				m.count--
				return true
			}
		}
	}
	return false
}

// All iterates over all key-value pairs in bucket order.
func (m *Map[K, V]) All() func(func(K, V) bool) {
	return func(yield func(K, V) bool) {
		for b := range m.buckets.All() {
			if b.State != stateData {
				continue
			}
			if !yield(b.Key, b.Value) {
				return
			}
		}
	}
}

func (m *Map[K, V]) grow() error {
	buckets, err := structarray.New[bucket[K, V]](2 * (m.mask + 1))
	if err != nil {
		return err
	}

	old := m.buckets
	m.buckets = buckets
	m.mask = 2*m.mask + 1
	m.count = 0

	for b := range old.All() {
		if b.State != stateData {
			continue
		}
		if err := m.Set(b.Key, b.Value); err != nil {
			return err
		}
	}
	return nil
}

func hashKey[K comparable](key K) uint64 {
	return xxhash.Sum64(photon.NewFromValue[K](&key).B)
}
