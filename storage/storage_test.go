package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/storage"
	"github.com/outofforest/structarray/test"
)

var smallConfig = storage.Config{
	MaxFast:      8,
	MaxPartition: 4,
}

func TestGetSet(t *testing.T) {
	requireT := require.New(t)

	s, err := storage.NewWithConfig[test.Element](smallConfig, 21)
	requireT.NoError(err)
	requireT.Equal(int64(21), s.Length())

	for i := range int64(21) {
		requireT.NoError(s.Set(i, test.NewElement(i, i*2)))
	}
	for i := range int64(21) {
		slot, err := s.Get(i)
		requireT.NoError(err)
		requireT.Equal(test.NewElement(i, i*2), *slot)
	}
}

func TestPartitionTransparency(t *testing.T) {
	requireT := require.New(t)

	// One element below, at and above the fast partition threshold.
	for _, length := range []int64{7, 8, 9, 12, 13} {
		s, err := storage.NewWithConfig[int64](smallConfig, length)
		requireT.NoError(err)

		for i := range length {
			requireT.NoError(s.Set(i, i*3))
		}
		for i := range length {
			slot, err := s.Get(i)
			requireT.NoError(err)
			requireT.Equal(i*3, *slot)
		}
	}
}

func TestOverflowPartitionSizes(t *testing.T) {
	requireT := require.New(t)

	// 8 fast + 4 + 4 + 2 overflow.
	s, err := storage.NewWithConfig[int64](smallConfig, 18)
	requireT.NoError(err)

	var visited int64
	for i, slot := range s.All() {
		requireT.Equal(visited, i)
		requireT.NoError(s.Set(i, i))
		requireT.Equal(i, *slot)
		visited++
	}
	requireT.Equal(int64(18), visited)
}

func TestOutOfRange(t *testing.T) {
	requireT := require.New(t)

	s, err := storage.NewWithConfig[int64](smallConfig, 10)
	requireT.NoError(err)

	_, err = s.Get(-1)
	requireT.ErrorIs(err, errs.ErrIndexOutOfRange)
	_, err = s.Get(10)
	requireT.ErrorIs(err, errs.ErrIndexOutOfRange)
	requireT.ErrorIs(s.Set(10, 0), errs.ErrIndexOutOfRange)
}

func TestNegativeLength(t *testing.T) {
	requireT := require.New(t)

	_, err := storage.NewWithConfig[int64](smallConfig, -1)
	requireT.ErrorIs(err, errs.ErrInvalidArgument)
}

func TestMalformedConfig(t *testing.T) {
	requireT := require.New(t)

	_, err := storage.NewWithConfig[int64](storage.Config{MaxFast: 8, MaxPartition: 3}, 10)
	requireT.ErrorIs(err, errs.ErrInvalidArgument)

	_, err = storage.NewWithConfig[int64](storage.Config{MaxFast: 0, MaxPartition: 4}, 10)
	requireT.ErrorIs(err, errs.ErrInvalidArgument)
}

func TestAsSlice(t *testing.T) {
	requireT := require.New(t)

	s, err := storage.NewWithConfig[int64](smallConfig, 8)
	requireT.NoError(err)
	slice, err := s.AsSlice()
	requireT.NoError(err)
	requireT.Len(slice, 8)

	s, err = storage.NewWithConfig[int64](smallConfig, 9)
	requireT.NoError(err)
	_, err = s.AsSlice()
	requireT.ErrorIs(err, errs.ErrInvalidState)
}

func TestClone(t *testing.T) {
	requireT := require.New(t)

	s, err := storage.NewWithConfig[test.Element](smallConfig, 13)
	requireT.NoError(err)
	for i := range int64(13) {
		requireT.NoError(s.Set(i, test.NewElement(i, i)))
	}

	clone := s.Clone()
	requireT.Equal(int64(13), clone.Length())

	// Mutating the clone must not leak into the original, across both kinds
	// of partitions.
	requireT.NoError(clone.Set(3, test.NewElement(3, 100)))
	requireT.NoError(clone.Set(11, test.NewElement(11, 100)))

	slot, err := s.Get(3)
	requireT.NoError(err)
	requireT.Equal(int64(3), slot.Value)
	slot, err = s.Get(11)
	requireT.NoError(err)
	requireT.Equal(int64(11), slot.Value)
}
