package structmap_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/structmap"
)

func TestSetGet(t *testing.T) {
	requireT := require.New(t)

	m, err := structmap.New[uint64, uint64](16)
	requireT.NoError(err)

	for i := range uint64(1000) {
		requireT.NoError(m.Set(i, i*2))
	}
	requireT.Equal(int64(1000), m.Count())

	for i := range uint64(1000) {
		v, ok := m.Get(i)
		requireT.True(ok)
		requireT.Equal(i*2, v)
	}

	_, ok := m.Get(1000)
	requireT.False(ok)
}

func TestOverwrite(t *testing.T) {
	requireT := require.New(t)

	m, err := structmap.New[uint64, int64](16)
	requireT.NoError(err)

	requireT.NoError(m.Set(5, 1))
	requireT.NoError(m.Set(5, 2))
	requireT.Equal(int64(1), m.Count())

	v, ok := m.Get(5)
	requireT.True(ok)
	requireT.Equal(int64(2), v)
}

func TestDelete(t *testing.T) {
	requireT := require.New(t)

	m, err := structmap.New[uint64, uint64](64)
	requireT.NoError(err)

	for i := range uint64(40) {
		requireT.NoError(m.Set(i, i))
	}

	requireT.True(m.Delete(7))
	requireT.False(m.Delete(7))
	requireT.Equal(int64(39), m.Count())

	_, ok := m.Get(7)
	requireT.False(ok)

	// A deleted slot is reusable without breaking probe chains.
	requireT.NoError(m.Set(7, 70))
	v, ok := m.Get(7)
	requireT.True(ok)
	requireT.Equal(uint64(70), v)
}

func TestAll(t *testing.T) {
	requireT := require.New(t)

	m, err := structmap.New[uint64, uint64](16)
	requireT.NoError(err)

	expected := map[uint64]uint64{}
	for i := range uint64(100) {
		requireT.NoError(m.Set(i, i*3))
		expected[i] = i * 3
	}

	collected := map[uint64]uint64{}
	for k, v := range m.All() {
		collected[k] = v
	}
	requireT.Equal(expected, collected)
}

func TestStructKeys(t *testing.T) {
	requireT := require.New(t)

	type key struct {
		A uint64
		B uint64
	}

	m, err := structmap.New[key, *uint64](16)
	requireT.NoError(err)

	requireT.NoError(m.Set(key{A: 1, B: 2}, lo.ToPtr[uint64](12)))
	requireT.NoError(m.Set(key{A: 2, B: 1}, lo.ToPtr[uint64](21)))

	v, ok := m.Get(key{A: 1, B: 2})
	requireT.True(ok)
	requireT.Equal(uint64(12), *v)
}

func TestNegativeCapacity(t *testing.T) {
	requireT := require.New(t)

	_, err := structmap.New[uint64, uint64](-1)
	requireT.ErrorIs(err, errs.ErrInvalidArgument)
}
