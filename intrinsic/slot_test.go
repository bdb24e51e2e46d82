package intrinsic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/structarray/ctor"
	"github.com/outofforest/structarray/errs"
	"github.com/outofforest/structarray/intrinsic"
)

type point struct {
	X int64
	Y int64
}

func newPoint(x, y int64) point {
	return point{X: x, Y: y}
}

type line struct {
	from intrinsic.Slot[point]
	to   intrinsic.Slot[point]
}

type exposed struct {
	From intrinsic.Slot[point]
}

type aliased struct {
	from intrinsic.Slot[point]
	ptr  *intrinsic.Slot[point]
}

func TestConstructAndGet(t *testing.T) {
	requireT := require.New(t)

	l := &line{}
	requireT.NoError(intrinsic.Construct(l, "from", &ctor.CtorAndArgs[point]{
		Ctor: newPoint,
		Args: []any{int64(1), int64(2)},
	}))
	requireT.NoError(intrinsic.ConstructWith(l, "to", func(p *point) error {
		p.X = 3
		p.Y = 4
		return nil
	}))

	from, err := l.from.Get()
	requireT.NoError(err)
	requireT.Equal(newPoint(1, 2), *from)

	to, err := l.to.Get()
	requireT.NoError(err)
	requireT.Equal(newPoint(3, 4), *to)
}

func TestPrematureAccess(t *testing.T) {
	requireT := require.New(t)

	l := &line{}
	_, err := l.from.Get()
	requireT.ErrorIs(err, errs.ErrInvalidState)

	requireT.NoError(intrinsic.ConstructWith(l, "from", func(p *point) error {
		p.X = 1
		return nil
	}))

	// The sibling slot is still unconstructed, the whole container stays
	// unreadable.
	_, err = l.from.Get()
	requireT.ErrorIs(err, errs.ErrInvalidState)

	requireT.NoError(intrinsic.ConstructWith(l, "to", func(p *point) error {
		p.X = 2
		return nil
	}))

	from, err := l.from.Get()
	requireT.NoError(err)
	requireT.Equal(int64(1), from.X)
}

func TestConstructTwice(t *testing.T) {
	requireT := require.New(t)

	l := &line{}
	requireT.NoError(intrinsic.ConstructWith(l, "from", func(p *point) error { return nil }))
	requireT.ErrorIs(intrinsic.ConstructWith(l, "from", func(p *point) error { return nil }),
		errs.ErrInvalidState)
}

func TestCrossInstanceReuse(t *testing.T) {
	requireT := require.New(t)

	l1 := &line{}
	requireT.NoError(intrinsic.ConstructWith(l1, "from", func(p *point) error {
		p.X = 1
		return nil
	}))
	requireT.NoError(intrinsic.ConstructWith(l1, "to", func(p *point) error { return nil }))

	// Smuggling a constructed slot into another container instance.
	l2 := &line{}
	l2.from = l1.from
	requireT.ErrorIs(intrinsic.ConstructWith(l2, "from", func(p *point) error { return nil }),
		errs.ErrInvalidState)

	// The aliased copy is not readable either.
	_, err := l2.from.Get()
	requireT.ErrorIs(err, errs.ErrInvalidState)
}

func TestExportedFieldRejected(t *testing.T) {
	requireT := require.New(t)

	e := &exposed{}
	requireT.ErrorIs(intrinsic.ConstructWith(e, "From", func(p *point) error { return nil }),
		errs.ErrInvalidArgument)
}

func TestPointerFieldRejected(t *testing.T) {
	requireT := require.New(t)

	a := &aliased{}
	requireT.ErrorIs(intrinsic.ConstructWith(a, "ptr", func(p *point) error { return nil }),
		errs.ErrInvalidArgument)
}

func TestNotASlotField(t *testing.T) {
	requireT := require.New(t)

	p := &point{}
	requireT.ErrorIs(intrinsic.ConstructWith(p, "X", func(v *int64) error { return nil }),
		errs.ErrInvalidArgument)
	requireT.ErrorIs(intrinsic.ConstructWith(p, "missing", func(v *int64) error { return nil }),
		errs.ErrInvalidArgument)
}

func TestNonStructContainerRejected(t *testing.T) {
	requireT := require.New(t)

	requireT.ErrorIs(intrinsic.ConstructWith[point](nil, "from", func(p *point) error { return nil }),
		errs.ErrInvalidArgument)

	v := int64(1)
	requireT.ErrorIs(intrinsic.ConstructWith(&v, "from", func(p *point) error { return nil }),
		errs.ErrInvalidArgument)
}

func TestConstructorErrorLeavesSlotUnconstructed(t *testing.T) {
	requireT := require.New(t)

	l := &line{}
	err := intrinsic.ConstructWith(l, "from", func(p *point) error {
		return errs.ErrInvalidArgument
	})
	requireT.ErrorIs(err, errs.ErrInvalidArgument)
	requireT.Equal(intrinsic.StateUnconstructed, l.from.State())

	// A failed construction may be retried.
	requireT.NoError(intrinsic.ConstructWith(l, "from", func(p *point) error { return nil }))
}
