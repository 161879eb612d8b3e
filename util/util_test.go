package util_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/util"
)

func TestOptional(t *testing.T) {
	rq := require.New(t)

	var o util.Optional[int]
	rq.False(o.Present())
	rq.Equal(7, o.GetOr(7))
	rq.Panics(func() { o.MustGet() })

	o.Set(3)
	rq.True(o.Present())
	rq.Equal(3, o.MustGet())
	rq.Equal(3, o.GetOr(7))

	o.Clear()
	rq.False(o.Present())

	p := util.NewOptional("x")
	rq.True(p.Present())
	rq.Equal("x", p.MustGet())
}

func TestSet(t *testing.T) {
	rq := require.New(t)

	s := util.NewSet[string]()
	rq.Equal(0, s.Len())
	rq.False(s.Has("a"))
	s.Add("a")
	s.Add("a")
	s.Add("b")
	rq.Equal(2, s.Len())
	rq.True(s.Has("a"))
	rq.True(s.Has("b"))
}

func TestTern(t *testing.T) {
	rq := require.New(t)
	rq.Equal(1, util.Tern(true, 1, 2))
	rq.Equal(2, util.Tern(false, 1, 2))
}

func TestMinDecimal(t *testing.T) {
	rq := require.New(t)

	one := decimal.NewFromInt(1)
	two := decimal.NewFromInt(2)
	negOne := decimal.NewFromInt(-1)

	rq.True(util.MinDecimal(two, one, negOne).Equal(negOne))
	rq.True(util.MinDecimal(one, two).Equal(one))
	rq.True(util.MinDecimal(two).Equal(two))
	rq.Equal(3, util.MinInt(5, 3, 4))
}

func TestAssertPanicsWhenEnabled(t *testing.T) {
	rq := require.New(t)

	util.AssertsPanic = true
	defer func() { util.AssertsPanic = false }()

	rq.Panics(func() { util.Assert(false, "boom") })
	rq.Panics(func() { util.Assertf(false, "boom %d", 1) })
	rq.NotPanics(func() { util.Assert(true, "ok") })
}
