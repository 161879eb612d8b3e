package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

func aud(s string) money.Money {
	m, err := money.NewFromString(s, money.AUD)
	if err != nil {
		panic(err)
	}
	return m
}

func TestArithmetic(t *testing.T) {
	rq := require.New(t)

	sum := aud("10.50").Add(aud("4.25"))
	rq.True(sum.Equal(aud("14.75")))

	diff := aud("10.50").Sub(aud("4.25"))
	rq.True(diff.Equal(aud("6.25")))

	rq.True(aud("3").Neg().Equal(aud("-3")))
	rq.True(aud("3").Mul(decimal.NewFromInt(4)).Equal(aud("12")))
	rq.True(aud("12").Div(decimal.NewFromInt(4)).Equal(aud("3")))
}

func TestZeroValueActsAsIdentity(t *testing.T) {
	rq := require.New(t)

	var zero money.Money
	sum := zero.Add(aud("5"))
	rq.Equal(money.AUD, sum.Currency)
	rq.True(sum.Equal(aud("5")))

	sum = aud("5").Add(zero)
	rq.Equal(money.AUD, sum.Currency)
}

func TestCurrencyMismatchPanics(t *testing.T) {
	rq := require.New(t)

	util.AssertsPanic = true
	defer func() { util.AssertsPanic = false }()

	usd := money.NewFromInt(1, money.USD)
	rq.Panics(func() { aud("1").Add(usd) })
	rq.Panics(func() { aud("1").Sub(usd) })
	rq.Panics(func() { aud("1").LessThan(usd) })
}

func TestPredicates(t *testing.T) {
	rq := require.New(t)

	rq.True(money.Zero(money.AUD).IsZero())
	rq.True(aud("0.01").IsPositive())
	rq.True(aud("-0.01").IsNegative())
	rq.True(aud("1").LessThan(aud("2")))
	rq.True(aud("2").GreaterThan(aud("1")))
	rq.False(aud("1").Equal(money.NewFromInt(1, money.USD)))
}

func TestString(t *testing.T) {
	rq := require.New(t)

	rq.Equal("123.46 AUD", aud("123.456").String())
	rq.Equal("10.00 AUD", aud("10").String())

	var noCurrency money.Money
	rq.Equal("0", noCurrency.String())
}

func TestDisplay(t *testing.T) {
	rq := require.New(t)
	rq.Equal("A$1,234.46", aud("1234.456").Display())
	rq.Equal("$1,234.46", money.New(decimal.RequireFromString("1234.456"), money.USD).Display())
}
