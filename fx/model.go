package fx

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

// ErrRateUnavailable indicates the market-data provider failed or had no
// observation for the requested date. Callers treat it as retryable and
// must abort any mutation that needed the rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Rate converts money from one currency to another on a given date.
// (From, To, Date) is unique within a store.
type Rate struct {
	From       money.Currency
	To         money.Currency
	Date       date.Date
	Multiplier decimal.Decimal
}

// Apply converts m into r.To. The zero Money (empty currency, zero
// amount) converts to zero in r.To; otherwise applying a rate to money
// in the wrong currency is a programming error, not a recoverable
// condition.
func (r Rate) Apply(m money.Money) money.Money {
	if m.Currency == "" && m.Amount.IsZero() {
		return money.Zero(r.To)
	}
	util.Assertf(m.Currency == r.From,
		"fx: rate %s applied to money in %s", r, m.Currency)
	return money.New(m.Amount.Mul(r.Multiplier), r.To)
}

func (r Rate) Equal(other Rate) bool {
	return r.From == other.From && r.To == other.To &&
		r.Date.Equal(other.Date) && r.Multiplier.Equal(other.Multiplier)
}

func (r Rate) String() string {
	return fmt.Sprintf("1 %s = %s %s on %s", r.From, r.Multiplier, r.To, r.Date)
}

// PricePoint is one daily bar of an instrument's price history.
// SplitRatio is non-zero only on a split's effective date.
type PricePoint struct {
	Date       date.Date
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     int64
	SplitRatio decimal.Decimal
}

// Provider is the external market-data source. Implementations must not
// panic on failure; absence of data is reported as ErrRateUnavailable.
type Provider interface {
	GetRate(from, to money.Currency, day date.Date) (decimal.Decimal, error)
	GetPriceHistory(symbol string, startDate date.Date) ([]PricePoint, error)
}
