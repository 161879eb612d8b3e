package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/util"
)

// Currency is an ISO 4217 code, eg. "AUD".
type Currency string

const (
	AUD Currency = "AUD"
	USD Currency = "USD"
	NZD Currency = "NZD"
	GBP Currency = "GBP"
)

// Money is an exact decimal amount in a single currency. The zero value
// (zero amount, empty currency) acts as an additive identity: its currency
// is weak and adopts the other operand's.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func New(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

func NewFromInt(amount int64, currency Currency) Money {
	return Money{Amount: decimal.NewFromInt(amount), Currency: currency}
}

func NewFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: d, Currency: currency}, nil
}

func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// mergedCurrency resolves the currency for a binary operation. Mixing two
// concrete currencies is a programming error: convert first.
func mergedCurrency(a, b Money) Currency {
	if a.Currency == "" {
		return b.Currency
	}
	if b.Currency == "" {
		return a.Currency
	}
	util.Assertf(a.Currency == b.Currency,
		"money: currency mismatch (%s and %s)", a.Currency, b.Currency)
	return a.Currency
}

func (m Money) Add(n Money) Money {
	return Money{Amount: m.Amount.Add(n.Amount), Currency: mergedCurrency(m, n)}
}

func (m Money) Sub(n Money) Money {
	return Money{Amount: m.Amount.Sub(n.Amount), Currency: mergedCurrency(m, n)}
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Mul scales by a dimensionless factor (a quantity or a fraction).
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

func (m Money) Div(divisor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Div(divisor), Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

func (m Money) Equal(n Money) bool {
	return m.Currency == n.Currency && m.Amount.Equal(n.Amount)
}

func (m Money) LessThan(n Money) bool {
	mergedCurrency(m, n)
	return m.Amount.LessThan(n.Amount)
}

func (m Money) GreaterThan(n Money) bool {
	mergedCurrency(m, n)
	return m.Amount.GreaterThan(n.Amount)
}

// fraction returns the minor-unit digit count for the currency, defaulting
// to 2 for codes go-money does not know.
func (m Money) fraction() int {
	if c := gomoney.GetCurrency(string(m.Currency)); c != nil {
		return c.Fraction
	}
	return 2
}

// String renders the amount rounded to the currency's minor unit, eg.
// "123.46 AUD". Exact amounts are kept internally; rounding is display only.
func (m Money) String() string {
	if m.Currency == "" {
		return m.Amount.String()
	}
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(int32(m.fraction())), m.Currency)
}

// Display formats with the currency's own grapheme and separators, via the
// go-money formatter ("$1,234.46").
func (m Money) Display() string {
	cur := gomoney.GetCurrency(string(m.Currency))
	if cur == nil {
		return m.String()
	}
	minor := m.Amount.Shift(int32(cur.Fraction)).Round(0)
	return gomoney.New(minor.IntPart(), string(m.Currency)).Display()
}
