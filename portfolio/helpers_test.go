package portfolio_test

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/audit"
	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/fiscal"
	"github.com/sharelot/sharelot/money"
	ptf "github.com/sharelot/sharelot/portfolio"
	"github.com/sharelot/sharelot/util"
)

func TestMain(m *testing.M) {
	date.TodaysDateForTest = date.New(3000, 1, 1)
	util.AssertsPanic = true
	os.Exit(m.Run())
}

func mkDate(dateStr string) date.Date {
	return date.MustParse(dateStr)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func aud(s string) money.Money {
	return money.New(dec(s), money.AUD)
}

type testBook struct {
	*ptf.Book
	sink *audit.MemorySink
}

func newTestBook(policy ptf.AllocationPolicy) *testBook {
	sink := audit.NewMemorySink()
	book := ptf.NewBook(ptf.Config{
		Currency:       money.AUD,
		FiscalYearType: fiscal.Australian(),
		Policy:         policy,
		Audit:          sink,
	})
	return &testBook{Book: book, sink: sink}
}

type TBuy struct {
	Sec       string
	Date      string
	Shares    string
	Price     string
	Brokerage string
}

func (b TBuy) X() *ptf.Buy {
	brokerage := money.Zero(money.AUD)
	if b.Brokerage != "" {
		brokerage = aud(b.Brokerage)
	}
	return &ptf.Buy{Trade: ptf.Trade{
		Instrument: b.Sec,
		Date:       mkDate(b.Date),
		Quantity:   dec(b.Shares),
		UnitPrice:  aud(b.Price),
		Brokerage:  brokerage,
	}}
}

type TSell struct {
	Sec       string
	Date      string
	Shares    string
	Price     string
	Brokerage string
	Strategy  ptf.Strategy
}

func (s TSell) X() *ptf.Sell {
	brokerage := money.Zero(money.AUD)
	if s.Brokerage != "" {
		brokerage = aud(s.Brokerage)
	}
	return &ptf.Sell{
		Trade: ptf.Trade{
			Instrument: s.Sec,
			Date:       mkDate(s.Date),
			Quantity:   dec(s.Shares),
			UnitPrice:  aud(s.Price),
			Brokerage:  brokerage,
		},
		Strategy: s.Strategy,
	}
}

func processBuy(t *testing.T, book *testBook, b TBuy) *ptf.Parcel {
	t.Helper()
	p, err := book.ProcessBuy(b.X())
	require.New(t).Nil(err)
	return p
}

func processSell(t *testing.T, book *testBook, s TSell) []*ptf.SellAllocation {
	t.Helper()
	allocs, err := book.ProcessSell(s.X())
	require.New(t).Nil(err)
	return allocs
}

// totalActiveQuantity sums remaining quantity over active parcels.
func totalActiveQuantity(book *testBook, sec string) decimal.Decimal {
	return book.Store().QuantityHeld(sec)
}

// totalActiveCostBase sums cost base over allocatable parcels.
func totalActiveCostBase(book *testBook, sec string) money.Money {
	store := book.Store()
	total := money.Zero(money.AUD)
	for _, p := range store.ActiveParcelsFor(sec, mkDate("3000-01-01")) {
		remaining := store.RemainingQuantity(p)
		if !remaining.IsPositive() {
			continue
		}
		total = total.Add(store.TotalCostBase(p).Mul(remaining).Div(p.Quantity))
	}
	return total
}
