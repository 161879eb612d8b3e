package portfolio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/money"
	ptf "github.com/sharelot/sharelot/portfolio"
)

func TestRealizedGainsEmptyBook(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)
	rq.Empty(book.RealizedGains())
	rq.Empty(book.Holdings())
}

func TestRealizedGainsSingleSell(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-05", Shares: "100", Price: "10", Brokerage: "10"})
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-05-01", Shares: "100", Price: "12", Brokerage: "10"})

	rows := book.RealizedGains()
	rq.Equal(1, len(rows))
	row := rows[0]

	rq.Equal("WOW", row.Instrument)
	rq.Equal(mkDate("2024-01-05"), row.BuyDate)
	rq.Equal(mkDate("2024-05-01"), row.SellDate)
	rq.True(row.Quantity.Equal(dec("100")))
	rq.False(row.DiscountEligible)
	rq.Equal("FY2023/24", row.FiscalYear)

	// proceeds 1200 - 10 brokerage; cost 1000 + 10 brokerage
	rq.True(row.Proceeds.Equal(aud("1190")))
	rq.True(row.CostBase.Equal(aud("1010")))
	rq.True(row.CapitalGain.Equal(aud("180")))
}

func TestRealizedGainsApportionsAcrossParcels(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2022-01-05", Shares: "100", Price: "10"})
	processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-10", Shares: "50", Price: "11"})
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-02-01", Shares: "120", Price: "12"})

	rows := book.RealizedGains()
	rq.Equal(2, len(rows))

	// FIFO: 100 from the 2022 buy (discount eligible), 20 from the
	// 2024 buy.
	rq.True(rows[0].Quantity.Equal(dec("100")))
	rq.True(rows[0].DiscountEligible)
	rq.True(rows[0].Proceeds.Equal(aud("1200")))
	rq.True(rows[0].CapitalGain.Equal(aud("200")))

	rq.True(rows[1].Quantity.Equal(dec("20")))
	rq.False(rows[1].DiscountEligible)
	rq.True(rows[1].Proceeds.Equal(aud("240")))
	rq.True(rows[1].CapitalGain.Equal(aud("20")))
}

func TestAggregateGainsByFiscalYear(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2022-01-05", Shares: "200", Price: "10"})
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-05-01", Shares: "100", Price: "12"})
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-08-01", Shares: "100", Price: "13"})

	rows := book.RealizedGains()
	totals := ptf.AggregateGainsByFiscalYear(rows, money.AUD)
	rq.Equal(2, len(totals))

	rq.Equal("FY2023/24", totals[0].FiscalYear)
	rq.True(totals[0].Gain.Equal(aud("200")))
	rq.True(totals[0].DiscountEligibleGain.Equal(aud("200")))

	rq.Equal("FY2024/25", totals[1].FiscalYear)
	rq.True(totals[1].Gain.Equal(aud("300")))
}

func TestHoldings(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-05", Shares: "100", Price: "10"})
	processBuy(t, book, TBuy{Sec: "BHP", Date: "2024-01-07", Shares: "30", Price: "40"})
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-02-01", Shares: "100", Price: "12"})

	rows := book.Holdings()
	rq.Equal(1, len(rows))
	rq.Equal("BHP", rows[0].Instrument)
	rq.True(rows[0].Quantity.Equal(dec("30")))
	rq.True(rows[0].CostBase.Equal(aud("1200")))
	// No price history loaded: no market value.
	rq.True(rows[0].MarketValue.IsZero())
}

func TestHoldingsValuedAtCurrentPrice(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "BHP", Date: "2024-01-07", Shares: "30", Price: "40"})
	inst, ok := book.Store().Instrument("BHP")
	rq.True(ok)
	inst.CurrentUnitPrice = aud("45")

	rows := book.Holdings()
	rq.Equal(1, len(rows))
	rq.True(rows[0].MarketValue.Equal(aud("1350")))
	rq.True(rows[0].UnrealizedGain.Equal(aud("150")))
}

func TestGainsSurviveSplitAndBifurcation(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2022-01-05", Shares: "100", Price: "30"})
	rq.Nil(book.ProcessSplit(&ptf.ShareSplit{
		Instrument:     "WOW",
		QuantityBefore: dec("1"),
		QuantityAfter:  dec("3"),
		Date:           mkDate("2023-03-01"),
	}))
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-05-01", Shares: "150", Price: "15"})

	rows := book.RealizedGains()
	rq.Equal(1, len(rows))
	// 150 of 300 split shares: cost base is half the original 3000.
	rq.True(rows[0].CostBase.Equal(aud("1500")))
	rq.True(rows[0].Proceeds.Equal(aud("2250")))
	rq.True(rows[0].CapitalGain.Equal(aud("750")))
	rq.True(rows[0].DiscountEligible)

	// The rest is still held at the remaining cost base.
	rq.True(totalActiveQuantity(book, "WOW").Equal(dec("150")))
	rq.True(totalActiveCostBase(book, "WOW").Equal(aud("1500")))
}
