package portfolio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	ptf "github.com/sharelot/sharelot/portfolio"
)

func TestSplitTransformsParcels(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)
	store := book.Store()

	p := processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-05", Shares: "100", Price: "30", Brokerage: "10"})
	before := store.TotalCostBase(p)

	split := &ptf.ShareSplit{
		Instrument:     "WOW",
		QuantityBefore: dec("1"),
		QuantityAfter:  dec("3"),
		Date:           mkDate("2024-03-01"),
	}
	rq.Nil(book.ProcessSplit(split))

	rq.False(p.Active())
	rq.Equal(1, len(split.AffectedParcels))

	child, ok := store.Parcel(split.AffectedParcels[0])
	rq.True(ok)
	rq.True(child.Active())
	rq.Equal(p.ID, child.ParentID)
	rq.True(child.Quantity.Equal(dec("300")))
	rq.True(child.SplitMultiplier.Equal(dec("3")))
	rq.Equal(mkDate("2024-03-01"), child.ActivationDate)

	// Cost base is conserved through the transformation.
	rq.True(store.TotalCostBase(child).Equal(before))
	rq.True(totalActiveQuantity(book, "WOW").Equal(dec("300")))
}

func TestConsolidationTransformsParcels(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	p := processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-05", Shares: "100", Price: "30"})

	// 10-into-1 consolidation.
	rq.Nil(book.ProcessSplit(&ptf.ShareSplit{
		Instrument:     "WOW",
		QuantityBefore: dec("10"),
		QuantityAfter:  dec("1"),
		Date:           mkDate("2024-03-01"),
	}))

	rq.False(p.Active())
	rq.True(totalActiveQuantity(book, "WOW").Equal(dec("10")))
	rq.True(totalActiveCostBase(book, "WOW").Equal(aud("3000")))
}

func TestSplitSkipsLaterBuysAndConsumedParcels(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-05", Shares: "100", Price: "30"})
	pLater := processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-04-01", Shares: "50", Price: "32"})
	processSell(t, book, TSell{Sec: "WOW", Date: "2024-02-01", Shares: "100", Price: "35"})

	split := &ptf.ShareSplit{
		Instrument:     "WOW",
		QuantityBefore: dec("1"),
		QuantityAfter:  dec("2"),
		Date:           mkDate("2024-03-01"),
	}
	rq.Nil(book.ProcessSplit(split))

	// The first buy was fully sold and the second settled after the
	// split date: nothing transforms.
	rq.Empty(split.AffectedParcels)
	rq.True(pLater.Active())
	rq.True(pLater.SplitMultiplier.Equal(dec("1")))
}

func TestSplitReparentsAdjustmentAllocations(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)
	store := book.Store()

	p := processBuy(t, book, TBuy{Sec: "WOW", Date: "2023-08-01", Shares: "100", Price: "10"})
	rq.Nil(book.ProcessAdjustment(&ptf.CostBaseAdjustment{
		Instrument:       "WOW",
		CostBaseIncrease: aud("50"),
		FiscalYearEnd:    mkDate("2024-06-30"),
		Method:           ptf.QtyHeld,
	}))

	split := &ptf.ShareSplit{
		Instrument:     "WOW",
		QuantityBefore: dec("1"),
		QuantityAfter:  dec("2"),
		Date:           mkDate("2024-08-01"),
	}
	rq.Nil(book.ProcessSplit(split))

	child, _ := store.Parcel(split.AffectedParcels[0])
	childAllocs := store.AdjustmentAllocationsFor(child.ID)
	rq.Equal(1, len(childAllocs))
	rq.True(childAllocs[0].CostBaseIncrease.Equal(aud("50")))
	rq.Empty(store.AdjustmentAllocationsFor(p.ID))

	// 100 @ $10 + $50 adjustment, unchanged by the split.
	rq.True(store.TotalCostBase(child).Equal(aud("1050")))
}

func TestSplitValidation(t *testing.T) {
	rq := require.New(t)
	book := newTestBook(ptf.AllowPartial)

	processBuy(t, book, TBuy{Sec: "WOW", Date: "2024-01-05", Shares: "100", Price: "30"})

	err := book.ProcessSplit(&ptf.ShareSplit{
		Instrument:     "BHP",
		QuantityBefore: dec("1"),
		QuantityAfter:  dec("2"),
		Date:           mkDate("2024-03-01"),
	})
	rq.NotNil(err)

	err = book.ProcessSplit(&ptf.ShareSplit{
		Instrument:     "WOW",
		QuantityBefore: dec("0"),
		QuantityAfter:  dec("2"),
		Date:           mkDate("2024-03-01"),
	})
	rq.NotNil(err)
}
