package portfolio

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/money"
)

// GainsRow is one realized capital gain: a single sell allocation matched
// to the parcel it consumed.
type GainsRow struct {
	SellDate   date.Date
	Instrument string
	Quantity   decimal.Decimal

	BuyID        uuid.UUID
	ParcelID     uuid.UUID
	SellID       uuid.UUID
	AllocationID uuid.UUID

	BuyDate  date.Date
	DaysHeld int
	// DiscountEligible marks holdings longer than a year.
	DiscountEligible bool

	Proceeds    money.Money
	CostBase    money.Money
	CapitalGain money.Money

	FiscalYear string
}

// RealizedGains returns one row per sell allocation, ordered by the
// sells' processing order. Proceeds are apportioned to allocations by
// quantity; cost base comes from the consumed parcel, scaled when the
// allocation took only part of it.
func (b *Book) RealizedGains() []GainsRow {
	b.mu.Lock()
	defer b.mu.Unlock()

	var rows []GainsRow
	for _, sell := range b.store.Sells() {
		for _, alloc := range b.store.AllocationsForSell(sell.ID) {
			p, ok := b.store.Parcel(alloc.ParcelID)
			if !ok {
				continue
			}
			buy := b.store.BuyOf(p)
			proceeds := sell.Proceeds().Mul(alloc.Quantity).Div(sell.Quantity)
			costBase := b.store.TotalCostBase(p).Mul(alloc.Quantity).Div(p.Quantity)
			daysHeld := sell.Date.DaysSince(buy.Date)
			rows = append(rows, GainsRow{
				SellDate:         sell.Date,
				Instrument:       sell.Instrument,
				Quantity:         alloc.Quantity,
				BuyID:            buy.ID,
				ParcelID:         p.ID,
				SellID:           sell.ID,
				AllocationID:     alloc.ID,
				BuyDate:          buy.Date,
				DaysHeld:         daysHeld,
				DiscountEligible: daysHeld > discountHoldingDays,
				Proceeds:         proceeds,
				CostBase:         costBase,
				CapitalGain:      proceeds.Sub(costBase),
				FiscalYear:       b.fyType.ClassifyDate(sell.Date).Name(),
			})
		}
	}
	return rows
}

// FiscalYearTotal aggregates realized gains for one fiscal year.
type FiscalYearTotal struct {
	FiscalYear string
	Proceeds   money.Money
	CostBase   money.Money
	Gain       money.Money
	// DiscountEligibleGain is the portion of Gain from parcels held
	// longer than a year, before any discount is applied.
	DiscountEligibleGain money.Money
}

// AggregateGainsByFiscalYear folds gains rows into per-year totals,
// ordered by year name.
func AggregateGainsByFiscalYear(rows []GainsRow, currency money.Currency) []FiscalYearTotal {
	byYear := make(map[string]*FiscalYearTotal)
	for _, row := range rows {
		t, ok := byYear[row.FiscalYear]
		if !ok {
			t = &FiscalYearTotal{
				FiscalYear:           row.FiscalYear,
				Proceeds:             money.Zero(currency),
				CostBase:             money.Zero(currency),
				Gain:                 money.Zero(currency),
				DiscountEligibleGain: money.Zero(currency),
			}
			byYear[row.FiscalYear] = t
		}
		t.Proceeds = t.Proceeds.Add(row.Proceeds)
		t.CostBase = t.CostBase.Add(row.CostBase)
		t.Gain = t.Gain.Add(row.CapitalGain)
		if row.DiscountEligible {
			t.DiscountEligibleGain = t.DiscountEligibleGain.Add(row.CapitalGain)
		}
	}
	totals := make([]FiscalYearTotal, 0, len(byYear))
	for _, t := range byYear {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].FiscalYear < totals[j].FiscalYear
	})
	return totals
}

// HoldingsRow is one instrument's open position.
type HoldingsRow struct {
	Instrument string
	Quantity   decimal.Decimal
	CostBase   money.Money
	// MarketValue and UnrealizedGain are zero-currency when the
	// instrument has no current price.
	MarketValue    money.Money
	UnrealizedGain money.Money
}

// Holdings returns the open position per instrument with at least one
// allocatable parcel, valued at the instrument's current unit price
// converted into the book currency.
func (b *Book) Holdings() []HoldingsRow {
	b.mu.Lock()
	defer b.mu.Unlock()

	var rows []HoldingsRow
	for _, inst := range b.store.Instruments() {
		qty := b.store.QuantityHeld(inst.Name)
		if !qty.IsPositive() {
			continue
		}
		costBase := money.Zero(b.currency)
		for _, p := range b.store.ActiveParcelsFor(inst.Name, date.Today()) {
			remaining := b.store.RemainingQuantity(p)
			if !remaining.IsPositive() {
				continue
			}
			costBase = costBase.Add(b.store.TotalCostBase(p).Mul(remaining).Div(p.Quantity))
		}
		row := HoldingsRow{Instrument: inst.Name, Quantity: qty, CostBase: costBase}
		if !inst.CurrentUnitPrice.IsZero() {
			value := inst.CurrentUnitPrice.Mul(qty)
			if converted, ok := b.toBookCurrency(value); ok {
				row.MarketValue = converted
				row.UnrealizedGain = converted.Sub(costBase)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (b *Book) toBookCurrency(m money.Money) (money.Money, bool) {
	if m.Currency == b.currency {
		return m, true
	}
	if b.rates == nil {
		return money.Money{}, false
	}
	rate, ok := b.rates.LatestRate(m.Currency, b.currency)
	if !ok {
		return money.Money{}, false
	}
	return rate.Apply(m), true
}
