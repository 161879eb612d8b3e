package portfolio

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/audit"
	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/fiscal"
	"github.com/sharelot/sharelot/fx"
	"github.com/sharelot/sharelot/money"
)

// Book is the top-level entry point for one account. It owns the parcel
// store and serializes every mutation, resolves exchange rates for trades
// in foreign currencies, and registers instruments on first use.
type Book struct {
	mu sync.Mutex

	currency money.Currency
	fyType   fiscal.YearType
	policy   AllocationPolicy

	store  *Store
	rates  *fx.Store
	market fx.Provider
}

type Config struct {
	// Currency is the reporting currency every trade is converted into.
	Currency money.Currency
	// FiscalYearType defaults to the Australian July-June year.
	FiscalYearType fiscal.YearType
	Policy         AllocationPolicy
	Audit          audit.Sink
	// Rates is required for trades priced in a currency other than
	// Currency.
	Rates *fx.Store
	// MarketData is optional; without it UpdatePriceHistory fails.
	MarketData fx.Provider
}

func NewBook(cfg Config) *Book {
	if cfg.FiscalYearType.StartMonth == 0 {
		cfg.FiscalYearType = fiscal.Australian()
	}
	return &Book{
		currency: cfg.Currency,
		fyType:   cfg.FiscalYearType,
		policy:   cfg.Policy,
		store:    NewStore(cfg.Audit),
		rates:    cfg.Rates,
		market:   cfg.MarketData,
	}
}

func (b *Book) Currency() money.Currency    { return b.currency }
func (b *Book) FiscalYear() fiscal.YearType { return b.fyType }

// Store exposes the underlying arena for reporting. Callers must not
// mutate through it while Process methods run.
func (b *Book) Store() *Store { return b.store }

// ProcessBuy records the buy and creates its root parcel. An instrument
// seen for the first time is registered with the trade's currency.
func (b *Book) ProcessBuy(buy *Buy) (*Parcel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.prepareTrade(&buy.Trade); err != nil {
		return nil, err
	}
	if err := b.store.addBuy(buy); err != nil {
		return nil, err
	}
	return b.store.CreateFromBuy(buy), nil
}

// ProcessSell records the sell and allocates it against active parcels
// under the sell's strategy and the book's allocation policy.
func (b *Book) ProcessSell(sell *Sell) ([]*SellAllocation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.prepareTrade(&sell.Trade); err != nil {
		return nil, err
	}
	if err := b.store.addSell(sell); err != nil {
		return nil, err
	}
	allocs, err := b.store.Allocate(sell, b.policy)
	if err != nil {
		// A shortfall under ErrorOnShortfall is detected before any
		// parcel is touched; unwind the sell record so the book is
		// unchanged.
		if len(allocs) == 0 {
			b.store.removeSell(sell.ID)
		}
		return nil, err
	}
	return allocs, nil
}

func (b *Book) ProcessSplit(split *ShareSplit) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if split.ID == uuid.Nil {
		split.ID = NewID()
	}
	return b.store.ApplySplit(split)
}

func (b *Book) ProcessAdjustment(adj *CostBaseAdjustment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if adj.ID == uuid.Nil {
		adj.ID = NewID()
	}
	if adj.Rate == nil && adj.CostBaseIncrease.Currency != b.currency {
		rate, err := b.resolveRate(adj.CostBaseIncrease.Currency, adj.FiscalYearEnd)
		if err != nil {
			return err
		}
		adj.Rate = rate
	}
	return b.store.ApplyAdjustment(adj)
}

// AddManualAllocation matches quantity units of the parcel against a
// MANUAL sell.
func (b *Book) AddManualAllocation(sellID, parcelID uuid.UUID, quantity decimal.Decimal) (*SellAllocation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sell, ok := b.store.Sell(sellID)
	if !ok {
		return nil, fmt.Errorf("unknown sell %s", sellID)
	}
	p, ok := b.store.Parcel(parcelID)
	if !ok {
		return nil, fmt.Errorf("unknown parcel %s", parcelID)
	}
	return b.store.AddManualAllocation(sell, p, quantity)
}

// UpdatePriceHistory extends the instrument's stored daily prices from
// the market data provider and refreshes its current unit price from the
// newest close.
func (b *Book) UpdatePriceHistory(instrument string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.market == nil {
		return fmt.Errorf("no market data provider configured")
	}
	inst, ok := b.store.Instrument(instrument)
	if !ok {
		return fmt.Errorf("unknown instrument %q", instrument)
	}

	start, ok := b.priceHistoryStart(instrument)
	if !ok {
		return nil
	}
	points, err := b.market.GetPriceHistory(instrument, start)
	if err != nil {
		return fmt.Errorf("price history for %s: %w", instrument, err)
	}
	if len(points) == 0 {
		return nil
	}
	b.store.appendPriceHistory(instrument, points)
	last := points[len(points)-1]
	inst.CurrentUnitPrice = money.New(last.Close, inst.Currency)
	return nil
}

// priceHistoryStart is the day after the newest stored point, or the
// earliest buy date when no history exists yet. False means the
// instrument has no trades to anchor a start on.
func (b *Book) priceHistoryStart(instrument string) (date.Date, bool) {
	if hist := b.store.PriceHistory(instrument); len(hist) > 0 {
		return hist[len(hist)-1].Date.AddDays(1), true
	}
	earliest := date.Date{}
	for _, id := range b.store.buyOrder {
		buy := b.store.buys[id]
		if buy.Instrument != instrument {
			continue
		}
		if earliest.IsZero() || buy.Date.Before(earliest) {
			earliest = buy.Date
		}
	}
	return earliest, !earliest.IsZero()
}

// prepareTrade assigns an id when the caller omitted one, registers the
// instrument on first use and resolves the trade's exchange rate into the
// book currency.
func (b *Book) prepareTrade(t *Trade) error {
	if t.ID == uuid.Nil {
		t.ID = NewID()
	}
	if t.Instrument == "" {
		return fmt.Errorf("trade %s names no instrument", t.ID)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("trade %s quantity must be positive, got %s", t.ID, t.Quantity)
	}
	if _, ok := b.store.Instrument(t.Instrument); !ok {
		err := b.store.AddInstrument(&Instrument{
			Name:     t.Instrument,
			Currency: t.UnitPrice.Currency,
		})
		if err != nil {
			return err
		}
	}
	if t.Rate == nil && t.UnitPrice.Currency != b.currency {
		rate, err := b.resolveRate(t.UnitPrice.Currency, t.Date)
		if err != nil {
			return fmt.Errorf("trade %s: %w", t.ID, err)
		}
		t.Rate = rate
	}
	return nil
}

func (b *Book) resolveRate(from money.Currency, day date.Date) (*fx.Rate, error) {
	if b.rates == nil {
		return nil, fmt.Errorf("no rate store configured for %s to %s conversion", from, b.currency)
	}
	rate, err := b.rates.GetOrCreate(from, b.currency, day)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
