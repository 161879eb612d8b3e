package portfolio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/audit"
	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/fx"
	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

// Store is the in-memory arena owning every record of one account's book:
// instruments, trades, parcels and allocations, addressed by stable ids.
// Records are appended and mutated in place but never deleted, so every
// reference stays valid for audit. Store methods are not safe for
// concurrent use; Book serializes access.
type Store struct {
	instruments     map[string]*Instrument
	instrumentOrder []string

	buys      map[uuid.UUID]*Buy
	buyOrder  []uuid.UUID
	sells     map[uuid.UUID]*Sell
	sellOrder []uuid.UUID

	parcels     map[uuid.UUID]*Parcel
	parcelOrder []uuid.UUID

	allocs        []*SellAllocation
	allocsBySell  map[uuid.UUID][]*SellAllocation
	allocByParcel map[uuid.UUID][]*SellAllocation

	adjustments     map[uuid.UUID]*CostBaseAdjustment
	adjustmentOrder []uuid.UUID
	adjAllocs       []*CostBaseAdjustmentAllocation
	adjAllocsByPcl  map[uuid.UUID][]*CostBaseAdjustmentAllocation

	priceHistory map[string][]fx.PricePoint

	audit audit.Sink
}

func NewStore(sink audit.Sink) *Store {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Store{
		instruments:    make(map[string]*Instrument),
		buys:           make(map[uuid.UUID]*Buy),
		sells:          make(map[uuid.UUID]*Sell),
		parcels:        make(map[uuid.UUID]*Parcel),
		allocsBySell:   make(map[uuid.UUID][]*SellAllocation),
		allocByParcel:  make(map[uuid.UUID][]*SellAllocation),
		adjustments:    make(map[uuid.UUID]*CostBaseAdjustment),
		adjAllocsByPcl: make(map[uuid.UUID][]*CostBaseAdjustmentAllocation),
		priceHistory:   make(map[string][]fx.PricePoint),
		audit:          sink,
	}
}

func (s *Store) AddInstrument(inst *Instrument) error {
	if _, ok := s.instruments[inst.Name]; ok {
		return fmt.Errorf("instrument %q already exists", inst.Name)
	}
	if inst.ID == uuid.Nil {
		inst.ID = NewID()
	}
	s.instruments[inst.Name] = inst
	s.instrumentOrder = append(s.instrumentOrder, inst.Name)
	return nil
}

func (s *Store) Instrument(name string) (*Instrument, bool) {
	inst, ok := s.instruments[name]
	return inst, ok
}

func (s *Store) Instruments() []*Instrument {
	insts := make([]*Instrument, 0, len(s.instrumentOrder))
	for _, name := range s.instrumentOrder {
		insts = append(insts, s.instruments[name])
	}
	return insts
}

func (s *Store) addBuy(buy *Buy) error {
	if _, ok := s.buys[buy.ID]; ok {
		return fmt.Errorf("buy %s already processed", buy.ID)
	}
	s.buys[buy.ID] = buy
	s.buyOrder = append(s.buyOrder, buy.ID)
	return nil
}

func (s *Store) addSell(sell *Sell) error {
	if _, ok := s.sells[sell.ID]; ok {
		return fmt.Errorf("sell %s already processed", sell.ID)
	}
	s.sells[sell.ID] = sell
	s.sellOrder = append(s.sellOrder, sell.ID)
	return nil
}

func (s *Store) Buy(id uuid.UUID) (*Buy, bool) {
	b, ok := s.buys[id]
	return b, ok
}

// removeSell unwinds a sell rejected before any parcel was mutated.
func (s *Store) removeSell(id uuid.UUID) {
	if _, ok := s.sells[id]; !ok {
		return
	}
	delete(s.sells, id)
	for i, sid := range s.sellOrder {
		if sid == id {
			s.sellOrder = append(s.sellOrder[:i], s.sellOrder[i+1:]...)
			break
		}
	}
}

func (s *Store) Sell(id uuid.UUID) (*Sell, bool) {
	sl, ok := s.sells[id]
	return sl, ok
}

func (s *Store) Sells() []*Sell {
	sells := make([]*Sell, 0, len(s.sellOrder))
	for _, id := range s.sellOrder {
		sells = append(sells, s.sells[id])
	}
	return sells
}

func (s *Store) Parcel(id uuid.UUID) (*Parcel, bool) {
	p, ok := s.parcels[id]
	return p, ok
}

// BuyOf returns the originating buy of a parcel. Every parcel has one;
// a missing buy means the arena was corrupted.
func (s *Store) BuyOf(p *Parcel) *Buy {
	buy, ok := s.buys[p.BuyID]
	util.Assertf(ok, "parcel %s references unknown buy %s", p.ID, p.BuyID)
	return buy
}

func (s *Store) addParcel(p *Parcel) *Parcel {
	s.parcels[p.ID] = p
	s.parcelOrder = append(s.parcelOrder, p.ID)
	return p
}

// CreateFromBuy creates the single root parcel of a buy: full quantity,
// activated on the trade date, no parent.
func (s *Store) CreateFromBuy(buy *Buy) *Parcel {
	p := s.addParcel(&Parcel{
		ID:              NewID(),
		BuyID:           buy.ID,
		Quantity:        buy.Quantity,
		SplitMultiplier: decimal.NewFromInt(1),
		ActivationDate:  buy.Date,
	})
	s.audit.Event("parcel", p.ID, "created from buy %s (%s x %s %s)",
		buy.ID, buy.Quantity, buy.Instrument, buy.Date)
	return p
}

// Deactivate takes the parcel out of the active set as of d. Deactivating
// an already-inactive parcel is a no-op: the original deactivation date is
// kept.
func (s *Store) Deactivate(p *Parcel, d date.Date) {
	if !p.Active() {
		return
	}
	p.DeactivationDate.Set(d)
	s.audit.Event("parcel", p.ID, "deactivated on %s", d)
}

// ActiveParcelsFor returns the instrument's active parcels whose
// originating buy settled on or before asOf, in insertion order.
func (s *Store) ActiveParcelsFor(instrument string, asOf date.Date) []*Parcel {
	var out []*Parcel
	for _, id := range s.parcelOrder {
		p := s.parcels[id]
		if !p.Active() {
			continue
		}
		buy := s.BuyOf(p)
		if buy.Instrument != instrument || buy.Date.After(asOf) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParcelsForBuy returns every parcel (active or not) descended from the
// buy, in insertion order.
func (s *Store) ParcelsForBuy(buyID uuid.UUID) []*Parcel {
	var out []*Parcel
	for _, id := range s.parcelOrder {
		if p := s.parcels[id]; p.BuyID == buyID {
			out = append(out, p)
		}
	}
	return out
}

// AllocatedQuantity is the total quantity of the parcel consumed by sell
// allocations.
func (s *Store) AllocatedQuantity(parcelID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.allocByParcel[parcelID] {
		total = total.Add(a.Quantity)
	}
	return total
}

func (s *Store) RemainingQuantity(p *Parcel) decimal.Decimal {
	return p.Quantity.Sub(s.AllocatedQuantity(p.ID))
}

func (s *Store) addAllocation(a *SellAllocation) *SellAllocation {
	s.allocs = append(s.allocs, a)
	s.allocsBySell[a.SellID] = append(s.allocsBySell[a.SellID], a)
	s.allocByParcel[a.ParcelID] = append(s.allocByParcel[a.ParcelID], a)
	return a
}

func (s *Store) AllocationsForSell(sellID uuid.UUID) []*SellAllocation {
	return s.allocsBySell[sellID]
}

func (s *Store) Allocations() []*SellAllocation {
	return s.allocs
}

func (s *Store) addAdjustment(adj *CostBaseAdjustment) error {
	if _, ok := s.adjustments[adj.ID]; ok {
		return fmt.Errorf("cost base adjustment %s already processed", adj.ID)
	}
	s.adjustments[adj.ID] = adj
	s.adjustmentOrder = append(s.adjustmentOrder, adj.ID)
	return nil
}

func (s *Store) addAdjustmentAllocation(a *CostBaseAdjustmentAllocation) *CostBaseAdjustmentAllocation {
	s.adjAllocs = append(s.adjAllocs, a)
	s.adjAllocsByPcl[a.ParcelID] = append(s.adjAllocsByPcl[a.ParcelID], a)
	return a
}

func (s *Store) AdjustmentAllocations() []*CostBaseAdjustmentAllocation {
	return s.adjAllocs
}

// AdjustmentAllocationsFor returns the parcel's active cost-base
// adjustment allocations.
func (s *Store) AdjustmentAllocationsFor(parcelID uuid.UUID) []*CostBaseAdjustmentAllocation {
	var out []*CostBaseAdjustmentAllocation
	for _, a := range s.adjAllocsByPcl[parcelID] {
		if a.Active() {
			out = append(out, a)
		}
	}
	return out
}

// AdjustedBuyPrice is the buy's converted unit price scaled down by the
// parcel's cumulative split multiplier.
func (s *Store) AdjustedBuyPrice(p *Parcel) money.Money {
	return s.BuyOf(p).UnitPriceConverted().Div(p.SplitMultiplier)
}

func (s *Store) AdjustedUnitBrokerage(p *Parcel) money.Money {
	return s.BuyOf(p).UnitBrokerageConverted().Div(p.SplitMultiplier)
}

// TotalCostBase is the parcel's effective cost base: split-adjusted price
// and brokerage for its quantity, plus any active cost-base adjustment
// allocations. The split division happens last to keep exact quantities
// exact.
func (s *Store) TotalCostBase(p *Parcel) money.Money {
	buy := s.BuyOf(p)
	base := buy.UnitPriceConverted().Add(buy.UnitBrokerageConverted()).
		Mul(p.Quantity).Div(p.SplitMultiplier)
	for _, a := range s.AdjustmentAllocationsFor(p.ID) {
		base = base.Add(a.CostBaseIncrease)
	}
	return base
}

func (s *Store) UnitCostBase(p *Parcel) money.Money {
	return s.TotalCostBase(p).Div(p.Quantity)
}

// QuantityHeld is the instrument's total remaining quantity across active
// parcels. Survives splits, unlike summing raw trade quantities.
func (s *Store) QuantityHeld(instrument string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.ActiveParcelsFor(instrument, date.Today()) {
		total = total.Add(s.RemainingQuantity(p))
	}
	return total
}

func (s *Store) PriceHistory(instrument string) []fx.PricePoint {
	return s.priceHistory[instrument]
}

func (s *Store) appendPriceHistory(instrument string, points []fx.PricePoint) {
	s.priceHistory[instrument] = append(s.priceHistory[instrument], points...)
}
