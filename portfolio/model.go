package portfolio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/fx"
	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

// NewID returns a time-ordered (v7) UUID. Insertion order of entities
// created in one process matches id order, which keeps audit trails and
// exports stable.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	util.Assert(err == nil, "uuid.NewV7: ", err)
	return id
}

// Strategy selects how a sell is matched against parcels.
type Strategy int

const (
	FIFO Strategy = iota
	LIFO
	MinCGT
	Manual
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "FIFO"
	case LIFO:
		return "LIFO"
	case MinCGT:
		return "MIN_CGT"
	case Manual:
		return "MANUAL"
	default:
		return "unknown"
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "FIFO":
		return FIFO, nil
	case "LIFO":
		return LIFO, nil
	case "MIN_CGT":
		return MinCGT, nil
	case "MANUAL":
		return Manual, nil
	default:
		return 0, fmt.Errorf("unknown sell strategy: %q", s)
	}
}

// AllocationMethod selects how a cost-base adjustment is distributed.
type AllocationMethod int

const (
	// QtyHeld prorates across parcels weighted by quantity x days held
	// within the fiscal window.
	QtyHeld AllocationMethod = iota
	// ManualAdjustment performs no automatic distribution.
	ManualAdjustment
)

func (m AllocationMethod) String() string {
	switch m {
	case QtyHeld:
		return "QTY_HELD"
	case ManualAdjustment:
		return "MANUAL"
	default:
		return "unknown"
	}
}

func ParseAllocationMethod(s string) (AllocationMethod, error) {
	switch s {
	case "QTY_HELD":
		return QtyHeld, nil
	case "MANUAL":
		return ManualAdjustment, nil
	default:
		return 0, fmt.Errorf("unknown allocation method: %q", s)
	}
}

// Instrument is a tradable security. CurrentUnitPrice is zero until price
// history has been loaded.
type Instrument struct {
	ID               uuid.UUID
	Name             string
	Currency         money.Currency
	CurrentUnitPrice money.Money
}

// Trade is the common part of buys and sells. Money amounts are in the
// trade's own currency; Rate is set when that differs from the book
// currency and converts into it.
type Trade struct {
	ID         uuid.UUID
	Instrument string
	Date       date.Date
	Quantity   decimal.Decimal
	UnitPrice  money.Money
	Brokerage  money.Money
	Rate       *fx.Rate
	Memo       string
}

func (t *Trade) UnitPriceConverted() money.Money {
	if t.Rate != nil {
		return t.Rate.Apply(t.UnitPrice)
	}
	return t.UnitPrice
}

func (t *Trade) TotalBrokerageConverted() money.Money {
	if t.Rate != nil {
		return t.Rate.Apply(t.Brokerage)
	}
	return t.Brokerage
}

func (t *Trade) UnitBrokerageConverted() money.Money {
	return t.TotalBrokerageConverted().Div(t.Quantity)
}

// Buy is immutable once its parcel exists.
type Buy struct {
	Trade
}

type Sell struct {
	Trade
	Strategy Strategy
}

// Proceeds is the converted sale value net of brokerage.
func (s *Sell) Proceeds() money.Money {
	return s.UnitPriceConverted().Mul(s.Quantity).Sub(s.TotalBrokerageConverted())
}

func (s *Sell) UnitProceeds() money.Money {
	return s.Proceeds().Div(s.Quantity)
}

// Parcel is a tax lot: a quantity of an instrument acquired at one cost,
// tracked separately for gain computation. Parcels form a lineage tree
// through bifurcations and corporate actions, linked by ParentID (never
// direct object references). A deactivated parcel is never reactivated
// and never deleted.
type Parcel struct {
	ID    uuid.UUID
	BuyID uuid.UUID
	// ParentID is uuid.Nil for a parcel created directly from a buy.
	ParentID uuid.UUID
	Quantity decimal.Decimal
	// SplitMultiplier accumulates corporate-action multipliers applied
	// along this parcel's lineage. Starts at 1.
	SplitMultiplier  decimal.Decimal
	ActivationDate   date.Date
	DeactivationDate util.Optional[date.Date]
}

func (p *Parcel) Active() bool {
	return !p.DeactivationDate.Present()
}

// SellAllocation links a disposal to the parcel that settles it. The
// parcel was bifurcated to match Quantity exactly, so its remaining
// quantity is zero immediately after creation.
type SellAllocation struct {
	ID       uuid.UUID
	ParcelID uuid.UUID
	SellID   uuid.UUID
	Quantity decimal.Decimal
}

// ShareSplit rescales all holdings of an instrument, eg. 1-into-3.
// Consolidations have QuantityAfter < QuantityBefore.
type ShareSplit struct {
	ID              uuid.UUID
	Instrument      string
	QuantityBefore  decimal.Decimal
	QuantityAfter   decimal.Decimal
	Date            date.Date
	AffectedParcels []uuid.UUID
}

// Multiplier is QuantityAfter / QuantityBefore, rounded half-up to six
// decimal places.
func (s *ShareSplit) Multiplier() decimal.Decimal {
	return s.QuantityAfter.Div(s.QuantityBefore).Round(6)
}

func (s *ShareSplit) String() string {
	return fmt.Sprintf("%s | Split of %s | Multiplier = %s", s.Date, s.Instrument, s.Multiplier())
}

// CostBaseAdjustment is an externally-driven cost base increase (eg. an
// AMIT annual statement amount) prorated across an instrument's parcels.
type CostBaseAdjustment struct {
	ID               uuid.UUID
	Instrument       string
	CostBaseIncrease money.Money
	Rate             *fx.Rate
	FiscalYearEnd    date.Date
	Method           AllocationMethod
}

func (a *CostBaseAdjustment) ConvertedIncrease() money.Money {
	if a.Rate != nil {
		return a.Rate.Apply(a.CostBaseIncrease)
	}
	return a.CostBaseIncrease
}

// CostBaseAdjustmentAllocation is one parcel's share of an adjustment.
// When its parcel is bifurcated the allocation is split the same way and
// this record is deactivated; total adjustment amount is preserved.
type CostBaseAdjustmentAllocation struct {
	ID               uuid.UUID
	ParcelID         uuid.UUID
	AdjustmentID     uuid.UUID
	CostBaseIncrease money.Money
	DeactivationDate util.Optional[date.Date]
}

func (a *CostBaseAdjustmentAllocation) Active() bool {
	return !a.DeactivationDate.Present()
}
