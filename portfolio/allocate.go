package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/log"
	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

// AllocationPolicy controls what happens when a sell asks for more
// quantity than the active parcels can supply.
type AllocationPolicy int

const (
	// AllowPartial allocates whatever is available and leaves the
	// shortfall unmatched.
	AllowPartial AllocationPolicy = iota
	// ErrorOnShortfall rejects the whole sell before any parcel is
	// touched.
	ErrorOnShortfall
)

func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch s {
	case "partial":
		return AllowPartial, nil
	case "strict":
		return ErrorOnShortfall, nil
	}
	return AllowPartial, fmt.Errorf("unknown allocation policy %q (want partial or strict)", s)
}

// Allocate matches the sell against active parcels according to the
// sell's strategy. Parcels larger than the quantity still needed are
// bifurcated so each allocation consumes its parcel exactly. Returns the
// allocations created, in consumption order.
//
// A MANUAL sell is left unmatched; allocations are added later with
// AddManualAllocation.
func (s *Store) Allocate(sell *Sell, policy AllocationPolicy) ([]*SellAllocation, error) {
	if sell.Strategy == Manual {
		return nil, nil
	}

	candidates := s.rankedCandidates(sell)
	log.Tracef("alloc", "sell %s: %s strategy ranked %d candidate parcels",
		sell.ID, sell.Strategy, len(candidates))

	if policy == ErrorOnShortfall {
		available := decimal.Zero
		for _, p := range candidates {
			available = available.Add(s.RemainingQuantity(p))
		}
		if available.LessThan(sell.Quantity) {
			return nil, fmt.Errorf("sell %s wants %s units of %s but only %s are held: %w",
				sell.ID, sell.Quantity, sell.Instrument, available, ErrInsufficientParcels)
		}
	}

	var allocs []*SellAllocation
	needed := sell.Quantity
	for _, p := range candidates {
		if !needed.IsPositive() {
			break
		}
		take := util.MinDecimal(s.RemainingQuantity(p), needed)
		target, err := s.Bifurcate(p, take, sell.Date)
		if err != nil {
			return allocs, err
		}
		allocs = append(allocs, s.allocateParcel(target, sell, take))
		needed = needed.Sub(take)
	}
	if needed.IsPositive() {
		s.audit.Event("sell", sell.ID, "%s units of %s left unallocated", needed, sell.Instrument)
	}
	return allocs, nil
}

// AddManualAllocation matches quantity units of the parcel against the
// sell, bifurcating first so the allocation consumes its parcel exactly.
func (s *Store) AddManualAllocation(sell *Sell, p *Parcel, quantity decimal.Decimal) (*SellAllocation, error) {
	buy := s.BuyOf(p)
	if buy.Instrument != sell.Instrument {
		return nil, fmt.Errorf("parcel %s holds %s, sell %s is for %s",
			p.ID, buy.Instrument, sell.ID, sell.Instrument)
	}
	allocated := decimal.Zero
	for _, a := range s.allocsBySell[sell.ID] {
		allocated = allocated.Add(a.Quantity)
	}
	if allocated.Add(quantity).GreaterThan(sell.Quantity) {
		return nil, fmt.Errorf("allocating %s units would exceed sell %s quantity %s (already allocated %s)",
			quantity, sell.ID, sell.Quantity, allocated)
	}
	target, err := s.Bifurcate(p, quantity, sell.Date)
	if err != nil {
		return nil, err
	}
	return s.allocateParcel(target, sell, quantity), nil
}

func (s *Store) allocateParcel(p *Parcel, sell *Sell, quantity decimal.Decimal) *SellAllocation {
	a := s.addAllocation(&SellAllocation{
		ID:       NewID(),
		ParcelID: p.ID,
		SellID:   sell.ID,
		Quantity: quantity,
	})
	s.audit.Event("allocation", a.ID, "%s units of parcel %s matched to sell %s",
		quantity, p.ID, sell.ID)
	return a
}

// rankedCandidates returns the sell's allocatable parcels ordered by the
// sell's strategy. Sorting is stable so same-key parcels keep insertion
// order.
func (s *Store) rankedCandidates(sell *Sell) []*Parcel {
	var candidates []*Parcel
	for _, p := range s.ActiveParcelsFor(sell.Instrument, sell.Date) {
		if s.RemainingQuantity(p).IsPositive() {
			candidates = append(candidates, p)
		}
	}

	switch sell.Strategy {
	case FIFO:
		sort.SliceStable(candidates, func(i, j int) bool {
			return s.BuyOf(candidates[i]).Date.Before(s.BuyOf(candidates[j]).Date)
		})
	case LIFO:
		sort.SliceStable(candidates, func(i, j int) bool {
			return s.BuyOf(candidates[j]).Date.Before(s.BuyOf(candidates[i]).Date)
		})
	case MinCGT:
		keys := make(map[*Parcel]money.Money, len(candidates))
		for _, p := range candidates {
			keys[p] = s.taxableUnitGain(p, sell)
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return keys[candidates[i]].LessThan(keys[candidates[j]])
		})
	}
	return candidates
}

const discountHoldingDays = 365

// taxableUnitGain is the per-unit net gain the parcel would realize
// against the sell, halved when the parcel has been held longer than a
// year to mirror the CGT discount. Parcels with the smallest figure are
// consumed first under MIN_CGT.
func (s *Store) taxableUnitGain(p *Parcel, sell *Sell) money.Money {
	gain := sell.UnitProceeds().Sub(s.UnitCostBase(p))
	if sell.Date.DaysSince(s.BuyOf(p).Date) > discountHoldingDays {
		gain = gain.Mul(decimal.NewFromFloat(0.5))
	}
	return gain
}
