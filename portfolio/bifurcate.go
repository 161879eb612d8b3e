package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
)

// Bifurcate splits p into a target parcel of exactly quantity units and a
// remainder parcel holding the rest, both activated on day, then
// deactivates p. Active cost-base adjustment allocations are re-split
// across the children in proportion to quantity. Returns the target
// parcel.
//
// When quantity equals the parcel's full quantity no split is needed and
// p itself is returned untouched.
func (s *Store) Bifurcate(p *Parcel, quantity decimal.Decimal, day date.Date) (*Parcel, error) {
	if !p.Active() {
		return nil, ErrParcelInactive
	}
	remaining := s.RemainingQuantity(p)
	if !quantity.IsPositive() || quantity.GreaterThan(remaining) {
		return nil, &InvalidAllocationQuantityError{
			ParcelID:  p.ID,
			Requested: quantity,
			Remaining: remaining,
		}
	}
	if quantity.Equal(p.Quantity) {
		return p, nil
	}

	target := s.addParcel(&Parcel{
		ID:              NewID(),
		BuyID:           p.BuyID,
		ParentID:        p.ID,
		Quantity:        quantity,
		SplitMultiplier: p.SplitMultiplier,
		ActivationDate:  day,
	})
	remainder := s.addParcel(&Parcel{
		ID:              NewID(),
		BuyID:           p.BuyID,
		ParentID:        p.ID,
		Quantity:        p.Quantity.Sub(quantity),
		SplitMultiplier: p.SplitMultiplier,
		ActivationDate:  day,
	})

	fraction := quantity.Div(p.Quantity)
	for _, a := range s.AdjustmentAllocationsFor(p.ID) {
		targetShare := a.CostBaseIncrease.Mul(fraction)
		s.addAdjustmentAllocation(&CostBaseAdjustmentAllocation{
			ID:               NewID(),
			ParcelID:         target.ID,
			AdjustmentID:     a.AdjustmentID,
			CostBaseIncrease: targetShare,
		})
		s.addAdjustmentAllocation(&CostBaseAdjustmentAllocation{
			ID:               NewID(),
			ParcelID:         remainder.ID,
			AdjustmentID:     a.AdjustmentID,
			CostBaseIncrease: a.CostBaseIncrease.Sub(targetShare),
		})
		a.DeactivationDate.Set(day)
	}

	s.Deactivate(p, day)
	s.audit.Event("parcel", p.ID, "bifurcated into %s (%s units) and %s (%s units) on %s",
		target.ID, target.Quantity, remainder.ID, remainder.Quantity, day)
	return target, nil
}
