package portfolio

import (
	"fmt"
)

// ApplySplit transforms every active parcel of the split's instrument
// whose originating buy settled on or before the split date. Each parcel
// is replaced by a single child carrying the scaled quantity and an
// updated cumulative split multiplier; the parent is deactivated. Total
// cost base is unchanged because the adjusted buy price scales down by
// the same factor the quantity scales up.
func (s *Store) ApplySplit(split *ShareSplit) error {
	if err := s.validateSplit(split); err != nil {
		return err
	}
	mult := split.Multiplier()
	for _, p := range s.ActiveParcelsFor(split.Instrument, split.Date) {
		if !s.RemainingQuantity(p).IsPositive() {
			continue
		}
		child := s.transformParcel(p, split)
		split.AffectedParcels = append(split.AffectedParcels, child.ID)
	}
	s.audit.Event("split", split.ID, "%s applied, multiplier %s, %d parcels transformed",
		split, mult, len(split.AffectedParcels))
	return nil
}

func (s *Store) validateSplit(split *ShareSplit) error {
	if _, ok := s.instruments[split.Instrument]; !ok {
		return fmt.Errorf("split references unknown instrument %q", split.Instrument)
	}
	if !split.QuantityBefore.IsPositive() || !split.QuantityAfter.IsPositive() {
		return fmt.Errorf("split quantities must be positive, got %s", split)
	}
	return nil
}

// transformParcel creates the split's single child of p: quantity and
// cumulative multiplier scaled, active adjustment allocations re-parented
// onto the child at full amount, parent deactivated.
func (s *Store) transformParcel(p *Parcel, split *ShareSplit) *Parcel {
	mult := split.Multiplier()
	child := s.addParcel(&Parcel{
		ID:              NewID(),
		BuyID:           p.BuyID,
		ParentID:        p.ID,
		Quantity:        p.Quantity.Mul(mult),
		SplitMultiplier: p.SplitMultiplier.Mul(mult),
		ActivationDate:  split.Date,
	})
	for _, a := range s.AdjustmentAllocationsFor(p.ID) {
		s.addAdjustmentAllocation(&CostBaseAdjustmentAllocation{
			ID:               NewID(),
			ParcelID:         child.ID,
			AdjustmentID:     a.AdjustmentID,
			CostBaseIncrease: a.CostBaseIncrease,
		})
		a.DeactivationDate.Set(split.Date)
	}
	s.Deactivate(p, split.Date)
	s.audit.Event("parcel", p.ID, "transformed by split %s into %s (%s units, multiplier %s)",
		split.ID, child.ID, child.Quantity, child.SplitMultiplier)
	return child
}
