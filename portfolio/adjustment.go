package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

// ApplyAdjustment records the cost base adjustment and, for QTY_HELD,
// prorates its converted amount across the instrument's parcels by
// quantity weighted by days held inside the fiscal year ending on
// FiscalYearEnd. A parcel participates when its buy settled on or before
// the year end and it is still active or was deactivated on or after the
// year's cutoff. Days held is clamped only by the deactivation date: a
// parcel bifurcated or split mid-year shares for the days before the
// transform, while its children count the full window.
//
// MANUAL adjustments are recorded without allocations; they are attached
// later with AddManualAdjustmentAllocation.
func (s *Store) ApplyAdjustment(adj *CostBaseAdjustment) error {
	if _, ok := s.instruments[adj.Instrument]; !ok {
		return fmt.Errorf("adjustment references unknown instrument %q", adj.Instrument)
	}
	if err := s.addAdjustment(adj); err != nil {
		return err
	}
	if adj.Method != QtyHeld {
		return nil
	}

	end := adj.FiscalYearEnd
	cutoff := end.AddYears(-1).AddDays(1)
	daysInYear := end.DaysSince(cutoff) + 1

	type weighted struct {
		parcel *Parcel
		weight decimal.Decimal
	}
	var eligible []weighted
	total := decimal.Zero
	for _, id := range s.parcelOrder {
		p := s.parcels[id]
		buy := s.BuyOf(p)
		if buy.Instrument != adj.Instrument || buy.Date.After(end) {
			continue
		}
		daysHeld := daysInYear
		if p.DeactivationDate.Present() {
			deact := p.DeactivationDate.MustGet()
			if deact.Before(cutoff) {
				continue
			}
			daysHeld = util.MinInt(daysInYear, deact.DaysSince(cutoff)+1)
		}
		w := p.Quantity.Mul(decimal.NewFromInt(int64(daysHeld)))
		eligible = append(eligible, weighted{p, w})
		total = total.Add(w)
	}
	if !total.IsPositive() {
		s.audit.Event("adjustment", adj.ID, "no parcels held in year ending %s, nothing allocated", end)
		return nil
	}

	amount := adj.ConvertedIncrease()
	for _, e := range eligible {
		a := s.addAdjustmentAllocation(&CostBaseAdjustmentAllocation{
			ID:               NewID(),
			ParcelID:         e.parcel.ID,
			AdjustmentID:     adj.ID,
			CostBaseIncrease: amount.Mul(e.weight).Div(total),
		})
		s.audit.Event("adjustment_allocation", a.ID, "fraction %s of adjustment %s allocated to parcel %s",
			e.weight.Div(total).Round(8), adj.ID, e.parcel.ID)
	}
	return nil
}

// AddManualAdjustmentAllocation attaches part of a MANUAL adjustment to a
// single parcel.
func (s *Store) AddManualAdjustmentAllocation(adj *CostBaseAdjustment, p *Parcel, increase money.Money) (*CostBaseAdjustmentAllocation, error) {
	if adj.Method != ManualAdjustment {
		return nil, fmt.Errorf("adjustment %s uses %s allocation, not MANUAL", adj.ID, adj.Method)
	}
	if !p.Active() {
		return nil, ErrParcelInactive
	}
	a := s.addAdjustmentAllocation(&CostBaseAdjustmentAllocation{
		ID:               NewID(),
		ParcelID:         p.ID,
		AdjustmentID:     adj.ID,
		CostBaseIncrease: increase,
	})
	s.audit.Event("adjustment_allocation", a.ID, "manual allocation of %s to parcel %s", increase, p.ID)
	return a, nil
}
