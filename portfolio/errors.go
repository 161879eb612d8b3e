package portfolio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInsufficientParcels is returned (under ErrorOnShortfall policy) when
// a sell's quantity exceeds the total remaining quantity across matched
// parcels. The whole sell mutation is aborted.
var ErrInsufficientParcels = errors.New("sell quantity exceeds quantity available in matched parcels")

// ErrParcelInactive is returned when an operation targets a deactivated
// parcel.
var ErrParcelInactive = errors.New("parcel is inactive")

// InvalidAllocationQuantityError reports a bifurcation or allocation
// quantity that is not positive or exceeds the parcel's remaining
// quantity. The operation it occurred in is aborted whole.
type InvalidAllocationQuantityError struct {
	ParcelID  uuid.UUID
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InvalidAllocationQuantityError) Error() string {
	return fmt.Sprintf(
		"invalid allocation quantity %s for parcel %s (remaining %s)",
		e.Requested, e.ParcelID, e.Remaining)
}
