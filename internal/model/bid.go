package model

import (
	"fmt"
	"math"
)

// HoursPerDay is the number of independent clearing periods in one session.
const HoursPerDay = 24

// Bid is a simple price-quantity order for one hour in one zone.
// Bids are created once at load time and never mutated afterwards.
//
// Price may be any real value, including negative (must-run units bid
// below zero to stay dispatched). Quantity must be strictly positive.
type Bid struct {
	Zone      Zone
	Direction Direction
	Hour      int // 0..23

	PriceEURMWh float64
	QuantityMWh float64

	// Audit metadata carried through to the trade export. Optional.
	Agent      string
	Unit       string
	Technology string
}

func (b Bid) Validate() error {
	if b.Zone != ZonePT && b.Zone != ZoneES {
		return fmt.Errorf("unknown zone: %q", string(b.Zone))
	}
	if b.Direction != Supply && b.Direction != Demand {
		return fmt.Errorf("unknown direction: %q", string(b.Direction))
	}
	if b.Hour < 0 || b.Hour >= HoursPerDay {
		return fmt.Errorf("hour %d out of range [0,%d]", b.Hour, HoursPerDay-1)
	}
	if math.IsNaN(b.PriceEURMWh) || math.IsInf(b.PriceEURMWh, 0) {
		return fmt.Errorf("price is not a finite number")
	}
	if math.IsNaN(b.QuantityMWh) || math.IsInf(b.QuantityMWh, 0) {
		return fmt.Errorf("quantity is not a finite number")
	}
	if b.QuantityMWh <= 0 {
		return fmt.Errorf("quantity must be > 0, got %g", b.QuantityMWh)
	}
	return nil
}
