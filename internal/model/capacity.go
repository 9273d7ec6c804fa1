package model

import (
	"fmt"
	"math"
)

// InterconnectorCapacity is the pair of directional flow limits between
// the two zones for one hour. Both limits are ≥ 0; a zero limit closes
// that direction. Constraint parameters, not decision variables.
type InterconnectorCapacity struct {
	PTToESMW float64
	ESToPTMW float64
}

func (c InterconnectorCapacity) Validate() error {
	if math.IsNaN(c.PTToESMW) || math.IsInf(c.PTToESMW, 0) || c.PTToESMW < 0 {
		return fmt.Errorf("PT→ES capacity must be a finite value ≥ 0, got %g", c.PTToESMW)
	}
	if math.IsNaN(c.ESToPTMW) || math.IsInf(c.ESToPTMW, 0) || c.ESToPTMW < 0 {
		return fmt.Errorf("ES→PT capacity must be a finite value ≥ 0, got %g", c.ESToPTMW)
	}
	return nil
}

// DayCapacities holds one capacity pair per hour.
type DayCapacities [HoursPerDay]InterconnectorCapacity

// UniformCapacities fills all 24 hours with the same pair.
func UniformCapacities(c InterconnectorCapacity) DayCapacities {
	var day DayCapacities
	for h := range day {
		day[h] = c
	}
	return day
}
