package clearing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"mibel-dam/internal/model"
	"mibel-dam/internal/solver"
)

// Formulation is the clearing LP for one hour plus the mapping needed to
// read the solution back into market terms. Column j of the problem is
// the acceptance quantity of Bids[j]; the last column is the signed
// interconnector flow. Built, solved and discarded within one hour's
// clearing.
type Formulation struct {
	Problem *solver.Problem

	Hour     int
	Bids     []model.Bid
	Capacity model.InterconnectorCapacity

	// Mandatory marks price-taking demand bids whose acceptance is fixed
	// at full quantity.
	Mandatory []bool

	FlowCol int
	RowPT   int
	RowES   int
}

// Formulate translates one hourly bid set plus interconnector capacity
// into a welfare-maximizing linear program:
//
//	minimize   Σ supply_price·q − Σ demand_price·q
//	subject to Σ q_supply(z) − Σ q_demand(z) − export(z) = 0   per zone
//	           0 ≤ q ≤ bid quantity,  −cap(ES→PT) ≤ f ≤ cap(PT→ES)
//
// where export(PT) = f and export(ES) = −f, so the two balances couple
// through exactly one shared variable. The zonal clearing price is the
// dual of that zone's balance row.
//
// Partial acceptance is allowed for every bid: this is a deliberate
// simplification of the simulator (no minimum-acceptance ratio, block or
// complex orders), not an attempt to match full MIBEL order semantics.
// The one exception is a demand bid priced at or above mandatoryPrice,
// which is treated as a price-taking load and fixed at full quantity; a
// mandatoryPrice ≤ 0 disables that behavior.
func Formulate(set model.HourlyBidSet, capacity model.InterconnectorCapacity, mandatoryPrice float64) (*Formulation, error) {
	if err := capacity.Validate(); err != nil {
		return nil, err
	}
	if set.Len() == 0 {
		return nil, errors.New("no bids in hour")
	}
	for _, z := range model.Zones() {
		if set.Empty(z) && capacity.PTToESMW == 0 && capacity.ESToPTMW == 0 {
			return nil, fmt.Errorf("zone %s has no bids and no interconnection capacity", z)
		}
	}

	bids := set.All()
	n := len(bids) + 1 // one acceptance variable per bid, plus the flow
	flowCol := len(bids)

	a := mat.NewDense(2, n, nil)
	c := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)
	mandatory := make([]bool, len(bids))

	const rowPT, rowES = 0, 1
	for j, b := range bids {
		row := rowPT
		if b.Zone == model.ZoneES {
			row = rowES
		}
		switch b.Direction {
		case model.Supply:
			a.Set(row, j, 1)
			c[j] = b.PriceEURMWh
		case model.Demand:
			a.Set(row, j, -1)
			c[j] = -b.PriceEURMWh
			if mandatoryPrice > 0 && b.PriceEURMWh >= mandatoryPrice {
				mandatory[j] = true
			}
		}
		upper[j] = b.QuantityMWh
		if mandatory[j] {
			lower[j] = b.QuantityMWh
		}
	}

	// Positive flow exports from PT and imports into ES.
	a.Set(rowPT, flowCol, -1)
	a.Set(rowES, flowCol, 1)
	lower[flowCol] = -capacity.ESToPTMW
	upper[flowCol] = capacity.PTToESMW

	return &Formulation{
		Problem: &solver.Problem{
			C:     c,
			A:     a,
			B:     []float64{0, 0},
			Lower: lower,
			Upper: upper,
		},
		Hour:      set.Hour(),
		Bids:      bids,
		Capacity:  capacity,
		Mandatory: mandatory,
		FlowCol:   flowCol,
		RowPT:     rowPT,
		RowES:     rowES,
	}, nil
}

// DeficitMWh estimates the supply shortfall behind an infeasible hour:
// the largest of the per-zone gaps between mandatory load and supply
// capacity plus full import capacity, and the system-wide gap ignoring
// the interconnector. Zero means the shortfall could not be localized.
func (f *Formulation) DeficitMWh() float64 {
	var load, supply [2]float64
	for j, b := range f.Bids {
		zi := 0
		if b.Zone == model.ZoneES {
			zi = 1
		}
		switch {
		case b.Direction == model.Supply:
			supply[zi] += b.QuantityMWh
		case f.Mandatory[j]:
			load[zi] += b.QuantityMWh
		}
	}
	deficitPT := load[0] - supply[0] - f.Capacity.ESToPTMW
	deficitES := load[1] - supply[1] - f.Capacity.PTToESMW
	system := (load[0] + load[1]) - (supply[0] + supply[1])
	return math.Max(0, math.Max(system, math.Max(deficitPT, deficitES)))
}
