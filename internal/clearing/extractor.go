package clearing

import (
	"errors"
	"fmt"
	"math"

	"mibel-dam/internal/model"
	"mibel-dam/internal/solver"
)

// ErrMeritOrder marks a solved hour whose accepted quantities contradict
// the clearing prices. A valid LP optimum cannot do that, so it flags a
// modeling defect rather than a data problem.
var ErrMeritOrder = errors.New("merit-order violation")

// Extract maps a solved formulation back into domain quantities: zonal
// prices from the balance-row duals, per-bid cleared quantities and the
// signed interconnector flow from the primal variables.
//
// Every solution is checked before it is returned: zonal energy balance
// within tolerance, flow within the directional limits, and merit-order
// consistency (supply strictly below the zonal price fully accepted,
// strictly above fully rejected; symmetric for demand; ties may clear
// partially). Mandatory demand is price-taking and exempt.
func Extract(f *Formulation, sol *solver.Solution, tol float64) (*model.HourlyResult, error) {
	if len(sol.X) != len(f.Bids)+1 || len(sol.Duals) < 2 {
		return nil, fmt.Errorf("solution shape mismatch: %d variables, %d duals", len(sol.X), len(sol.Duals))
	}

	res := &model.HourlyResult{
		Hour:      f.Hour,
		PricePT:   sol.Duals[f.RowPT],
		PriceES:   sol.Duals[f.RowES],
		FlowMW:    sol.X[f.FlowCol],
		Clearings: make([]model.BidClearing, len(f.Bids)),
	}

	var supply, demand [2]float64
	for j, b := range f.Bids {
		q := clamp(sol.X[j], 0, b.QuantityMWh)
		res.Clearings[j] = model.BidClearing{Bid: b, ClearedMWh: q}
		zi := zoneIndex(b.Zone)
		if b.Direction == model.Supply {
			supply[zi] += q
		} else {
			demand[zi] += q
		}
	}
	res.TotalSupplyMWh = supply[0] + supply[1]
	res.TotalDemandMWh = demand[0] + demand[1]

	atLimit := f.Capacity.PTToESMW-res.FlowMW <= tol || f.Capacity.ESToPTMW+res.FlowMW <= tol
	res.Congested = atLimit && math.Abs(res.PricePT-res.PriceES) > tol

	if err := checkSolution(f, res, supply, demand, tol); err != nil {
		return nil, err
	}
	return res, nil
}

func checkSolution(f *Formulation, res *model.HourlyResult, supply, demand [2]float64, tol float64) error {
	scale := 1 + res.TotalSupplyMWh + res.TotalDemandMWh
	qtyTol := tol * scale

	if res.FlowMW > f.Capacity.PTToESMW+qtyTol || -res.FlowMW > f.Capacity.ESToPTMW+qtyTol {
		return fmt.Errorf("flow %.6f MW exceeds capacity (%.3f/%.3f): %w",
			res.FlowMW, f.Capacity.PTToESMW, f.Capacity.ESToPTMW, ErrMeritOrder)
	}

	export := [2]float64{res.FlowMW, -res.FlowMW}
	for _, z := range model.Zones() {
		zi := zoneIndex(z)
		imbalance := supply[zi] - demand[zi] - export[zi]
		if math.Abs(imbalance) > qtyTol {
			return fmt.Errorf("zone %s balance off by %.6f MWh: %w", z, imbalance, ErrMeritOrder)
		}
	}

	for j, c := range res.Clearings {
		b := c.Bid
		price := res.ZonePrice(b.Zone)
		full := b.QuantityMWh - c.ClearedMWh <= qtyTol
		rejected := c.ClearedMWh <= qtyTol

		switch {
		case b.Direction == model.Supply && b.PriceEURMWh < price-tol && !full:
			return fmt.Errorf("supply bid %d (%.3f EUR/MWh) below price %.3f not fully accepted: %w",
				j, b.PriceEURMWh, price, ErrMeritOrder)
		case b.Direction == model.Supply && b.PriceEURMWh > price+tol && !rejected:
			return fmt.Errorf("supply bid %d (%.3f EUR/MWh) above price %.3f accepted: %w",
				j, b.PriceEURMWh, price, ErrMeritOrder)
		case b.Direction == model.Demand && !f.Mandatory[j] && b.PriceEURMWh > price+tol && !full:
			return fmt.Errorf("demand bid %d (%.3f EUR/MWh) above price %.3f not fully accepted: %w",
				j, b.PriceEURMWh, price, ErrMeritOrder)
		case b.Direction == model.Demand && !f.Mandatory[j] && b.PriceEURMWh < price-tol && !rejected:
			return fmt.Errorf("demand bid %d (%.3f EUR/MWh) below price %.3f accepted: %w",
				j, b.PriceEURMWh, price, ErrMeritOrder)
		}
	}
	return nil
}

func zoneIndex(z model.Zone) int {
	if z == model.ZoneES {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
