package clearing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mibel-dam/internal/model"
	"mibel-dam/internal/solver"
)

// exportFormulation is a small book whose optimum is known by hand:
// PT sells 100 at 30, PT buys 80 at 50, ES buys 20 at 40, cap 20/20.
// Optimal: everything trades, flow 20 PT->ES, price 40 in both zones.
func exportFormulation(t *testing.T) *Formulation {
	t.Helper()
	set := hourSet(t, 0,
		supply(model.ZonePT, 0, 30, 100),
		demand(model.ZonePT, 0, 50, 80),
		demand(model.ZoneES, 0, 40, 20),
	)
	f, err := Formulate(set, model.InterconnectorCapacity{PTToESMW: 20, ESToPTMW: 20}, 3880)
	require.NoError(t, err)
	return f
}

func TestExtractValidSolution(t *testing.T) {
	f := exportFormulation(t)
	sol := &solver.Solution{
		X:     []float64{100, 80, 20, 20},
		Duals: []float64{40, 40},
	}

	res, err := Extract(f, sol, 1e-6)
	require.NoError(t, err)

	require.Equal(t, 40.0, res.PricePT)
	require.Equal(t, 40.0, res.PriceES)
	require.Equal(t, 20.0, res.FlowMW)
	require.Equal(t, 100.0, res.TotalSupplyMWh)
	require.Equal(t, 100.0, res.TotalDemandMWh)
	require.False(t, res.Congested)
	require.Len(t, res.Clearings, 3)
	require.Equal(t, f.Bids[1], res.Clearings[1].Bid)
}

func TestExtractCongestedWhenPricesSplitAtLimit(t *testing.T) {
	set := hourSet(t, 3,
		supply(model.ZonePT, 3, 10, 1000),
		demand(model.ZoneES, 3, 100, 500),
	)
	f, err := Formulate(set, model.InterconnectorCapacity{PTToESMW: 200, ESToPTMW: 200}, 3880)
	require.NoError(t, err)

	sol := &solver.Solution{
		X:     []float64{200, 200, 200},
		Duals: []float64{10, 100},
	}
	res, err := Extract(f, sol, 1e-6)
	require.NoError(t, err)
	require.True(t, res.Congested)
}

func TestExtractClampsSolverNoise(t *testing.T) {
	f := exportFormulation(t)
	sol := &solver.Solution{
		X:     []float64{100.0000000002, 80, 20, 19.9999999998},
		Duals: []float64{40, 40},
	}

	res, err := Extract(f, sol, 1e-6)
	require.NoError(t, err)
	require.Equal(t, 100.0, res.Clearings[0].ClearedMWh)
}

func TestExtractRejectsShapeMismatch(t *testing.T) {
	f := exportFormulation(t)
	sol := &solver.Solution{X: []float64{100, 80, 20}, Duals: []float64{40, 40}}

	_, err := Extract(f, sol, 1e-6)
	require.Error(t, err)
}

func TestExtractRejectsFlowBeyondCapacity(t *testing.T) {
	f := exportFormulation(t)
	sol := &solver.Solution{
		X:     []float64{100, 80, 20, 25},
		Duals: []float64{40, 40},
	}

	_, err := Extract(f, sol, 1e-6)
	require.ErrorIs(t, err, ErrMeritOrder)
}

func TestExtractRejectsZonalImbalance(t *testing.T) {
	f := exportFormulation(t)
	// PT exports 20 but only clears 90 of supply against 80 of demand.
	sol := &solver.Solution{
		X:     []float64{90, 80, 20, 20},
		Duals: []float64{40, 40},
	}

	_, err := Extract(f, sol, 1e-6)
	require.ErrorIs(t, err, ErrMeritOrder)
}

func TestExtractRejectsMeritOrderViolation(t *testing.T) {
	f := exportFormulation(t)
	// Balanced, but the 50 EUR/MWh demand bid is curtailed below a price
	// of 40, and the 40 EUR/MWh bid overfilled in its place.
	sol := &solver.Solution{
		X:     []float64{80, 60, 20, 20},
		Duals: []float64{40, 40},
	}

	_, err := Extract(f, sol, 1e-6)
	require.ErrorIs(t, err, ErrMeritOrder)
}

func TestExtractMandatoryDemandExempt(t *testing.T) {
	// Price-taking load clears in full even though its bid price towers
	// over the clearing price. Merit-order checks must not flag it.
	set := hourSet(t, 10,
		supply(model.ZonePT, 10, 30, 100),
		demand(model.ZonePT, 10, 4000, 40),
	)
	f, err := Formulate(set, model.InterconnectorCapacity{PTToESMW: 10, ESToPTMW: 10}, 3880)
	require.NoError(t, err)

	sol := &solver.Solution{
		X:     []float64{40, 40, 0},
		Duals: []float64{30, 30},
	}
	res, err := Extract(f, sol, 1e-6)
	require.NoError(t, err)
	require.Equal(t, 40.0, res.Clearings[1].ClearedMWh)
}
