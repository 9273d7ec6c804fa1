package clearing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mibel-dam/internal/model"
	"mibel-dam/internal/solver"
)

// faultySolver fails every hour in a configurable way; used to exercise
// the defect and solver-failure paths without rigging an LP.
type faultySolver struct {
	err error
}

func (s faultySolver) Solve(_ context.Context, _ *solver.Problem) (*solver.Solution, error) {
	return nil, s.err
}

func testDay(t *testing.T) (model.DayBids, model.DayCapacities) {
	t.Helper()
	var bids []model.Bid
	for h := 0; h < model.HoursPerDay; h++ {
		bids = append(bids,
			supply(model.ZonePT, h, 20, 500),
			supply(model.ZoneES, h, 40, 800),
			demand(model.ZonePT, h, 110, 450),
			demand(model.ZoneES, h, 130, 700),
		)
	}
	day, err := model.PartitionByHour(bids)
	require.NoError(t, err)
	caps := model.UniformCapacities(model.InterconnectorCapacity{PTToESMW: 300, ESToPTMW: 300})
	return day, caps
}

func TestClearDayAllHours(t *testing.T) {
	day, caps := testDay(t)

	res, err := testEngine(t).ClearDay(context.Background(), day, caps, 8)
	require.NoError(t, err)
	require.Empty(t, res.FailedHours())

	for h, o := range res.Hours {
		require.True(t, o.OK(), "hour %d", h)
		require.Equal(t, h, o.Result.Hour)
		require.InDelta(t, o.Result.TotalSupplyMWh, o.Result.TotalDemandMWh, 1e-6)
	}
}

// A single infeasible hour is isolated; the other 23 still clear.
func TestClearDayIsolatesInfeasibleHour(t *testing.T) {
	day, caps := testDay(t)
	broken := append(day[13].All(),
		demand(model.ZoneES, 13, 4000, 5000)) // unservable price-taking load
	set, err := model.NewHourlyBidSet(13, broken)
	require.NoError(t, err)
	day[13] = set

	res, err := testEngine(t).ClearDay(context.Background(), day, caps, 8)
	require.NoError(t, err)
	require.Equal(t, []int{13}, res.FailedHours())

	require.False(t, res.Hours[13].OK())
	require.Equal(t, KindInfeasible, res.Hours[13].Err.Kind)
	require.Greater(t, res.Hours[13].Err.DeficitMWh, 0.0)
	require.Nil(t, res.Hours[13].Result)
}

// A defect-class failure aborts the whole run instead of being recorded
// as 24 isolated failures.
func TestClearDayAbortsOnDefect(t *testing.T) {
	day, caps := testDay(t)
	engine := New(faultySolver{err: solver.ErrUnbounded}, nil, DefaultParams())

	res, err := engine.ClearDay(context.Background(), day, caps, 4)
	require.Nil(t, res)

	var he *HourError
	require.ErrorAs(t, err, &he)
	require.Equal(t, KindDefect, he.Kind)
}

// Solver-class failures are per-hour, like infeasibility.
func TestClearDayRecordsSolverFailures(t *testing.T) {
	day, caps := testDay(t)
	engine := New(faultySolver{err: &solver.NumericalError{Err: context.DeadlineExceeded}}, nil, DefaultParams())

	res, err := engine.ClearDay(context.Background(), day, caps, 4)
	require.NoError(t, err)
	require.Len(t, res.FailedHours(), model.HoursPerDay)
	for _, o := range res.Hours {
		require.Equal(t, KindSolver, o.Err.Kind)
	}
}

func TestClearDayCancelledContext(t *testing.T) {
	day, caps := testDay(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testEngine(t).ClearDay(ctx, day, caps, 4)
	require.Error(t, err)
}

// Worker count must not change the outcome, only the schedule.
func TestClearDayDeterministicAcrossWorkerCounts(t *testing.T) {
	day, caps := testDay(t)
	engine := testEngine(t)

	serial, err := engine.ClearDay(context.Background(), day, caps, 1)
	require.NoError(t, err)
	parallel, err := engine.ClearDay(context.Background(), day, caps, 24)
	require.NoError(t, err)

	require.Equal(t, serial, parallel)
}
