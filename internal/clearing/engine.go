package clearing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mibel-dam/internal/model"
	"mibel-dam/internal/solver"
)

// Params are the knobs of the hourly clearing engine.
type Params struct {
	// Tolerance is the numerical tolerance for post-solution checks.
	Tolerance float64

	// MandatoryPriceEURMWh is the threshold at or above which demand bids
	// are treated as price-taking loads. ≤ 0 disables the behavior.
	MandatoryPriceEURMWh float64

	// SolveTimeout bounds one LP solve. A timeout is terminal for the
	// hour; deterministic inputs do not benefit from retrying.
	SolveTimeout time.Duration
}

func DefaultParams() Params {
	return Params{
		Tolerance:            1e-6,
		MandatoryPriceEURMWh: 3880,
		SolveTimeout:         5 * time.Second,
	}
}

// Engine clears one hour at a time: formulate, solve, extract. It holds
// no per-hour state, so one Engine may clear many hours concurrently.
type Engine struct {
	solver solver.Solver
	log    *zap.Logger
	params Params
}

func New(s solver.Solver, log *zap.Logger, params Params) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if params.Tolerance <= 0 {
		params.Tolerance = DefaultParams().Tolerance
	}
	if params.SolveTimeout <= 0 {
		params.SolveTimeout = DefaultParams().SolveTimeout
	}
	return &Engine{solver: s, log: log, params: params}
}

// ClearHour clears a single hour and returns its result, or a classified
// *HourError. No retries; an infeasible hour is terminal for that hour
// only.
func (e *Engine) ClearHour(ctx context.Context, set model.HourlyBidSet, capacity model.InterconnectorCapacity) (*model.HourlyResult, error) {
	hour := set.Hour()

	f, err := Formulate(set, capacity, e.params.MandatoryPriceEURMWh)
	if err != nil {
		e.log.Warn("hour rejected before formulation",
			zap.Int("hour", hour), zap.Error(err))
		return nil, &HourError{Hour: hour, Kind: KindValidation, Err: err}
	}

	solveCtx, cancel := context.WithTimeout(ctx, e.params.SolveTimeout)
	defer cancel()
	sol, err := e.solver.Solve(solveCtx, f.Problem)
	if err != nil {
		return nil, e.classifySolveError(f, err)
	}

	res, err := Extract(f, sol, e.params.Tolerance)
	if err != nil {
		e.log.Error("solution failed post-checks",
			zap.Int("hour", hour), zap.Error(err))
		return nil, &HourError{Hour: hour, Kind: KindDefect, Err: err}
	}

	e.log.Info("hour cleared",
		zap.Int("hour", hour),
		zap.Float64("price_pt_eur_mwh", res.PricePT),
		zap.Float64("price_es_eur_mwh", res.PriceES),
		zap.Float64("flow_mw", res.FlowMW),
		zap.Bool("congested", res.Congested),
		zap.Float64("traded_mwh", res.TotalDemandMWh))
	return res, nil
}

func (e *Engine) classifySolveError(f *Formulation, err error) *HourError {
	var numErr *solver.NumericalError
	switch {
	case errors.Is(err, solver.ErrInfeasible):
		deficit := f.DeficitMWh()
		e.log.Warn("hour infeasible",
			zap.Int("hour", f.Hour),
			zap.Float64("deficit_mwh", deficit),
			zap.Error(err))
		return &HourError{Hour: f.Hour, Kind: KindInfeasible, Err: err, DeficitMWh: deficit}
	case errors.Is(err, solver.ErrUnbounded):
		// Bounded decision variables should make this impossible.
		e.log.Error("hour unbounded, formulation bug",
			zap.Int("hour", f.Hour), zap.Error(err))
		return &HourError{Hour: f.Hour, Kind: KindDefect, Err: err}
	case errors.As(err, &numErr):
		e.log.Error("solver failure",
			zap.Int("hour", f.Hour), zap.Error(err))
		return &HourError{Hour: f.Hour, Kind: KindSolver, Err: err}
	default:
		e.log.Error("malformed clearing problem",
			zap.Int("hour", f.Hour), zap.Error(err))
		return &HourError{Hour: f.Hour, Kind: KindDefect, Err: err}
	}
}
