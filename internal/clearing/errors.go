package clearing

import "fmt"

// ErrorKind classifies per-hour clearing failures.
type ErrorKind int

const (
	// KindValidation marks bad input detected before formulation.
	KindValidation ErrorKind = iota

	// KindInfeasible marks an hour whose LP has no feasible solution:
	// mandatory demand exceeds reachable supply even with full import.
	KindInfeasible

	// KindSolver marks numerical trouble or a solve timeout. Logged
	// distinctly from KindInfeasible so operators can tell modeling
	// infeasibility from solver trouble. Not retryable: the LP inputs
	// are deterministic.
	KindSolver

	// KindDefect marks a formulation bug (unbounded problem, merit-order
	// violation, malformed structure). Defects abort the whole run.
	KindDefect
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "INVALID_INPUT"
	case KindInfeasible:
		return "INFEASIBLE"
	case KindSolver:
		return "SOLVER_FAILURE"
	case KindDefect:
		return "MODELING_DEFECT"
	default:
		return "UNKNOWN"
	}
}

// HourError is the failure of a single hour's clearing. Per-hour errors
// are isolated: an infeasible hour never aborts the other hours, while a
// defect-class error fails the whole run.
type HourError struct {
	Hour int
	Kind ErrorKind
	Err  error

	// DeficitMWh is the estimated supply shortfall for infeasible hours.
	DeficitMWh float64
}

func (e *HourError) Error() string {
	if e.Kind == KindInfeasible && e.DeficitMWh > 0 {
		return fmt.Sprintf("hour %d: %s (deficit %.3f MWh): %v", e.Hour, e.Kind, e.DeficitMWh, e.Err)
	}
	return fmt.Sprintf("hour %d: %s: %v", e.Hour, e.Kind, e.Err)
}

func (e *HourError) Unwrap() error { return e.Err }

// Fatal reports whether the failure must abort the daily run.
func (e *HourError) Fatal() bool { return e.Kind == KindDefect }
