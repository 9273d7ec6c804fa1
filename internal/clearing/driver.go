package clearing

import (
	"context"
	"sync"

	"mibel-dam/internal/model"
)

// HourOutcome is the result slot of one hour: exactly one of Result or
// Err is set. Failed hours stay explicitly failed, never zero-filled.
type HourOutcome struct {
	Result *model.HourlyResult
	Err    *HourError
}

func (o HourOutcome) OK() bool { return o.Result != nil }

// DayResult is the ordered 24-entry outcome of one session.
type DayResult struct {
	Hours [model.HoursPerDay]HourOutcome
}

// FailedHours lists the hour indices that did not clear.
func (r *DayResult) FailedHours() []int {
	var out []int
	for h, o := range r.Hours {
		if !o.OK() {
			out = append(out, h)
		}
	}
	return out
}

// ClearDay clears 24 mutually independent hours on a bounded worker pool.
// Each worker writes into its own hour's slot, so the result ordering is
// deterministic regardless of completion order and no locking is needed
// around the results.
//
// Per-hour failures are recorded in the day result. A defect-class error
// cancels the remaining hours and fails the run: it indicates a
// formulation bug, not a data problem.
func (e *Engine) ClearDay(ctx context.Context, day model.DayBids, caps model.DayCapacities, workers int) (*DayResult, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > model.HoursPerDay {
		workers = model.HoursPerDay
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := &DayResult{}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	var defectOnce sync.Once
	var defect *HourError

	for h := 0; h < model.HoursPerDay; h++ {
		wg.Add(1)
		go func(h int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				res.Hours[h].Err = &HourError{Hour: h, Kind: KindSolver, Err: ctx.Err()}
				return
			}

			result, err := e.ClearHour(ctx, day[h], caps[h])
			if err != nil {
				he := asHourError(h, err)
				res.Hours[h].Err = he
				if he.Fatal() {
					defectOnce.Do(func() {
						defect = he
						cancel()
					})
				}
				return
			}
			res.Hours[h].Result = result
		}(h)
	}
	wg.Wait()

	if defect != nil {
		return nil, defect
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func asHourError(hour int, err error) *HourError {
	if he, ok := err.(*HourError); ok {
		return he
	}
	return &HourError{Hour: hour, Kind: KindDefect, Err: err}
}
