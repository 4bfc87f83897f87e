// Package rolling splices a newly solved run onto a previously
// persisted baseline at a configured join period, so a reform enacted
// at a future date appears as a seamless continuation of the baseline
// trajectory.
package rolling

import (
	"errors"
	"fmt"

	"github.com/pjwilcoxen/modeling-expectations/internal/model"
)

var (
	ErrLengthMismatch = errors.New("rolling: run and baseline differ in length")
	ErrBadJoin        = errors.New("rolling: join period out of range")
)

// Spec is one run's rolling specification from the run registry.
type Spec struct {
	Base string   // stem of the baseline run to continue from
	Year int      // join period: rows before it come from the baseline
	Cap0 *float64 // optional explicit initial capital override
}

// ResolveCapital determines a rolling run's initial capital before it
// is solved: the explicit override when one is configured, otherwise
// the baseline's capital stock at the join period. Never both.
func ResolveCapital(spec Spec, base *model.Result) (float64, error) {
	if spec.Cap0 != nil {
		return *spec.Cap0, nil
	}
	row, err := base.At(spec.Year)
	if err != nil {
		return 0, fmt.Errorf("baseline capital at join period %d: %w", spec.Year, err)
	}
	return row.Cap, nil
}

// Merge reindexes the run's table onto the baseline's period axis,
// joined at period year. For year > 0 the first year rows come from
// the baseline and the run's last year rows are trimmed so the merged
// table keeps the baseline's row count. For year == 0 the run's table
// is copied whole; the two branches are deliberately distinct, not a
// trim-zero-rows special case.
func Merge(run, base *model.Result, year int) (*model.Result, error) {
	if run.Len() != base.Len() {
		return nil, fmt.Errorf("%w: %d vs %d rows", ErrLengthMismatch, run.Len(), base.Len())
	}
	if year < 0 || year > run.Len() {
		return nil, fmt.Errorf("%w: %d with %d rows", ErrBadJoin, year, run.Len())
	}

	merged := &model.Result{Rows: make([]model.ResultRow, 0, base.Len())}

	if year > 0 {
		merged.Rows = append(merged.Rows, base.Rows[:year]...)
		merged.Rows = append(merged.Rows, run.Rows[:run.Len()-year]...)
	} else {
		merged.Rows = append(merged.Rows, run.Rows...)
	}

	// Relabel onto the baseline's own period axis.
	for i := range merged.Rows {
		merged.Rows[i].Period = base.Rows[i].Period
	}
	return merged, nil
}
