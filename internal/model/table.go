package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTable     = errors.New("model: exogenous table has no periods")
	ErrBrokenPeriods  = errors.New("model: period index not contiguous ascending")
	ErrLengthMismatch = errors.New("model: periods and rows differ in length")
	ErrUnknownPeriod  = errors.New("model: period not in table")
	ErrMissingData    = errors.New("model: price guess has missing entries")
)

// ExoRow is one period of exogenous inputs.
type ExoRow struct {
	A   float64 // productivity-like scale
	Sub float64 // subsidy rate
	ITC float64 // investment tax credit rate
	TD  float64 // ordinary tax rate
}

// Exogenous is a read-only table of exogenous inputs ordered by period.
// Periods are contiguous but need not start at zero, so the recursions
// always have well-defined next and previous periods.
type Exogenous struct {
	periods []int
	rows    []ExoRow
}

// NewExogenous validates the period axis and builds a table.
func NewExogenous(periods []int, rows []ExoRow) (*Exogenous, error) {
	if len(periods) != len(rows) {
		return nil, fmt.Errorf("%w: %d periods, %d rows", ErrLengthMismatch, len(periods), len(rows))
	}
	if len(periods) == 0 {
		return nil, ErrEmptyTable
	}
	for i := 1; i < len(periods); i++ {
		if periods[i] != periods[i-1]+1 {
			return nil, fmt.Errorf("%w: %d followed by %d", ErrBrokenPeriods, periods[i-1], periods[i])
		}
	}
	t := &Exogenous{
		periods: append([]int(nil), periods...),
		rows:    append([]ExoRow(nil), rows...),
	}
	return t, nil
}

// Len is the number of periods in the table.
func (t *Exogenous) Len() int { return len(t.periods) }

// Period returns the period identifier at position i.
func (t *Exogenous) Period(i int) int { return t.periods[i] }

// FirstPeriod returns the earliest period in the table.
func (t *Exogenous) FirstPeriod() int { return t.periods[0] }

// LastPeriod returns the latest period in the table.
func (t *Exogenous) LastPeriod() int { return t.periods[len(t.periods)-1] }

// Row returns the exogenous inputs at position i.
func (t *Exogenous) Row(i int) ExoRow { return t.rows[i] }

// ResultRow is one period of a fully evaluated model.
type ResultRow struct {
	Period int

	// Exogenous inputs carried through from the definition.
	A   float64
	Sub float64
	ITC float64
	TD  float64

	P       float64 // guessed price
	PNet    float64 // price net of subsidy
	PkNet   float64 // capital price net of credit
	Gamma   float64 // intratemporal multiplier
	LamSS   float64 // steady-state shadow price
	InvSS   float64 // steady-state investment
	CapSS   float64 // steady-state capital
	Lam     float64 // shadow price of capital
	Cap     float64 // capital stock
	Inv     float64 // investment
	Q       float64 // output
	RevPTC  float64 // subsidy outlay
	RevITC  float64 // credit outlay
	PMarket float64 // market-clearing price
	PDiff   float64 // p_market - p
}

// Result is the output of one evaluator call, one row per period in
// ascending period order.
type Result struct {
	Rows []ResultRow
}

// Len is the number of periods in the result.
func (r *Result) Len() int { return len(r.Rows) }

// At returns the row for the given period.
func (r *Result) At(period int) (ResultRow, error) {
	if len(r.Rows) > 0 {
		i := period - r.Rows[0].Period
		if i >= 0 && i < len(r.Rows) {
			return r.Rows[i], nil
		}
	}
	return ResultRow{}, fmt.Errorf("%w: %d", ErrUnknownPeriod, period)
}

// Prices returns the guessed price path.
func (r *Result) Prices() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.P
	}
	return out
}

// Diffs returns the residual p_diff for every period.
func (r *Result) Diffs() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.PDiff
	}
	return out
}
