package model

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Evaluator computes the model for candidate price paths. The call
// counter labels guess diagnostics for the outer solver and has no
// effect on results; each run gets its own Evaluator.
type Evaluator struct {
	calls int
}

// Calls reports how many evaluations have run so far.
func (e *Evaluator) Calls() int { return e.calls }

// Evaluate computes the full result table for one guess of the price
// path. The guess must supply a finite price for every period in the
// exogenous table.
//
// The model is recursively triangular given the prices: steady-state
// and intratemporal quantities are per-period, the shadow price lam
// walks backward from its terminal steady-state value, and the capital
// stock walks forward from Cap0.
func (e *Evaluator) Evaluate(prices []float64, exo *Exogenous, pars Params) (*Result, error) {
	e.calls++

	n := exo.Len()
	if len(prices) != n {
		return nil, fmt.Errorf("%w: %d prices for %d periods", ErrMissingData, len(prices), n)
	}
	for i, p := range prices {
		if math.IsNaN(p) {
			return nil, fmt.Errorf("%w: period %d", ErrMissingData, exo.Period(i))
		}
	}

	if p0, pN := prices[0], prices[n-1]; p0 != pN {
		log.Debug().
			Int("guess", e.calls).
			Float64("from", p0).
			Float64("to", pN).
			Msg("price guess")
	}

	d := &Result{Rows: make([]ResultRow, n)}

	// Intratemporal quantities and steady-state references.
	for i := 0; i < n; i++ {
		x := exo.Row(i)
		p := prices[i]

		row := &d.Rows[i]
		row.Period = exo.Period(i)
		row.A = x.A
		row.Sub = x.Sub
		row.ITC = x.ITC
		row.TD = x.TD

		row.P = p
		row.PNet = p * (1 + x.Sub)
		row.PkNet = pars.Pk * (1 - x.ITC)
		row.Gamma = (row.PNet * row.PNet * x.A * x.A) / (4 * pars.W)

		row.LamSS = row.Gamma * (1 - x.TD) / (pars.R + pars.Delta)
		row.InvSS = (row.Gamma/(pars.R+pars.Delta) - row.PkNet) / (2 * pars.W)
		row.CapSS = row.InvSS / pars.Delta
	}

	// Backward recursion for the shadow price, anchored at the
	// terminal steady state.
	d.Rows[n-1].Lam = d.Rows[n-1].LamSS
	for i := n - 2; i >= 0; i-- {
		row := &d.Rows[i]
		row.Lam = (d.Rows[i+1].Lam + row.Gamma*(1-row.TD)) / (1 + pars.R + pars.Delta)
	}

	// Investment is a closed-form inversion of the marginal
	// adjustment-cost condition.
	for i := 0; i < n; i++ {
		row := &d.Rows[i]
		row.Inv = (row.Lam/(1-row.TD) - row.PkNet) / (2 * pars.W)
	}

	// Forward recursion for the capital stock from Cap0.
	d.Rows[0].Cap = pars.Cap0
	for i := 0; i < n-1; i++ {
		d.Rows[i+1].Cap = d.Rows[i].Inv + (1-pars.Delta)*d.Rows[i].Cap
	}

	// Output, credit outlays, and the market-clearing price from
	// isoelastic inverse demand.
	for i := 0; i < n; i++ {
		row := &d.Rows[i]
		row.Q = row.PNet * row.A * row.A * row.Cap / (2 * pars.W)
		row.RevPTC = row.Sub * row.P * row.Q
		row.RevITC = row.ITC * pars.Pk * row.Inv
		row.PMarket = math.Pow(row.Q/pars.Scale, 1/pars.Elast)
		row.PDiff = row.PMarket - row.P
	}

	return d, nil
}
