// Package equil drives the price path to market clearing. It selects
// the closure for a run: exogenous prices evaluate directly, inertial
// runs solve a single first-period price, and everything else solves
// one price per period.
package equil

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pjwilcoxen/modeling-expectations/internal/model"
	"github.com/pjwilcoxen/modeling-expectations/internal/solve"
)

// Closure selects how the price path is determined.
type Closure struct {
	Endogenous bool // root-find at all; otherwise evaluate the guess as-is
	Inertial   bool // only the first period's price is free
}

// Diagnostics summarize one solve for the run log.
type Diagnostics struct {
	Converged   bool
	MaxAbsMiss  float64
	Iterations  int
	Evaluations int
}

// Solve produces the converged price path and its result table. The
// final prices are always passed through the evaluator once more, so
// the returned table is internally consistent with the returned path
// even under solver floating-point drift. Non-convergence is fatal:
// the error wraps solve.ErrNoConvergence and no table is returned.
func Solve(exo *model.Exogenous, pars model.Params, guess []float64, c Closure, opts solve.Options) (*model.Result, Diagnostics, error) {
	ev := &model.Evaluator{}
	prices := append([]float64(nil), guess...)
	var diag Diagnostics

	switch {
	case !c.Endogenous:
		// Prices are exogenous; a single evaluation is the answer.
		diag.Converged = true

	case c.Inertial:
		sol, err := solve.Scalar(func(p float64) (float64, error) {
			return ev.MissOne(p, exo, pars)
		}, prices[0], opts)
		if err != nil {
			log.Error().Err(err).Msg("inertial solve failed")
			return nil, diag, fmt.Errorf("inertial closure: %w", err)
		}
		for i := range prices {
			prices[i] = sol.Root[0]
		}
		diag = Diagnostics{
			Converged:   true,
			MaxAbsMiss:  sol.MaxAbs,
			Iterations:  sol.Iters,
			Evaluations: ev.Calls(),
		}
		log.Info().Bool("success", true).Float64("max_abs_miss", sol.MaxAbs).Msg("solved first-period price")

	default:
		sol, err := solve.Vector(func(p []float64) ([]float64, error) {
			return ev.MissAll(p, exo, pars)
		}, prices, opts)
		if err != nil {
			log.Error().Err(err).Msg("trajectory solve failed")
			return nil, diag, fmt.Errorf("full-trajectory closure: %w", err)
		}
		copy(prices, sol.Root)
		diag = Diagnostics{
			Converged:   true,
			MaxAbsMiss:  sol.MaxAbs,
			Iterations:  sol.Iters,
			Evaluations: ev.Calls(),
		}
		log.Info().Bool("success", true).Float64("max_abs_miss", sol.MaxAbs).Msg("solved price trajectory")
	}

	res, err := ev.Evaluate(prices, exo, pars)
	if err != nil {
		return nil, diag, err
	}
	diag.Evaluations = ev.Calls()
	return res, diag, nil
}
