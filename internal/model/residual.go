package model

// MissAll is the full-trajectory residual: one price per period in,
// the p_diff miss distance for every period out. It matches the
// vector root-finder's calling convention.
func (e *Evaluator) MissAll(guess []float64, exo *Exogenous, pars Params) ([]float64, error) {
	res, err := e.Evaluate(guess, exo, pars)
	if err != nil {
		return nil, err
	}
	return res.Diffs(), nil
}

// MissOne is the first-period residual for inertial runs: a single
// candidate price is broadcast to every period and only the first
// period's miss distance is returned.
func (e *Evaluator) MissOne(guess float64, exo *Exogenous, pars Params) (float64, error) {
	prices := make([]float64, exo.Len())
	for i := range prices {
		prices[i] = guess
	}
	res, err := e.Evaluate(prices, exo, pars)
	if err != nil {
		return 0, err
	}
	return res.Rows[0].PDiff, nil
}
