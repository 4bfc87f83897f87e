package solve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vector finds a root of an n-dimensional residual using Broyden's
// method: a forward-difference Jacobian at the initial guess, an LU
// solve for each quasi-Newton step, and rank-one secant updates in
// between. Steps are halved when they land on a NaN residual, which
// happens when a trial price path crosses zero.
func Vector(f VectorFunc, guess []float64, opts Options) (Result, error) {
	n := len(guess)
	x := append([]float64(nil), guess...)

	fx, err := f(x)
	if err != nil {
		return Result{}, err
	}
	if len(fx) != n {
		return Result{}, fmt.Errorf("solve: residual has %d entries for %d unknowns", len(fx), n)
	}
	if anyNaN(fx) {
		return Result{}, fmt.Errorf("%w: residual is NaN at the initial guess", ErrNoConvergence)
	}

	jac, err := forwardJacobian(f, x, fx)
	if err != nil {
		return Result{}, err
	}

	var lu mat.LU
	step := mat.NewVecDense(n, nil)
	negf := mat.NewVecDense(n, nil)
	js := mat.NewVecDense(n, nil)
	u := mat.NewVecDense(n, nil)

	for iter := 0; iter < opts.MaxIter; iter++ {
		if maxAbs(fx) <= opts.Tol {
			return Result{
				Root:      x,
				Residuals: fx,
				MaxAbs:    maxAbs(fx),
				Iters:     iter,
			}, nil
		}

		for i := 0; i < n; i++ {
			negf.SetVec(i, -fx[i])
		}
		lu.Factorize(jac)
		if err := lu.SolveVecTo(step, false, negf); err != nil {
			return Result{}, fmt.Errorf("%w: singular jacobian", ErrNoConvergence)
		}

		// Take the step, halving while it lands outside the
		// residual's domain.
		scale := 1.0
		var xNew, fNew []float64
		for try := 0; ; try++ {
			if try >= 50 {
				return Result{}, fmt.Errorf("%w: step stuck on NaN residuals", ErrNoConvergence)
			}
			xNew = make([]float64, n)
			for i := range xNew {
				xNew[i] = x[i] + scale*step.AtVec(i)
			}
			fNew, err = f(xNew)
			if err != nil {
				return Result{}, err
			}
			if !anyNaN(fNew) {
				break
			}
			scale /= 2
		}

		// Broyden update: jac += (df - jac*s) s' / (s's).
		s := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			s.SetVec(i, xNew[i]-x[i])
		}
		ss := mat.Dot(s, s)
		if ss > 0 {
			js.MulVec(jac, s)
			for i := 0; i < n; i++ {
				u.SetVec(i, fNew[i]-fx[i]-js.AtVec(i))
			}
			jac.RankOne(jac, 1/ss, u, s)
		}

		x, fx = xNew, fNew
	}

	return Result{}, fmt.Errorf("%w: max abs residual %g after %d iterations", ErrNoConvergence, maxAbs(fx), opts.MaxIter)
}

// forwardJacobian estimates the residual's Jacobian at x by forward
// differences, one extra evaluation per unknown.
func forwardJacobian(f VectorFunc, x, fx []float64) (*mat.Dense, error) {
	n := len(x)
	jac := mat.NewDense(n, n, nil)
	xs := append([]float64(nil), x...)

	for j := 0; j < n; j++ {
		h := 1e-6 * math.Max(1, math.Abs(x[j]))
		xs[j] = x[j] + h
		fj, err := f(xs)
		if err != nil {
			return nil, err
		}
		xs[j] = x[j]
		for i := 0; i < n; i++ {
			jac.Set(i, j, (fj[i]-fx[i])/h)
		}
	}
	return jac, nil
}
