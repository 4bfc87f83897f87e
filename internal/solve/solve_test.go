package solve

import (
	"errors"
	"math"
	"testing"
)

func TestScalarFindsRoot(t *testing.T) {
	f := func(x float64) (float64, error) { return x*x - 4, nil }

	res, err := Scalar(f, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if math.Abs(res.Root[0]-2) > 1e-8 {
		t.Fatalf("root: got %g, want 2", res.Root[0])
	}
	if res.MaxAbs > DefaultOptions().Tol {
		t.Fatalf("residual too large: %g", res.MaxAbs)
	}
}

func TestScalarStaysPositive(t *testing.T) {
	// The root at -3 must not be found; bracketing never crosses zero.
	var trials []float64
	f := func(x float64) (float64, error) {
		trials = append(trials, x)
		return (x - 5) * (x + 3), nil
	}

	res, err := Scalar(f, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if math.Abs(res.Root[0]-5) > 1e-8 {
		t.Fatalf("root: got %g, want 5", res.Root[0])
	}
	for _, x := range trials {
		if x <= 0 {
			t.Fatalf("trial point %g not positive", x)
		}
	}
}

func TestScalarNoRoot(t *testing.T) {
	f := func(x float64) (float64, error) { return x*x + 1, nil }

	if _, err := Scalar(f, 1, DefaultOptions()); !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("got %v, want ErrNoConvergence", err)
	}
}

func TestScalarDeterministic(t *testing.T) {
	f := func(x float64) (float64, error) { return math.Exp(x) - 3, nil }

	a, err := Scalar(f, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	b, err := Scalar(f, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}
	if a.Root[0] != b.Root[0] || a.Iters != b.Iters {
		t.Fatalf("solver not deterministic: %v vs %v", a, b)
	}
}

func TestVectorLinearSystem(t *testing.T) {
	f := func(x []float64) ([]float64, error) {
		return []float64{x[0] + x[1] - 3, x[0] - x[1] - 1}, nil
	}

	res, err := Vector(f, []float64{0, 0}, DefaultOptions())
	if err != nil {
		t.Fatalf("vector: %v", err)
	}
	if math.Abs(res.Root[0]-2) > 1e-7 || math.Abs(res.Root[1]-1) > 1e-7 {
		t.Fatalf("root: got %v, want (2,1)", res.Root)
	}
}

func TestVectorNonlinearSystem(t *testing.T) {
	f := func(x []float64) ([]float64, error) {
		return []float64{
			x[0]*x[0] + x[1]*x[1] - 4,
			x[0]*x[1] - 1,
		}, nil
	}

	res, err := Vector(f, []float64{2, 0.5}, DefaultOptions())
	if err != nil {
		t.Fatalf("vector: %v", err)
	}
	if res.MaxAbs > DefaultOptions().Tol {
		t.Fatalf("residual too large: %g", res.MaxAbs)
	}
	got := []float64{
		res.Root[0]*res.Root[0] + res.Root[1]*res.Root[1],
		res.Root[0] * res.Root[1],
	}
	if math.Abs(got[0]-4) > 1e-7 || math.Abs(got[1]-1) > 1e-7 {
		t.Fatalf("root does not satisfy the system: %v", res.Root)
	}
}

func TestVectorNoRoot(t *testing.T) {
	f := func(x []float64) ([]float64, error) {
		return []float64{x[0]*x[0] + 1}, nil
	}

	if _, err := Vector(f, []float64{1}, DefaultOptions()); !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("got %v, want ErrNoConvergence", err)
	}
}

func TestVectorNaNGuess(t *testing.T) {
	f := func(x []float64) ([]float64, error) {
		return []float64{math.NaN()}, nil
	}

	if _, err := Vector(f, []float64{1}, DefaultOptions()); !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("got %v, want ErrNoConvergence", err)
	}
}
