package equil

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/pjwilcoxen/modeling-expectations/internal/model"
	"github.com/pjwilcoxen/modeling-expectations/internal/solve"
	"github.com/pjwilcoxen/modeling-expectations/internal/testutil/testlog"
)

var testPars = model.Params{
	R: 0.05, Delta: 0.1, W: 2.0, Pk: 1.0, Elast: -2.0, Scale: 1.0, Cap0: 10,
}

func testExo(t *testing.T, n int) *model.Exogenous {
	t.Helper()
	periods := make([]int, n)
	rows := make([]model.ExoRow, n)
	for i := range periods {
		periods[i] = i
		rows[i] = model.ExoRow{A: 1}
	}
	exo, err := model.NewExogenous(periods, rows)
	if err != nil {
		t.Fatalf("new exogenous: %v", err)
	}
	return exo
}

func flatGuess(n int, p float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestExogenousPricesBypassSolver(t *testing.T) {
	testlog.Start(t)
	exo := testExo(t, 5)
	guess := []float64{1, 1.1, 1.2, 1.1, 1}

	res, diag, err := Solve(exo, testPars, guess, Closure{Endogenous: false}, solve.DefaultOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if diag.Evaluations != 1 {
		t.Fatalf("evaluations: got %d, want 1 (no root-finding)", diag.Evaluations)
	}

	ev := &model.Evaluator{}
	want, err := ev.Evaluate(guess, exo, testPars)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("exogenous run differs from a direct evaluation")
	}
}

func TestFullTrajectoryClearsEveryPeriod(t *testing.T) {
	testlog.Start(t)
	exo := testExo(t, 8)

	res, diag, err := Solve(exo, testPars, flatGuess(8, 1), Closure{Endogenous: true}, solve.DefaultOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !diag.Converged {
		t.Fatalf("diagnostics not marked converged")
	}
	for _, row := range res.Rows {
		if math.Abs(row.PDiff) > 1e-7 {
			t.Fatalf("period %d residual %g not cleared", row.Period, row.PDiff)
		}
	}
}

func TestInertialBroadcastsFirstPeriodPrice(t *testing.T) {
	testlog.Start(t)
	exo := testExo(t, 6)

	res, diag, err := Solve(exo, testPars, flatGuess(6, 1), Closure{Endogenous: true, Inertial: true}, solve.DefaultOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if diag.MaxAbsMiss > solve.DefaultOptions().Tol {
		t.Fatalf("first-period residual %g not cleared", diag.MaxAbsMiss)
	}

	p0 := res.Rows[0].P
	for _, row := range res.Rows {
		if row.P != p0 {
			t.Fatalf("period %d price %g differs from broadcast %g", row.Period, row.P, p0)
		}
	}
	if math.Abs(res.Rows[0].PDiff) > 1e-7 {
		t.Fatalf("first-period residual %g after re-evaluation", res.Rows[0].PDiff)
	}
}

func TestInfeasibleDemandFailsLoudly(t *testing.T) {
	testlog.Start(t)

	// A deeply negative subsidy makes output negative at any price,
	// so the market-clearing price is undefined everywhere.
	periods := []int{0, 1, 2}
	rows := []model.ExoRow{{A: 1, Sub: -2}, {A: 1, Sub: -2}, {A: 1, Sub: -2}}
	exo, err := model.NewExogenous(periods, rows)
	if err != nil {
		t.Fatalf("new exogenous: %v", err)
	}

	_, _, err = Solve(exo, testPars, flatGuess(3, 1), Closure{Endogenous: true}, solve.DefaultOptions())
	if !errors.Is(err, solve.ErrNoConvergence) {
		t.Fatalf("full closure: got %v, want ErrNoConvergence", err)
	}

	_, _, err = Solve(exo, testPars, flatGuess(3, 1), Closure{Endogenous: true, Inertial: true}, solve.DefaultOptions())
	if !errors.Is(err, solve.ErrNoConvergence) {
		t.Fatalf("inertial closure: got %v, want ErrNoConvergence", err)
	}
}
