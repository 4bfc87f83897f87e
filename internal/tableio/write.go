package tableio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pjwilcoxen/modeling-expectations/internal/model"
)

// resultColumns is the persisted column order: the exogenous inputs
// followed by everything the evaluator adds.
var resultColumns = []string{
	"period", "a", "sub", "itc", "td",
	"p", "p_net", "pk_net", "gamma",
	"lam_ss", "inv_ss", "cap_ss",
	"lam", "cap", "inv", "q",
	"rev_ptc", "rev_itc", "p_market", "p_diff",
}

// resultFields maps column names onto a row's float fields. The
// period column is handled separately because it is integral.
func resultFields(row *model.ResultRow) map[string]*float64 {
	return map[string]*float64{
		"a":        &row.A,
		"sub":      &row.Sub,
		"itc":      &row.ITC,
		"td":       &row.TD,
		"p":        &row.P,
		"p_net":    &row.PNet,
		"pk_net":   &row.PkNet,
		"gamma":    &row.Gamma,
		"lam_ss":   &row.LamSS,
		"inv_ss":   &row.InvSS,
		"cap_ss":   &row.CapSS,
		"lam":      &row.Lam,
		"cap":      &row.Cap,
		"inv":      &row.Inv,
		"q":        &row.Q,
		"rev_ptc":  &row.RevPTC,
		"rev_itc":  &row.RevITC,
		"p_market": &row.PMarket,
		"p_diff":   &row.PDiff,
	}
}

// WriteResult persists one result table as CSV. Floats are written in
// shortest round-trip form so a read-back reproduces them exactly.
func WriteResult(path string, res *model.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write result (%s): %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultColumns); err != nil {
		return fmt.Errorf("write result (%s): %w", path, err)
	}

	for i := range res.Rows {
		row := &res.Rows[i]
		fields := resultFields(row)
		rec := make([]string, len(resultColumns))
		rec[0] = strconv.Itoa(row.Period)
		for j, name := range resultColumns[1:] {
			rec[j+1] = strconv.FormatFloat(*fields[name], 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write result (%s): %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write result (%s): %w", path, err)
	}
	return f.Close()
}
