// Package summary prints the comparison tables for a finished batch:
// each run's shadow price, investment, and capital at the start and
// end of the reporting window, with investment and capital normalized
// to percent change from the baseline's first period.
package summary

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pjwilcoxen/modeling-expectations/internal/config"
	"github.com/pjwilcoxen/modeling-expectations/internal/model"
	"github.com/pjwilcoxen/modeling-expectations/internal/tableio"
)

// Print reads every persisted run in the configured output directory
// and writes the summary table to w.
func Print(cfg config.Config, w io.Writer) error {
	dir := cfg.OutDir()
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return fmt.Errorf("summary: list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("summary: no results in %s", dir)
	}
	sort.Strings(paths)

	type entry struct {
		stem   string
		legend string
		res    *model.Result
	}

	var entries []entry
	var norm *model.ResultRow

	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), ".csv")
		legend := stem
		if len(cfg.Legend) > 0 {
			mapped, ok := cfg.Legend[stem]
			if !ok {
				return fmt.Errorf("summary: no legend mapping for run %s", stem)
			}
			if mapped == "omit" {
				continue
			}
			legend = mapped
		}

		res, err := tableio.ReadResult(path)
		if err != nil {
			return err
		}
		entries = append(entries, entry{stem: stem, legend: legend, res: res})

		if norm == nil && strings.Contains(stem, "baseline") {
			norm = &res.Rows[0]
		}
	}
	if norm == nil {
		return fmt.Errorf("summary: no baseline run in %s", dir)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].legend < entries[j].legend })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\tlegend\tperiod\tlam\tinv %%\tcap %%\n")

	for _, e := range entries {
		first := e.res.Rows[0]
		for _, period := range []int{first.Period, first.Period + cfg.LastYear} {
			row, err := e.res.At(period)
			if err != nil {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\n",
				e.stem, e.legend, period,
				row.Lam,
				pctChange(row.Inv, norm.Inv),
				pctChange(row.Cap, norm.Cap),
			)
		}
	}
	return tw.Flush()
}

func pctChange(v, base float64) float64 {
	return 100*v/base - 100
}
