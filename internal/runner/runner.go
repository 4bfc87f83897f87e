// Package runner walks the simulation definitions in the input
// directory and carries each run through solve, merge, and persist.
// Runs are strictly sequential: a rolling run inherits capital from a
// baseline that must already have been persisted.
package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pjwilcoxen/modeling-expectations/internal/config"
	"github.com/pjwilcoxen/modeling-expectations/internal/equil"
	"github.com/pjwilcoxen/modeling-expectations/internal/model"
	"github.com/pjwilcoxen/modeling-expectations/internal/rolling"
	"github.com/pjwilcoxen/modeling-expectations/internal/solve"
	"github.com/pjwilcoxen/modeling-expectations/internal/tableio"
)

var (
	ErrBaselineMissing = errors.New("runner: rolling baseline output does not exist")
	ErrNoInputs        = errors.New("runner: no simulation definitions found")
)

// State tracks one run through its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateCapitalResolved
	StateSolved
	StateMerged
	StatePersisted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateCapitalResolved:
		return "capital-resolved"
	case StateSolved:
		return "solved"
	case StateMerged:
		return "merged"
	case StatePersisted:
		return "persisted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Runner executes a batch of simulation runs under one configuration.
type Runner struct {
	cfg  config.Config
	opts solve.Options
}

func New(cfg config.Config) *Runner {
	return &Runner{cfg: cfg, opts: solve.DefaultOptions()}
}

// RunAll processes every definition in the input directory in name
// order. A failed run is logged and skipped; nothing is persisted for
// it. The error reports how many runs failed, if any.
func (r *Runner) RunAll() error {
	files, err := r.discover()
	if err != nil {
		return err
	}

	log.Info().Bool("endog_p", r.cfg.EndogP).Int("runs", len(files)).Msg("starting batch")

	if err := os.MkdirAll(r.cfg.OutDir(), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	failed := 0
	for _, f := range files {
		if err := r.runOne(f); err != nil {
			log.Error().Err(err).Str("run", f).Msg("run failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("runner: %d of %d runs failed", failed, len(files))
	}
	return nil
}

// discover lists definition files: names starting with "r" and ending
// in .xlsx or .csv. With base_only set, only baseline definitions run.
func (r *Runner) discover() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !strings.HasPrefix(name, "r") || (ext != ".xlsx" && ext != ".csv") {
			continue
		}
		if r.cfg.BaseOnly && !strings.Contains(name, "baseline") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputs, r.cfg.InDir)
	}
	return files, nil
}

func (r *Runner) runOne(file string) error {
	state := StateNotStarted

	stem := strings.TrimSuffix(file, filepath.Ext(file))
	inPath := filepath.Join(r.cfg.InDir, file)
	outPath := filepath.Join(r.cfg.OutDir(), stem+".csv")
	runID := runID(stem)

	log.Info().Str("input", inPath).Str("state", state.String()).Msg("run")

	// Already-computed runs short-circuit straight to persisted
	// unless a recompute is forced.
	if _, err := os.Stat(outPath); err == nil && !r.cfg.Force && !r.cfg.BaseOnly {
		log.Info().Str("output", outPath).Msg("output exists, skipping")
		return nil
	}

	exo, err := tableio.ReadExogenous(inPath)
	if err != nil {
		return err
	}

	// Resolve initial capital: inherited from a persisted baseline
	// for rolling runs, the configured default otherwise.
	pars := r.cfg.Params()
	var rollSpec *rolling.Spec
	var rollBase *model.Result

	if rs, ok := r.cfg.Roll[runID]; ok {
		basePath := filepath.Join(r.cfg.OutDir(), rs.Base+".csv")
		if _, err := os.Stat(basePath); err != nil {
			return fmt.Errorf("%w: run %s needs %s", ErrBaselineMissing, runID, basePath)
		}
		rollBase, err = tableio.ReadResult(basePath)
		if err != nil {
			return err
		}
		spec := rolling.Spec{Base: rs.Base, Year: rs.Year, Cap0: rs.Cap0}
		cap0, err := rolling.ResolveCapital(spec, rollBase)
		if err != nil {
			return err
		}
		pars.Cap0 = cap0
		rollSpec = &spec
	}
	state = StateCapitalResolved
	log.Debug().Str("state", state.String()).Float64("cap0", pars.Cap0).Msg("run")

	guess := make([]float64, exo.Len())
	for i := range guess {
		guess[i] = r.cfg.P
	}

	closure := equil.Closure{
		Endogenous: r.cfg.EndogP,
		Inertial:   r.cfg.IsInertial(runID),
	}
	res, diag, err := equil.Solve(exo, pars, guess, closure, r.opts)
	if err != nil {
		state = StateFailed
		log.Error().Str("state", state.String()).Str("run", runID).Msg("run")
		return err
	}
	state = StateSolved
	log.Debug().
		Str("state", state.String()).
		Int("evaluations", diag.Evaluations).
		Float64("max_abs_miss", diag.MaxAbsMiss).
		Msg("run")

	if rollSpec != nil {
		res, err = rolling.Merge(res, rollBase, rollSpec.Year)
		if err != nil {
			return err
		}
		state = StateMerged
		log.Debug().Str("state", state.String()).Int("join", rollSpec.Year).Msg("run")
	}

	if err := tableio.WriteResult(outPath, res); err != nil {
		return err
	}
	state = StatePersisted
	log.Info().Str("state", state.String()).Str("output", outPath).Msg("run")

	if strings.Contains(stem, "baseline") {
		r.logBenchmarks(res, pars)
	}
	return nil
}

// logBenchmarks reports the baseline summary figures: the year-10
// capital stock, used to seed rolling experiments, and the investment
// tax credit that matches the incentive of a 10% subsidy.
func (r *Runner) logBenchmarks(res *model.Result, pars model.Params) {
	if row, err := res.At(10); err == nil {
		log.Info().Float64("cap", row.Cap).Msg("year 10 capital")
	} else {
		log.Warn().Msg("no year 10 row for baseline benchmark")
	}

	const benchSub = 0.1
	last := res.Rows[len(res.Rows)-1]
	gamma := (last.P * last.P * last.A * last.A) / (4 * pars.W)
	itc := gamma / ((pars.R + pars.Delta) * pars.Pk)
	itc *= (2 + benchSub) * benchSub
	log.Info().Float64("itc", itc).Float64("sub", benchSub).Msg("investment benchmark")
}

// runID is the registry key for a definition file: the stem up to the
// first dash, e.g. "r01" for r01-baseline.xlsx.
func runID(stem string) string {
	if i := strings.Index(stem, "-"); i > 0 {
		return stem[:i]
	}
	return stem
}
