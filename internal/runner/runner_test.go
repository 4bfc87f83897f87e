package runner

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pjwilcoxen/modeling-expectations/internal/config"
	"github.com/pjwilcoxen/modeling-expectations/internal/tableio"
	"github.com/pjwilcoxen/modeling-expectations/internal/testutil/testlog"
)

func writeExoCSV(t *testing.T, dir, name string, periods int) {
	t.Helper()
	body := "period,a,sub,itc,td\n"
	for y := 0; y < periods; y++ {
		body += strconv.Itoa(y) + ",1.0,0.0,0.0,0.0\n"
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.R, cfg.Delta, cfg.W, cfg.Pk = 0.05, 0.1, 2.0, 1.0
	cfg.Elast, cfg.Scale = -2.0, 1.0
	cfg.P, cfg.Cap0 = 1.0, 10.0
	cfg.EndogP = false
	cfg.InDir = filepath.Join(root, "input")
	cfg.OutEn = filepath.Join(root, "out-en")
	cfg.OutEx = filepath.Join(root, "out-ex")
	if err := os.MkdirAll(cfg.InDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}
	return cfg
}

func TestBatchWithRollingRun(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	writeExoCSV(t, cfg.InDir, "r01-baseline.csv", 11)
	writeExoCSV(t, cfg.InDir, "r02-reform.csv", 11)
	cfg.Roll = map[string]config.RollSpec{
		"r02": {Base: "r01-baseline", Year: 3},
	}

	if err := New(cfg).RunAll(); err != nil {
		t.Fatalf("run all: %v", err)
	}

	base, err := tableio.ReadResult(filepath.Join(cfg.OutDir(), "r01-baseline.csv"))
	if err != nil {
		t.Fatalf("read baseline: %v", err)
	}
	merged, err := tableio.ReadResult(filepath.Join(cfg.OutDir(), "r02-reform.csv"))
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}

	if merged.Len() != base.Len() {
		t.Fatalf("merged length %d, baseline %d", merged.Len(), base.Len())
	}
	for i := 0; i < 3; i++ {
		if merged.Rows[i] != base.Rows[i] {
			t.Fatalf("period %d should come from the baseline", i)
		}
	}

	// The reform run starts from the baseline's capital at the join
	// period, and its own first row lands there after the splice.
	joinBase, err := base.At(3)
	if err != nil {
		t.Fatalf("baseline at join: %v", err)
	}
	joinMerged, err := merged.At(3)
	if err != nil {
		t.Fatalf("merged at join: %v", err)
	}
	if joinMerged.Cap != joinBase.Cap {
		t.Fatalf("inherited capital: got %g, want %g", joinMerged.Cap, joinBase.Cap)
	}
}

func TestExistingOutputSkipped(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	writeExoCSV(t, cfg.InDir, "r01-baseline.csv", 5)

	if err := New(cfg).RunAll(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	outPath := filepath.Join(cfg.OutDir(), "r01-baseline.csv")

	stale := time.Now().Add(-time.Hour)
	if err := os.Chtimes(outPath, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := New(cfg).RunAll(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(stale) {
		t.Fatalf("existing output was recomputed without force")
	}

	cfg.Force = true
	if err := New(cfg).RunAll(); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	info, err = os.Stat(outPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.ModTime().Equal(stale) {
		t.Fatalf("force did not recompute the run")
	}
}

func TestMissingRollingBaselineFails(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	writeExoCSV(t, cfg.InDir, "r02-reform.csv", 5)
	cfg.Roll = map[string]config.RollSpec{
		"r02": {Base: "r01-baseline", Year: 2},
	}

	err := New(cfg).RunAll()
	if err == nil {
		t.Fatalf("missing baseline should fail the run")
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutDir(), "r02-reform.csv")); statErr == nil {
		t.Fatalf("failed run must not persist output")
	}
}

func TestBaseOnlyRestrictsBatch(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	writeExoCSV(t, cfg.InDir, "r01-baseline.csv", 5)
	writeExoCSV(t, cfg.InDir, "r02-reform.csv", 5)
	cfg.BaseOnly = true

	if err := New(cfg).RunAll(); err != nil {
		t.Fatalf("run all: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir(), "r01-baseline.csv")); err != nil {
		t.Fatalf("baseline output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir(), "r02-reform.csv")); err == nil {
		t.Fatalf("base_only ran a non-baseline definition")
	}
}

func TestDiscoverIgnoresOtherFiles(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	writeExoCSV(t, cfg.InDir, "r01-baseline.csv", 5)
	if err := os.WriteFile(filepath.Join(cfg.InDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.InDir, "x99-other.csv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := New(cfg).discover()
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || files[0] != "r01-baseline.csv" {
		t.Fatalf("discovered %v", files)
	}
}

func TestDiscoverEmptyInput(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)

	if _, err := New(cfg).discover(); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("got %v, want ErrNoInputs", err)
	}
}
