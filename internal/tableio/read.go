// Package tableio reads simulation definitions and reads and writes
// persisted result tables. Definitions arrive as spreadsheets or CSV
// files keyed by a period column; results are always CSV.
package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pjwilcoxen/modeling-expectations/internal/model"
)

var (
	ErrUnsupportedFormat = errors.New("tableio: unsupported input format")
	ErrMissingColumn     = errors.New("tableio: required column missing")
	ErrEmptyInput        = errors.New("tableio: input has no data rows")
)

// ReadExogenous loads one simulation definition, dispatching on the
// file extension.
func ReadExogenous(path string) (*model.Exogenous, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readSheet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read exogenous (%s): %w", path, err)
	}

	exo, err := parseExogenous(records)
	if err != nil {
		return nil, fmt.Errorf("parse exogenous (%s): %w", path, err)
	}
	return exo, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

func parseExogenous(records [][]string) (*model.Exogenous, error) {
	if len(records) < 2 {
		return nil, ErrEmptyInput
	}
	cols, err := headerIndex(records[0], "period", "a", "sub", "itc", "td")
	if err != nil {
		return nil, err
	}

	var periods []int
	var rows []model.ExoRow
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		rec = padRecord(rec, len(records[0]))
		period, err := strconv.Atoi(strings.TrimSpace(rec[cols["period"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad period: %w", i+2, err)
		}
		row := model.ExoRow{}
		for name, dst := range map[string]*float64{
			"a": &row.A, "sub": &row.Sub, "itc": &row.ITC, "td": &row.TD,
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s: %w", i+2, name, err)
			}
			*dst = v
		}
		periods = append(periods, period)
		rows = append(rows, row)
	}
	return model.NewExogenous(periods, rows)
}

// ReadResult loads a persisted result table, as needed when a rolling
// run inherits from a baseline and by the summary report.
func ReadResult(path string) (*model.Result, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("read result (%s): %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("parse result (%s): %w", path, ErrEmptyInput)
	}
	cols, err := headerIndex(records[0], resultColumns...)
	if err != nil {
		return nil, fmt.Errorf("parse result (%s): %w", path, err)
	}

	res := &model.Result{}
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		row, err := parseResultRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("parse result (%s) row %d: %w", path, i+2, err)
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func parseResultRow(rec []string, cols map[string]int) (model.ResultRow, error) {
	var row model.ResultRow

	period, err := strconv.Atoi(strings.TrimSpace(rec[cols["period"]]))
	if err != nil {
		return row, fmt.Errorf("bad period: %w", err)
	}
	row.Period = period

	for name, dst := range resultFields(&row) {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[name]]), 64)
		if err != nil {
			return row, fmt.Errorf("bad %s: %w", name, err)
		}
		*dst = v
	}
	return row, nil
}

func headerIndex(header []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

// padRecord restores trailing empty cells that spreadsheet readers
// drop, so column indexes stay valid.
func padRecord(rec []string, width int) []string {
	for len(rec) < width {
		rec = append(rec, "")
	}
	return rec
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
