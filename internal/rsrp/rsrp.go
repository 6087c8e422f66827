// internal/rsrp/rsrp.go
// Package rsrp loads the per-run PC2/PC3 RSRP time series that accompany a
// results document.
package rsrp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/montanaflynn/stats"
	"github.com/mwiater/fieldreport/internal/logging"
	"github.com/sirupsen/logrus"
)

// Columns read from every run file.
const (
	ColumnPC2 = "PC2"
	ColumnPC3 = "PC3"
)

// FileName returns the conventional file name for run.
func FileName(run int) string {
	return fmt.Sprintf("Run%d_PC2_PC3_RSRP_Analysis.csv", run)
}

// Point is one sample; X is the 1-based data row it came from.
type Point struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// Series holds the PC2 and PC3 samples of one run.
type Series struct {
	Run int     `json:"run"`
	PC2 []Point `json:"pc2"`
	PC3 []Point `json:"pc3"`
}

// Empty reports whether the series has no samples at all.
func (s Series) Empty() bool {
	return len(s.PC2) == 0 && len(s.PC3) == 0
}

// ColumnSummary describes one column of a series.
type ColumnSummary struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Summary describes both columns of a series.
type Summary struct {
	PC2 ColumnSummary
	PC3 ColumnSummary
}

// Summary computes count, mean, min and max per column. Empty columns report
// zeros.
func (s Series) Summary() Summary {
	return Summary{PC2: summarize(s.PC2), PC3: summarize(s.PC3)}
}

func summarize(points []Point) ColumnSummary {
	if len(points) == 0 {
		return ColumnSummary{}
	}
	data := make(stats.Float64Data, len(points))
	for i, p := range points {
		data[i] = p.Y
	}
	mean, _ := data.Mean()
	lo, _ := data.Min()
	hi, _ := data.Max()
	return ColumnSummary{Count: len(points), Mean: mean, Min: lo, Max: hi}
}

// Read parses one run file. Rows whose PC2 or PC3 cell is empty or not
// numeric contribute no point to that column.
func Read(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Series{}, fmt.Errorf("empty csv")
		}
		return Series{}, fmt.Errorf("read header: %w", err)
	}
	pc2, pc3 := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColumnPC2:
			pc2 = i
		case ColumnPC3:
			pc3 = i
		}
	}
	if pc2 < 0 && pc3 < 0 {
		return Series{}, fmt.Errorf("header has neither %s nor %s column", ColumnPC2, ColumnPC3)
	}

	var series Series
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if p, ok := cell(record, pc2, row); ok {
			series.PC2 = append(series.PC2, p)
		}
		if p, ok := cell(record, pc3, row); ok {
			series.PC3 = append(series.PC3, p)
		}
	}
	return series, nil
}

func cell(record []string, col, row int) (Point, bool) {
	if col < 0 || col >= len(record) {
		return Point{}, false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return Point{}, false
	}
	return Point{X: row, Y: y}, true
}

// ReadFile parses the file for run inside dir.
func ReadFile(dir string, run int) (Series, error) {
	path := filepath.Join(dir, FileName(run))
	file, err := os.Open(path)
	if err != nil {
		return Series{Run: run}, err
	}
	defer file.Close()

	series, err := Read(file)
	series.Run = run
	if err != nil {
		return Series{Run: run}, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadRuns reads runs 1..runs. Every run gets a series, empty when its file
// could not be read; the failures are returned together and logged once.
func LoadRuns(dir string, runs int) ([]Series, error) {
	var result *multierror.Error
	if runs < 0 {
		runs = 0
	}
	out := make([]Series, 0, runs)
	for run := 1; run <= runs; run++ {
		series, err := ReadFile(dir, run)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("run %d: %w", run, err))
		}
		out = append(out, series)
	}
	if err := result.ErrorOrNil(); err != nil {
		logging.GetLogger().WithFields(logrus.Fields{
			"dir":    dir,
			"failed": len(result.Errors),
		}).Warn(err.Error())
		return out, err
	}
	return out, nil
}
