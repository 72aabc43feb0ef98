// Package marketdata loads one-minute OHLC bars from CSV, per spec.md
// §6: columns time, open, high, low, close; sorted ascending; duplicate
// timestamps are illegal. Grounded on the teacher's internal/data/store.go
// shape and the cobra-based CSV replay idiom in the retrieved pack's
// rustyeddy-trader backtest command.
package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atlas-desktop/backtester/pkg/types"
)

// LoadCSV reads a bar file, validates column shape, rejects duplicate
// timestamps, and returns bars sorted ascending by time.
func LoadCSV(path string) ([]types.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("marketdata: read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var bars []types.Bar
	seen := make(map[int64]bool)
	lineNo := 1

	for {
		row, err := r.Read()
		lineNo++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("marketdata: line %d: %w", lineNo, err)
		}
		if len(row) == 0 {
			continue
		}

		bar, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("marketdata: line %d: %w", lineNo, err)
		}

		key := bar.Timestamp.Unix()
		if seen[key] {
			return nil, fmt.Errorf("marketdata: line %d: duplicate timestamp %s", lineNo, bar.Timestamp)
		}
		seen[key] = true

		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })

	return bars, nil
}

type columns struct {
	time, open, high, low, close int
}

func columnIndex(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := columns{}
	for _, spec := range []struct {
		name string
		dst  *int
	}{
		{"time", &cols.time}, {"open", &cols.open}, {"high", &cols.high},
		{"low", &cols.low}, {"close", &cols.close},
	} {
		i, ok := idx[spec.name]
		if !ok {
			return columns{}, fmt.Errorf("marketdata: missing required column %q", spec.name)
		}
		*spec.dst = i
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (types.Bar, error) {
	maxIdx := cols.time
	for _, c := range []int{cols.open, cols.high, cols.low, cols.close} {
		if c > maxIdx {
			maxIdx = c
		}
	}
	if maxIdx >= len(row) {
		return types.Bar{}, fmt.Errorf("row has %d columns, need at least %d", len(row), maxIdx+1)
	}

	ts, err := parseTimestamp(row[cols.time])
	if err != nil {
		return types.Bar{}, fmt.Errorf("bad timestamp %q: %w", row[cols.time], err)
	}

	o, err := strconv.ParseFloat(strings.TrimSpace(row[cols.open]), 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("bad open %q: %w", row[cols.open], err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(row[cols.high]), 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("bad high %q: %w", row[cols.high], err)
	}
	l, err := strconv.ParseFloat(strings.TrimSpace(row[cols.low]), 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("bad low %q: %w", row[cols.low], err)
	}
	c, err := strconv.ParseFloat(strings.TrimSpace(row[cols.close]), 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("bad close %q: %w", row[cols.close], err)
	}

	return types.Bar{Timestamp: ts, Open: o, High: h, Low: l, Close: c}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
