package marketdata

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadCSV_CaseInsensitiveHeaderAndAscendingSort(t *testing.T) {
	content := "Time,Open,High,Low,Close\n" +
		"2020-01-01 00:01:00,1.1,1.2,1.0,1.15\n" +
		"2020-01-01 00:00:00,1.0,1.1,0.9,1.05\n"
	path := writeCSV(t, content)

	bars, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV returned error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Errorf("bars are not sorted ascending: %v, %v", bars[0].Timestamp, bars[1].Timestamp)
	}
	if bars[0].Open != 1.0 || bars[1].Open != 1.1 {
		t.Errorf("bars = %+v, want the 00:00 bar first", bars)
	}
}

func TestLoadCSV_DuplicateTimestampRejected(t *testing.T) {
	content := "time,open,high,low,close\n" +
		"2020-01-01 00:00:00,1,1,1,1\n" +
		"2020-01-01 00:00:00,1,1,1,1\n"
	path := writeCSV(t, content)

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("expected an error on duplicate timestamps")
	}
}

func TestLoadCSV_MissingRequiredColumnErrors(t *testing.T) {
	content := "time,open,high,low\n2020-01-01 00:00:00,1,1,1\n"
	path := writeCSV(t, content)

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("expected an error when the close column is missing")
	}
}

func TestLoadCSV_AcceptsRFC3339Timestamps(t *testing.T) {
	content := "time,open,high,low,close\n2020-01-01T00:00:00Z,1,1.1,0.9,1.05\n"
	path := writeCSV(t, content)

	bars, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV returned error: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("len(bars) = %d, want 1", len(bars))
	}
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !bars[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", bars[0].Timestamp, want)
	}
}

func TestLoadCSV_BadNumericFieldErrors(t *testing.T) {
	content := "time,open,high,low,close\n2020-01-01 00:00:00,oops,1,1,1\n"
	path := writeCSV(t, content)

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("expected an error on a non-numeric open field")
	}
}
