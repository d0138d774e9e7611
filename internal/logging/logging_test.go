package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}

func TestNewCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "focusflow.log")
	logger, err := New(path, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("phase completed", "ended", "focus", "completed_focus", 1)
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	records := readRecords(t, path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec["msg"] != "phase completed" || rec["level"] != "INFO" || rec["ended"] != "focus" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusflow.log")
	logger, err := New(path, "warn")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.With("component", "engine").Error("kept too")
	logger.Close()

	records := readRecords(t, path)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1]["component"] != "engine" {
		t.Fatalf("child logger lost its attribute: %v", records[1])
	}
}

func TestEmptyPathDiscards(t *testing.T) {
	logger, err := New("", "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("nowhere")
	if logger.file != nil {
		t.Fatal("expected no file")
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCloseTwice(t *testing.T) {
	logger, err := New(filepath.Join(t.TempDir(), "x.log"), "info")
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}
