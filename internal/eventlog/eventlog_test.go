package eventlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kitten-defense/internal/game"
)

func TestCaptureLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewCaptureLog(dir, "match-1", nil)

	c.NotifyCapture(game.CaptureEvent{TerritoryID: "den", NewOwner: "A", TerritoryType: game.TerritoryResidential})
	c.NotifyCapture(game.CaptureEvent{TerritoryID: "mill", NewOwner: "B", TerritoryType: game.TerritoryIndustrial})
	path := c.Path()
	if err := c.Close(); err != nil {
		t.Fatalf("Failed to close log: %v", err)
	}

	if filepath.Dir(path) != filepath.Join(dir, "captures") {
		t.Errorf("Unexpected log path %s", path)
	}

	entries, err := ReadFile[CaptureEntry](path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].TerritoryID != "den" || entries[0].NewOwner != "A" || entries[0].MatchID != "match-1" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].TerritoryType != game.TerritoryIndustrial {
		t.Errorf("Expected industrial, got %s", entries[1].TerritoryType)
	}
}

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "events")
	clock := time.Date(2024, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Write(map[string]int{"n": 1}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	first := w.CurrentPath()

	clock = clock.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"n": 2}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	second := w.CurrentPath()
	w.Close()

	if first == second {
		t.Fatalf("Expected a new file after the hour changed, got %s twice", first)
	}
	if filepath.Base(second) != "events-2024-03-01-11.jsonl.zst" {
		t.Errorf("Unexpected file name %s", filepath.Base(second))
	}

	for _, p := range []string{first, second} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
		}
		lines, err := ReadFile[map[string]int](p)
		if err != nil || len(lines) != 1 {
			t.Errorf("Expected 1 line in %s, got %d (%v)", p, len(lines), err)
		}
	}
}

func TestWriterAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(dir, "events")
		w.now = func() time.Time { return clock }
		if err := w.Write(map[string]int{"n": i}); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		w.Close()
	}

	lines, err := ReadFile[map[string]int](filepath.Join(dir, "events-2024-03-01-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("Expected both writers' lines, got %d", len(lines))
	}
}
