package audit_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/1mdazam/OfflinePasswordManager/internal/audit"
)

func TestFileLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	logger, err := audit.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger returned error: %v", err)
	}

	logger.Record("store_saved", audit.Fields{"count": 3, "path": "store.dat"})
	logger.Record("record_removed", audit.Fields{"index": 1, "count": 2})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	t.Cleanup(func() {
		file.Close()
	})

	var events []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan audit log: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0]["message"] != "store_saved" {
		t.Fatalf("expected first event store_saved, got %v", events[0]["message"])
	}
	if events[0]["count"] != float64(3) {
		t.Fatalf("expected count 3, got %v", events[0]["count"])
	}
	if events[1]["message"] != "record_removed" {
		t.Fatalf("expected second event record_removed, got %v", events[1]["message"])
	}
	if _, ok := events[0]["time"]; !ok {
		t.Fatal("expected events to carry a timestamp")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	for i := 0; i < 2; i++ {
		logger, err := audit.NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger returned error: %v", err)
		}
		logger.Record("store_loaded", audit.Fields{"count": i})
		if err := logger.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines after two sessions, got %d", lines)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := audit.Nop()
	logger.Record("store_saved", audit.Fields{"count": 1})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
