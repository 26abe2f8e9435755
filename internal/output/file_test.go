package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bugscan/internal/action"
)

func TestNewFileSink_InfersFormatFromExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		format  string
		wantErr bool
	}{
		{name: "json", file: "out.json"},
		{name: "ndjson", file: "out.ndjson"},
		{name: "jsonl", file: "out.jsonl"},
		{name: "explicit_format_odd_extension", file: "out.dat", format: "ndjson"},
		{name: "unknown_extension", file: "out.xml", wantErr: true},
		{name: "no_extension", file: "out", wantErr: true},
		{name: "bad_explicit_format", file: "out.json", format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewFileSink(filepath.Join(t.TempDir(), tt.file), tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFileSink returned error: %v", err)
			}
			if err := sink.Close(); err != nil {
				t.Fatalf("Close returned error: %v", err)
			}
		})
	}
}

func TestFileSink_JSONWritesAggregateOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink returned error: %v", err)
	}

	_ = sink.Write(Event{Type: "run.started"})
	if err := sink.Write(action.Result{Target: "//a:x", Status: action.StatusFail, ExitCode: 1}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	var got []action.Result
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 1 || got[0].ExitCode != 1 {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
}

func TestFileSink_NDJSONStreamsEveryEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.ndjson")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink returned error: %v", err)
	}

	_ = sink.Write(Event{Type: "run.started", RunID: "r1", Targets: 1})
	_ = sink.Write(Event{Type: "target.started", Target: "//a:x"})
	_ = sink.Write(action.Result{Target: "//a:x", Status: action.StatusPass})
	_ = sink.Write(Event{Type: "target.finished", Target: "//a:x"})
	_ = sink.Write(Event{Type: "run.finished", ExitCode: 0})
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 NDJSON lines, got %d:\n%s", len(lines), raw)
	}

	wantTypes := []string{"run.started", "target.started", "invocation.result", "target.finished", "run.finished"}
	for i, line := range lines {
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("line %d invalid JSON: %v", i+1, err)
		}
		if e.Type != wantTypes[i] {
			t.Errorf("line %d type = %q, want %q", i+1, e.Type, wantTypes[i])
		}
	}
}

func TestFileSink_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "results.json")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}
