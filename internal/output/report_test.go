package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bugscan/internal/action"
)

func TestReportSink_WritesMarkdownSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	sink, err := NewReportSink(path)
	if err != nil {
		t.Fatalf("NewReportSink returned error: %v", err)
	}

	_ = sink.Write(Event{Type: "run.started", RunID: "run-123"})
	_ = sink.Write(action.Result{Target: "//a:x", Format: action.FormatHuman, Status: action.StatusPass, StdoutPath: "out/a_x/human.out"})
	_ = sink.Write(action.Result{Target: "//a:x", Format: action.FormatMachine, Status: action.StatusFail, ExitCode: 2, Message: "linter reported findings (exit 2)"})
	_ = sink.Write(action.Result{Target: "//a:y", Status: action.StatusSkipped, Message: "no files to analyze"})
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	report := string(raw)

	for _, want := range []string{
		"# Lint Report",
		"run-123",
		"## Summary",
		"| PASS | 1 |",
		"| FAIL | 1 |",
		"| SKIPPED | 1 |",
		"## Invocations",
		"| //a:x | machine | FAIL | 2 |",
		"## Findings",
		"**//a:x** (machine): FAIL: linter reported findings (exit 2)",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestReportSink_NoFindingsSectionWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	sink, err := NewReportSink(path)
	if err != nil {
		t.Fatalf("NewReportSink returned error: %v", err)
	}

	_ = sink.Write(action.Result{Target: "//a:x", Format: action.FormatHuman, Status: action.StatusPass})
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "## Findings") {
		t.Fatalf("clean run must not have a Findings section:\n%s", raw)
	}
}

func TestReportSink_SortsInvocationsByTargetThenFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	sink, err := NewReportSink(path)
	if err != nil {
		t.Fatalf("NewReportSink returned error: %v", err)
	}

	_ = sink.Write(action.Result{Target: "//b:y", Format: action.FormatMachine, Status: action.StatusPass})
	_ = sink.Write(action.Result{Target: "//a:x", Format: action.FormatMachine, Status: action.StatusPass})
	_ = sink.Write(action.Result{Target: "//a:x", Format: action.FormatHuman, Status: action.StatusPass})
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	raw, _ := os.ReadFile(path)
	report := string(raw)
	first := strings.Index(report, "| //a:x | human |")
	second := strings.Index(report, "| //a:x | machine |")
	third := strings.Index(report, "| //b:y | machine |")
	if first == -1 || second == -1 || third == -1 {
		t.Fatalf("missing invocation rows:\n%s", report)
	}
	if !(first < second && second < third) {
		t.Fatalf("rows out of order: %d %d %d\n%s", first, second, third, report)
	}
}
