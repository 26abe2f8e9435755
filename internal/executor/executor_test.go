package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"bugscan/internal/action"
)

// stubTool writes a shell script standing in for the external linter.
func stubTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub tool requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "linter")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub tool: %v", err)
	}
	return path
}

func stubSpec(t *testing.T, tool string, capture bool) *action.Spec {
	t.Helper()
	filter, err := action.NewExclusionFilter("filter.xml")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	dir := t.TempDir()
	s := &action.Spec{
		Target:      "//java/acme:core",
		Format:      action.FormatHuman,
		Executable:  tool,
		Files:       []string{"a.jar", "b.jar", "c.jar"},
		Filter:      filter,
		ExtraFlags:  []string{"-textui"},
		ArgfilePath: filepath.Join(dir, "human.args"),
		StdoutPath:  filepath.Join(dir, "human.out"),
	}
	if capture {
		s.ExitCodePath = filepath.Join(dir, "human.exit")
	}
	return s
}

func TestRun_ZeroExit_CapturesStdout(t *testing.T) {
	tool := stubTool(t, `echo "no bugs found"`)
	spec := stubSpec(t, tool, false)

	code, err := New().Run(context.Background(), spec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	raw, err := os.ReadFile(spec.StdoutPath)
	if err != nil {
		t.Fatalf("stdout file missing: %v", err)
	}
	if string(raw) != "no bugs found\n" {
		t.Errorf("stdout file = %q", raw)
	}
}

func TestRun_ZeroExit_NoOutput_StdoutFileStillExists(t *testing.T) {
	tool := stubTool(t, "exit 0")
	spec := stubSpec(t, tool, false)

	if _, err := New().Run(context.Background(), spec); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	raw, err := os.ReadFile(spec.StdoutPath)
	if err != nil {
		t.Fatalf("declared stdout file must exist even with no tool output: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("expected empty stdout file, got %q", raw)
	}
}

func TestRun_ArgfileDeliversFileList(t *testing.T) {
	// The stub prints the argfile contents so the test can confirm the file
	// list travels via the argfile, not the command line.
	tool := stubTool(t, `for a in "$@"; do case "$a" in @*) cat "${a#@}";; esac; done`)
	spec := stubSpec(t, tool, false)

	if _, err := New().Run(context.Background(), spec); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	raw, err := os.ReadFile(spec.StdoutPath)
	if err != nil {
		t.Fatalf("read stdout file: %v", err)
	}
	if string(raw) != "a.jar\nb.jar\nc.jar\n" {
		t.Errorf("argfile roundtrip = %q", raw)
	}
}

func TestRun_NonZero_NoCapture_FailsStep(t *testing.T) {
	tool := stubTool(t, "echo finding >&2; exit 2")
	spec := stubSpec(t, tool, false)

	code, err := New().Run(context.Background(), spec)
	if err == nil {
		t.Fatalf("expected step failure for non-zero exit without capture")
	}
	var stepErr *StepFailedError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepFailedError, got %T: %v", err, err)
	}
	if stepErr.ExitCode != 2 || code != 2 {
		t.Errorf("exit code = %d/%d, want 2", stepErr.ExitCode, code)
	}
}

func TestRun_NonZero_Capture_RecordsExitCode(t *testing.T) {
	tool := stubTool(t, "exit 3")
	spec := stubSpec(t, tool, true)

	code, err := New().Run(context.Background(), spec)
	if err != nil {
		t.Fatalf("capture mode must not fail the step: %v", err)
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	raw, err := os.ReadFile(spec.ExitCodePath)
	if err != nil {
		t.Fatalf("exit-code file missing: %v", err)
	}
	if string(raw) != "3\n" {
		t.Errorf("exit-code file = %q, want \"3\\n\"", raw)
	}
}

func TestRun_ZeroExit_Capture_RecordsZero(t *testing.T) {
	tool := stubTool(t, "exit 0")
	spec := stubSpec(t, tool, true)

	if _, err := New().Run(context.Background(), spec); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	raw, err := os.ReadFile(spec.ExitCodePath)
	if err != nil {
		t.Fatalf("exit-code file missing: %v", err)
	}
	if string(raw) != "0\n" {
		t.Errorf("exit-code file = %q, want \"0\\n\"", raw)
	}
}

func TestRun_ToolMissing_IsExecutionError(t *testing.T) {
	spec := stubSpec(t, filepath.Join(t.TempDir(), "no-such-linter"), false)

	_, err := New().Run(context.Background(), spec)
	if err == nil {
		t.Fatalf("expected error for missing tool")
	}
	var stepErr *StepFailedError
	if errors.As(err, &stepErr) {
		t.Fatalf("missing tool must not look like a lint finding")
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	spec := stubSpec(t, "linter", false)
	spec.Files = nil
	if _, err := New().Run(context.Background(), spec); err == nil {
		t.Fatalf("expected validation error for empty file list")
	}
}
