// Package executor runs single linter invocations. Each Run is one hermetic
// unit of work: it reads only the spec's declared inputs and writes only the
// spec's declared outputs. Scheduling across invocations belongs to the
// caller; there is no shared state here.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"bugscan/internal/action"
)

// StepFailedError reports a non-zero linter exit in fail-fast mode (no
// exit-code capture requested). It is a step failure, not an execution
// error: the tool ran fine and found things.
type StepFailedError struct {
	Target   string
	Format   action.Format
	ExitCode int
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("target %s (%s): linter exited with code %d", e.Target, e.Format, e.ExitCode)
}

// Executor runs invocation specs.
type Executor struct{}

func New() *Executor {
	return &Executor{}
}

// Run executes one invocation spec.
//
// Contract:
//   - The argfile is written before the process starts.
//   - The stdout file exists afterwards even if the tool wrote nothing.
//   - With exit-code capture, the exit status is written to the exit-code
//     file and Run returns nil for any exit status.
//   - Without capture, a non-zero exit returns *StepFailedError.
//   - Failing to start the tool at all is an ordinary error.
func (e *Executor) Run(ctx context.Context, spec *action.Spec) (exitCode int, err error) {
	if spec == nil {
		return 0, errors.New("invocation spec is nil")
	}
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	if err := spec.WriteArgfile(); err != nil {
		return 0, fmt.Errorf("target %s (%s): %w", spec.Target, spec.Format, err)
	}

	if err := os.MkdirAll(filepath.Dir(spec.StdoutPath), 0o755); err != nil {
		return 0, fmt.Errorf("target %s (%s): create output directory: %w", spec.Target, spec.Format, err)
	}
	stdout, err := os.Create(spec.StdoutPath)
	if err != nil {
		return 0, fmt.Errorf("target %s (%s): create stdout file: %w", spec.Target, spec.Format, err)
	}
	defer stdout.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, spec.Executable, spec.Args()...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The tool never ran (not found, not executable, canceled).
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, fmt.Errorf("target %s (%s): run %s: %w", spec.Target, spec.Format, spec.Executable, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	if spec.CapturesExitCode() {
		if err := writeExitCode(spec.ExitCodePath, exitCode); err != nil {
			return exitCode, fmt.Errorf("target %s (%s): %w", spec.Target, spec.Format, err)
		}
		return exitCode, nil
	}

	if exitCode != 0 {
		err := &StepFailedError{Target: spec.Target, Format: spec.Format, ExitCode: exitCode}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return exitCode, fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return exitCode, err
	}
	return 0, nil
}

func writeExitCode(path string, code int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create exit-code directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", code)), 0o644); err != nil {
		return fmt.Errorf("write exit-code file: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
