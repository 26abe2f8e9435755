package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format distinguishes the two invocations built per target.
type Format string

const (
	// FormatHuman produces the report a person reads on a terminal.
	FormatHuman Format = "human"

	// FormatMachine produces the structured report downstream tooling parses.
	FormatMachine Format = "machine"
)

// Spec describes one external-linter invocation: a single hermetic unit of
// work whose declared inputs fully determine its declared outputs. It is
// built fresh per (target, format) pair and never persisted.
type Spec struct {
	// Target is the label of the build target under analysis.
	Target string

	// Format selects human or machine output.
	Format Format

	// Executable is the resolved linter executable.
	Executable string

	// Files are the files under analysis, in order. Must be non-empty; a
	// target with no files takes the no-op path and never reaches execution.
	Files []string

	// Filter is the attached ruleset/exclusion configuration.
	Filter Filter

	// ExtraFlags are additional linter flags (format selector, color, ...).
	ExtraFlags []string

	// ArgfilePath is where the file list gets written. The list is always
	// passed through this file, never inlined, so large targets cannot hit
	// OS command-line length limits.
	ArgfilePath string

	// StdoutPath receives the linter's captured stdout. It is created even
	// when the tool writes nothing, so the declared output always exists.
	StdoutPath string

	// ExitCodePath, when non-empty, receives the process exit status as
	// text and turns a non-zero exit into data instead of a step failure.
	ExitCodePath string
}

// Validate checks the spec is executable as declared.
func (s *Spec) Validate() error {
	if s.Target == "" {
		return fmt.Errorf("invocation spec: target label is required")
	}
	if s.Format != FormatHuman && s.Format != FormatMachine {
		return fmt.Errorf("invocation spec for %s: unsupported format %q", s.Target, s.Format)
	}
	if s.Executable == "" {
		return fmt.Errorf("invocation spec for %s: executable is required", s.Target)
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("invocation spec for %s: file list must be non-empty", s.Target)
	}
	if s.Filter == nil {
		return fmt.Errorf("invocation spec for %s: filter is required", s.Target)
	}
	if s.ArgfilePath == "" {
		return fmt.Errorf("invocation spec for %s: argfile path is required", s.Target)
	}
	if s.StdoutPath == "" {
		return fmt.Errorf("invocation spec for %s: stdout path is required", s.Target)
	}
	return nil
}

// Inputs returns the declared action inputs: exactly the files under
// analysis plus the filter's file references.
func (s *Spec) Inputs() []string {
	inputs := make([]string, 0, len(s.Files)+2)
	inputs = append(inputs, s.Files...)
	if s.Filter != nil {
		inputs = append(inputs, s.Filter.Paths()...)
	}
	return inputs
}

// Outputs returns the declared action outputs: the stdout file, plus the
// exit-code file when capture was requested.
func (s *Spec) Outputs() []string {
	outputs := []string{s.StdoutPath}
	if s.ExitCodePath != "" {
		outputs = append(outputs, s.ExitCodePath)
	}
	return outputs
}

// CapturesExitCode reports whether the exit status is recorded as data
// rather than failing the step.
func (s *Spec) CapturesExitCode() bool {
	return s.ExitCodePath != ""
}

// Args returns the linter command line, without the executable itself:
// extra flags first, then filter flags, then the argfile reference.
func (s *Spec) Args() []string {
	args := make([]string, 0, len(s.ExtraFlags)+4)
	args = append(args, s.ExtraFlags...)
	if s.Filter != nil {
		args = append(args, s.Filter.Args()...)
	}
	args = append(args, "@"+s.ArgfilePath)
	return args
}

// WriteArgfile materializes the file list, one path per line.
func (s *Spec) WriteArgfile() error {
	if err := os.MkdirAll(filepath.Dir(s.ArgfilePath), 0o755); err != nil {
		return fmt.Errorf("create argfile directory: %w", err)
	}
	content := strings.Join(s.Files, "\n") + "\n"
	if err := os.WriteFile(s.ArgfilePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write argfile: %w", err)
	}
	return nil
}
