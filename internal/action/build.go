package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Pair holds the two invocations built per target. Both share the same input
// set and differ only in flags and destination paths; they are independent
// units of work and may run concurrently.
type Pair struct {
	Human   Spec
	Machine Spec
}

// Specs returns both invocations, human first.
func (p *Pair) Specs() []*Spec {
	return []*Spec{&p.Human, &p.Machine}
}

// Builder constructs invocation pairs for in-scope targets. All defaults
// come in through the constructor; a process can hold several independent
// builders with different linter configurations.
type Builder struct {
	// Executable is the external linter executable.
	Executable string

	// Filter is the ruleset/exclusion configuration shared by every
	// invocation this builder produces.
	Filter Filter

	// HumanFlags and MachineFlags are the per-format flag lists (output
	// format selector, color toggle, ...).
	HumanFlags   []string
	MachineFlags []string

	// OutDir is the root directory for per-target argfiles and outputs.
	OutDir string

	// CaptureExitCode, when true, declares an exit-code file per invocation
	// so a non-zero linter exit becomes data instead of a step failure.
	CaptureExitCode bool
}

// NewBuilder validates the builder configuration up front, so malformed
// setups surface at plan construction rather than mid-run.
func NewBuilder(b Builder) (*Builder, error) {
	if b.Executable == "" {
		return nil, fmt.Errorf("linter executable is required")
	}
	if b.Filter == nil {
		return nil, fmt.Errorf("a ruleset or exclusion filter is required")
	}
	if b.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	return &b, nil
}

// BuildPair builds the human/machine invocation pair for one target. The
// file list must be non-empty; callers route empty lists through
// WritePlaceholders instead.
func (b *Builder) BuildPair(label string, files []string) (*Pair, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("target %s: file list must be non-empty (use the no-op path)", label)
	}

	dir := filepath.Join(b.OutDir, SanitizeLabel(label))

	pair := &Pair{
		Human:   b.spec(label, dir, FormatHuman, b.HumanFlags, files),
		Machine: b.spec(label, dir, FormatMachine, b.MachineFlags, files),
	}
	for _, s := range pair.Specs() {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

func (b *Builder) spec(label, dir string, format Format, flags []string, files []string) Spec {
	s := Spec{
		Target:      label,
		Format:      format,
		Executable:  b.Executable,
		Files:       files,
		Filter:      b.Filter,
		ExtraFlags:  flags,
		ArgfilePath: filepath.Join(dir, string(format)+".args"),
		StdoutPath:  filepath.Join(dir, string(format)+".out"),
	}
	if b.CaptureExitCode {
		s.ExitCodePath = filepath.Join(dir, string(format)+".exit")
	}
	return s
}

// PlaceholderOutputs returns the outputs the no-op path must materialize
// for a target with nothing to analyze.
func (b *Builder) PlaceholderOutputs(label string) []string {
	dir := filepath.Join(b.OutDir, SanitizeLabel(label))
	outputs := []string{
		filepath.Join(dir, string(FormatHuman)+".out"),
		filepath.Join(dir, string(FormatMachine)+".out"),
	}
	if b.CaptureExitCode {
		outputs = append(outputs,
			filepath.Join(dir, string(FormatHuman)+".exit"),
			filepath.Join(dir, string(FormatMachine)+".exit"),
		)
	}
	return outputs
}

// WritePlaceholders takes the no-op path: no process runs, but every output
// the contract declares still gets created so downstream consumers never see
// a missing file. Exit-code placeholders record a clean zero.
func (b *Builder) WritePlaceholders(label string) error {
	for _, out := range b.PlaceholderOutputs(label) {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create output directory for %s: %w", label, err)
		}
		var content []byte
		if strings.HasSuffix(out, ".exit") {
			content = []byte("0\n")
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			return fmt.Errorf("write placeholder output for %s: %w", label, err)
		}
	}
	return nil
}

// SanitizeLabel maps a target label to a filesystem-safe directory name.
func SanitizeLabel(label string) string {
	r := strings.NewReplacer("//", "", "/", "_", ":", "_", " ", "_")
	out := r.Replace(label)
	if out == "" {
		out = "_"
	}
	return out
}
