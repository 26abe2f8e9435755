package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect
	// check behavior, keep the CLI flags in internal/cli/check.go in sync.
	Targeting Targeting
	Analysis  Analysis
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Manifest is the path to the YAML build manifest (see --manifest).
	Manifest string

	// Targets are root labels to analyze (see --targets). Their transitive
	// deps are visited too. Empty means every target in the manifest.
	Targets []string

	// Kinds is the rule-kind allow-list (see --kinds).
	// Empty means the default Java kinds (java_binary, java_library).
	Kinds []string

	// Source selects what gets analyzed per target (see --source).
	// Allowed values: outputs (compiled jars), sources (declared srcs).
	Source string

	// MaxTargets limits how many targets to analyze (see --max-targets).
	// 0 means unlimited.
	MaxTargets int

	// DryRun resolves and selects targets and prints the plan without
	// running the linter (see --dry-run).
	DryRun bool
}

type Analysis struct {
	// Tool is the external linter executable (see --tool).
	Tool string

	// Rulesets are ruleset files enabling specific lint rules (see --ruleset).
	// Mutually exclusive with ExclusionFilter.
	Rulesets []string

	// ExclusionFilter is a single file of findings to suppress regardless of
	// matched rule (see --exclusion-filter). Mutually exclusive with Rulesets.
	ExclusionFilter string

	// ExtraFlags are additional flags passed to every invocation (see --tool-flag).
	ExtraFlags []string

	// CaptureExitCode records the linter's exit status to a file per
	// invocation instead of failing the step on non-zero exit (see
	// --capture-exit-code). This lets a caller aggregate findings across
	// many targets without aborting on the first one.
	CaptureExitCode bool

	// Color toggles color codes in the human-format report (see --color).
	Color bool
}

type Output struct {
	// Dir is the root directory for per-target argfiles, stdout files and
	// exit-code files (see --out-dir).
	Dir string

	// ConsoleFormat controls the console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, inferred from the extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency bounds how many targets run at once (see --concurrency).
	// Must be >= 1. The two invocations of one target are independent and
	// run concurrently with each other.
	Concurrency int

	// Timeout is the global timeout for the run (see --timeout).
	Timeout time.Duration

	// FailFast stops the run on the first step failure (see --fail-fast).
	FailFast bool

	// Verbose enables more detailed diagnostics on stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		Targeting: Targeting{
			Source: "outputs",
		},
		Analysis: Analysis{
			Color: true,
		},
		Output: Output{
			Dir:           "bugscan-out",
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			Timeout:     30 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Targeting.Targets = splitCommaList(c.Targeting.Targets)
	c.Targeting.Kinds = splitCommaList(c.Targeting.Kinds)
	c.Analysis.Rulesets = splitCommaList(c.Analysis.Rulesets)

	// Targeting validation
	if strings.TrimSpace(c.Targeting.Manifest) == "" {
		return errors.New("--manifest is required")
	}
	c.Targeting.Source = normalizeEnumValue(c.Targeting.Source)
	if c.Targeting.Source == "" {
		c.Targeting.Source = "outputs"
	}
	if c.Targeting.Source != "outputs" && c.Targeting.Source != "sources" {
		return fmt.Errorf("unsupported --source: %s (must be one of: outputs, sources)", c.Targeting.Source)
	}
	if c.Targeting.MaxTargets < 0 {
		return errors.New("--max-targets must be >= 0")
	}

	// Analysis validation
	if strings.TrimSpace(c.Analysis.Tool) == "" {
		return errors.New("--tool is required")
	}
	if len(c.Analysis.Rulesets) > 0 && c.Analysis.ExclusionFilter != "" {
		return errors.New("--ruleset and --exclusion-filter are mutually exclusive")
	}
	if len(c.Analysis.Rulesets) == 0 && c.Analysis.ExclusionFilter == "" {
		return errors.New("one of --ruleset or --exclusion-filter is required")
	}

	// Output validation
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("--out-dir must not be empty")
	}
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
