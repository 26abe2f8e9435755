package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Targeting
	FlagManifest   = "manifest"
	FlagTargets    = "targets"
	FlagKinds      = "kinds"
	FlagSource     = "source"
	FlagMaxTargets = "max-targets"
	FlagDryRun     = "dry-run"

	// Analysis
	FlagTool            = "tool"
	FlagRuleset         = "ruleset"
	FlagExclusionFilter = "exclusion-filter"
	FlagToolFlag        = "tool-flag"
	FlagCaptureExitCode = "capture-exit-code"
	FlagColor           = "color"

	// Output
	FlagOutDir        = "out-dir"
	FlagConsoleFormat = "console-format"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagEmit          = "emit"
	FlagReport        = "report"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagFailFast    = "fail-fast"
)
