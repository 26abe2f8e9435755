package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bugscan/internal/config"
	"bugscan/internal/engine"
	"bugscan/internal/flags"
)

var cfg = config.New()

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the linter over a manifest's build targets",
	Long: `Run the external linter over every in-scope target reachable from the
requested roots.

Target selection:
	Targets come from a YAML build manifest (--manifest). The requested roots
	(--targets, default: all) are walked together with their transitive deps,
	and each visited target whose rule kind is in the allow-list (--kinds,
	default: java_binary,java_library) is analyzed once. Depending on
	--source, either the target's compiled jars or its declared sources are
	analyzed.

Per-target outputs:
	Each analyzed target gets two invocations, a human-format and a
	machine-format one, sharing the same inputs. Under --out-dir each
	invocation leaves an argfile, the captured stdout, and (with
	--capture-exit-code) an exit-code file. Targets with nothing to analyze
	still get empty placeholder outputs.

Failure semantics:
	Without --capture-exit-code, a non-zero linter exit fails that target's
	step. With it, the exit status is recorded to the exit-code file instead
	and the step succeeds, so findings across many targets can be aggregated
	from one run.

Exit codes:
	0 = clean run, no findings
	1 = linter findings detected
	2 = partial failure (some invocations errored)
	3 = fatal error (run did not start)

Examples:
  # Fail on the first finding (CI gate)
  bugscan check --manifest build.yaml --tool ./tools/linter \
    --exclusion-filter filter.xml --fail-fast

  # Aggregate findings across all targets
  bugscan check --manifest build.yaml --tool ./tools/linter \
    --ruleset rules/core.xml --capture-exit-code

	# AI Agent: stream machine-readable events to stdout
	bugscan check --manifest build.yaml --tool ./tools/linter \
		--ruleset rules/core.xml --no-console --emit ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		eng := engine.NewEngine()
		os.Exit(eng.Run(context.Background(), cfg))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Targeting
	checkCmd.Flags().StringVar(&cfg.Targeting.Manifest, flags.FlagManifest, "", "Path to the YAML build manifest (required)")
	checkCmd.Flags().StringSliceVar(&cfg.Targeting.Targets, flags.FlagTargets, nil, "Root target labels to analyze (repeatable; comma-separated accepted; default: all)")
	checkCmd.Flags().StringSliceVar(&cfg.Targeting.Kinds, flags.FlagKinds, nil, "Rule-kind allow-list (default: java_binary,java_library)")
	checkCmd.Flags().StringVar(&cfg.Targeting.Source, flags.FlagSource, "outputs", "What to analyze per target: outputs|sources (default: outputs)")
	checkCmd.Flags().IntVar(&cfg.Targeting.MaxTargets, flags.FlagMaxTargets, 0, "Maximum number of targets to analyze (0 = unlimited)")
	checkCmd.Flags().BoolVar(&cfg.Targeting.DryRun, flags.FlagDryRun, false, "Resolve targets and print the plan without running the linter")

	// Analysis
	checkCmd.Flags().StringVar(&cfg.Analysis.Tool, flags.FlagTool, "", "Path to the linter executable (required)")
	checkCmd.Flags().StringSliceVar(&cfg.Analysis.Rulesets, flags.FlagRuleset, nil, "Ruleset file enabling lint rules (repeatable; mutually exclusive with --exclusion-filter)")
	checkCmd.Flags().StringVar(&cfg.Analysis.ExclusionFilter, flags.FlagExclusionFilter, "", "File of findings to suppress (mutually exclusive with --ruleset)")
	checkCmd.Flags().StringArrayVar(&cfg.Analysis.ExtraFlags, flags.FlagToolFlag, nil, "Extra flag passed to every linter invocation (repeatable)")
	checkCmd.Flags().BoolVar(&cfg.Analysis.CaptureExitCode, flags.FlagCaptureExitCode, false, "Record the linter's exit status per invocation instead of failing the step")
	checkCmd.Flags().BoolVar(&cfg.Analysis.Color, flags.FlagColor, true, "Color codes in human-format output")

	// Output
	checkCmd.Flags().StringVar(&cfg.Output.Dir, flags.FlagOutDir, cfg.Output.Dir, "Directory for per-target argfiles and outputs")
	checkCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	checkCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	checkCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	checkCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	checkCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	checkCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")

	// Runtime
	checkCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent targets (default: 4)")
	checkCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 30m)")
	checkCmd.Flags().BoolVar(&cfg.Runtime.FailFast, flags.FlagFailFast, false, "Stop on first step failure (default: false)")
}
