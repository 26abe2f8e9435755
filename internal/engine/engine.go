package engine

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"bugscan/internal/action"
	"bugscan/internal/config"
	"bugscan/internal/executor"
	"bugscan/internal/output"
	"bugscan/internal/target"
)

func exitCodeForRun(fatal, partial, findings bool) int {
	// Exit code contract:
	// 0 = clean run, no findings
	// 1 = linter findings detected
	// 2 = partial failure (some invocations errored)
	// 3 = fatal error (run did not start)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if findings {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat, cfg.Analysis.Color)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(os.Stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// buildFilter turns the validated config into the filter variant. Exactly
// one variant exists after config.Validate, so the branch order is safe.
func buildFilter(cfg *config.Config) (action.Filter, error) {
	if len(cfg.Analysis.Rulesets) > 0 {
		return action.NewRulesets(cfg.Analysis.Rulesets)
	}
	return action.NewExclusionFilter(cfg.Analysis.ExclusionFilter)
}

// defaultFormatFlags returns the per-format flag lists for the linter.
// The human report optionally uses color; the machine report is XML.
func defaultFormatFlags(color bool) (human, machine []string) {
	human = []string{"-textui"}
	if color {
		human = append(human, "-color")
	}
	machine = []string{"-xml"}
	return human, machine
}

type Engine struct {
	// schedulerExecute is a test seam for streaming execution.
	// If nil, Engine uses the real executor + scheduler.
	schedulerExecute func(ctx context.Context, cfg *config.Config, b *action.Builder, plan *Plan) (<-chan Outcome, <-chan error)
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) executePlanStream(ctx context.Context, cfg *config.Config, b *action.Builder, plan *Plan) (<-chan Outcome, <-chan error) {
	if e.schedulerExecute != nil {
		return e.schedulerExecute(ctx, cfg, b, plan)
	}

	scheduler, err := NewScheduler(executor.New(), b, cfg.Runtime.Concurrency, cfg.Runtime.FailFast)
	if err != nil {
		outCh := make(chan Outcome)
		errCh := make(chan error, 1)
		close(outCh)
		errCh <- err
		close(errCh)
		return outCh, errCh
	}
	return scheduler.Execute(ctx, plan)
}

// consumeOutcomes forwards streamed outcomes to the output sinks and
// aggregates run status.
func consumeOutcomes(outCh <-chan Outcome, outMgr *output.Manager) (hasErrors, hasFindings bool) {
	for o := range outCh {
		switch {
		case o.Started != "":
			_ = outMgr.Write(output.Event{Type: "target.started", Target: o.Started})
		case o.Finished != "":
			_ = outMgr.Write(output.Event{Type: "target.finished", Target: o.Finished})
		default:
			switch o.Result.Status {
			case action.StatusFail:
				hasFindings = true
			case action.StatusError:
				hasErrors = true
			}
			_ = outMgr.Write(o.Result)
		}
	}
	return hasErrors, hasFindings
}

func maybeDryRun(cfg *config.Config, plan *Plan) (int, bool) {
	if !cfg.Targeting.DryRun {
		return 0, false
	}

	type row struct{ label, disposition string }
	rows := make([]row, 0, len(plan.Targets))
	for _, tp := range plan.Targets {
		switch {
		case !tp.InScope:
			rows = append(rows, row{tp.Target.Label, fmt.Sprintf("skip (kind %s)", tp.Target.Kind)})
		case tp.Noop():
			rows = append(rows, row{tp.Target.Label, "no-op (no files)"})
		default:
			rows = append(rows, row{tp.Target.Label, fmt.Sprintf("analyze %d files", len(tp.Files))})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })

	fmt.Println("Planned targets:")
	for _, r := range rows {
		fmt.Printf("%s\t%s\n", r.label, r.disposition)
	}
	return 0, true
}

func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	if !cfg.Output.NoConsole {
		fmt.Fprintln(os.Stderr, "Loading build manifest...")
	}
	manifest, err := target.LoadManifest(cfg.Targeting.Manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	sel, err := target.NewSelector(cfg.Targeting.Kinds, target.FileSource(cfg.Targeting.Source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring selector: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	filter, err := buildFilter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring filter: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	humanFlags, machineFlags := defaultFormatFlags(cfg.Analysis.Color)
	builder, err := action.NewBuilder(action.Builder{
		Executable:      cfg.Analysis.Tool,
		Filter:          filter,
		HumanFlags:      append(humanFlags, cfg.Analysis.ExtraFlags...),
		MachineFlags:    append(machineFlags, cfg.Analysis.ExtraFlags...),
		OutDir:          cfg.Output.Dir,
		CaptureExitCode: cfg.Analysis.CaptureExitCode,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring invocations: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	plan, err := BuildPlan(manifest, sel, builder, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error planning run: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Visited %d targets, %d to analyze.\n", len(plan.Targets), plan.Analyzable())
	}

	if code, ok := maybeDryRun(cfg, plan); ok {
		return code
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer outMgr.Close()

	runCtx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	runID := uuid.NewString()
	_ = outMgr.Write(output.Event{Type: "run.started", RunID: runID, Targets: len(plan.Targets)})

	outCh, errCh := e.executePlanStream(runCtx, cfg, builder, plan)
	hasErrors, hasFindings := consumeOutcomes(outCh, outMgr)

	var schedErr error
	// Drain scheduler errors; keep one non-nil error.
	for err := range errCh {
		if err != nil {
			schedErr = err
		}
	}
	if schedErr != nil && cfg.Runtime.Verbose {
		fmt.Fprintf(os.Stderr, "Run aborted: %v\n", schedErr)
	}

	fatal := schedErr != nil
	code := exitCodeForRun(fatal, hasErrors, hasFindings)
	_ = outMgr.Write(output.Event{Type: "run.finished", RunID: runID, ExitCode: code})
	return code
}
