package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bugscan/internal/action"
	"bugscan/internal/executor"
)

// Outcome is one streamed invocation (or no-op) outcome.
type Outcome struct {
	Result action.Result

	// StepFailed marks a fail-fast step failure: the linter exited non-zero
	// and no exit-code capture was requested.
	StepFailed bool

	// Started/Finished bracket a target's outcomes for lifecycle events.
	Started  string
	Finished string
}

// Scheduler executes a plan with bounded target concurrency. Each invocation
// is hermetic, so the only ordering it preserves is started-before-results-
// before-finished per target; targets interleave freely.
type Scheduler struct {
	exec        *executor.Executor
	builder     *action.Builder
	concurrency int
	failFast    bool
}

func NewScheduler(exec *executor.Executor, builder *action.Builder, concurrency int, failFast bool) (*Scheduler, error) {
	if exec == nil {
		return nil, errors.New("executor is nil")
	}
	if builder == nil {
		return nil, errors.New("action builder is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{exec: exec, builder: builder, concurrency: concurrency, failFast: failFast}, nil
}

// Execute streams per-invocation outcomes.
//
// Channel semantics:
//   - One Outcome with Started set opens each target; one with Finished set
//     closes it. Invocation outcomes arrive in between.
//   - On cancellation the scheduler stops promptly and may emit fewer
//     outcomes. Both channels are closed reliably.
//   - The error channel carries at most one fatal error.
func (s *Scheduler) Execute(ctx context.Context, plan *Plan) (<-chan Outcome, <-chan error) {
	outCh := make(chan Outcome)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		if plan == nil {
			errCh <- errors.New("plan is nil")
			return
		}

		g, runCtx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)

		emit := func(o Outcome) bool {
			select {
			case outCh <- o:
				return true
			case <-runCtx.Done():
				return false
			}
		}

		for _, tp := range plan.Targets {
			tp := tp
			g.Go(func() error {
				return s.runTarget(runCtx, tp, emit)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, errStopRun) {
			errCh <- err
			return
		}
		if ctx.Err() != nil {
			errCh <- ctx.Err()
		}
	}()

	return outCh, errCh
}

// errStopRun signals a fail-fast stop that is already reported through an
// Outcome; it must not surface as a fatal scheduler error.
var errStopRun = errors.New("stop run")

func (s *Scheduler) runTarget(ctx context.Context, tp *TargetPlan, emit func(Outcome) bool) error {
	label := tp.Target.Label
	if !emit(Outcome{Started: label}) {
		return ctx.Err()
	}

	switch {
	case !tp.InScope:
		// Selector short-circuit: nothing declared, nothing run.
		if !emit(Outcome{Result: action.Result{
			Target:  label,
			Status:  action.StatusSkipped,
			Message: fmt.Sprintf("rule kind %q not in allow-list", tp.Target.Kind),
		}}) {
			return ctx.Err()
		}

	case tp.Noop():
		// No files to analyze: no process, placeholder outputs only.
		if err := s.writeNoop(tp, emit); err != nil {
			return err
		}

	default:
		// The two invocations share inputs and are independent; run them
		// concurrently.
		sub, subCtx := errgroup.WithContext(ctx)
		outcomes := make([]Outcome, len(tp.Pair.Specs()))
		for i, spec := range tp.Pair.Specs() {
			i, spec := i, spec
			sub.Go(func() error {
				outcomes[i] = s.runInvocation(subCtx, spec)
				return nil
			})
		}
		if err := sub.Wait(); err != nil {
			return err
		}
		for _, o := range outcomes {
			if !emit(o) {
				return ctx.Err()
			}
			if s.failFast && (o.StepFailed || o.Result.Status == action.StatusError) {
				return errStopRun
			}
		}
	}

	if !emit(Outcome{Finished: label}) {
		return ctx.Err()
	}
	return nil
}

func (s *Scheduler) writeNoop(tp *TargetPlan, emit func(Outcome) bool) error {
	res := action.Result{
		Target:  tp.Target.Label,
		Status:  action.StatusSkipped,
		Message: "no files to analyze",
	}
	if err := s.builder.WritePlaceholders(tp.Target.Label); err != nil {
		res.Status = action.StatusError
		res.Message = err.Error()
	}
	if !emit(Outcome{Result: res}) {
		return errors.New("output channel closed")
	}
	return nil
}

func (s *Scheduler) runInvocation(ctx context.Context, spec *action.Spec) Outcome {
	res := action.Result{
		Target:       spec.Target,
		Format:       spec.Format,
		Files:        len(spec.Files),
		StdoutPath:   spec.StdoutPath,
		ExitCodePath: spec.ExitCodePath,
	}

	exitCode, err := s.exec.Run(ctx, spec)
	res.ExitCode = exitCode

	var stepErr *executor.StepFailedError
	switch {
	case err == nil && exitCode == 0:
		res.Status = action.StatusPass
	case err == nil:
		// Exit-code capture: findings became data, the step succeeded.
		res.Status = action.StatusFail
		res.Message = fmt.Sprintf("linter reported findings (exit %d)", exitCode)
	case errors.As(err, &stepErr):
		res.Status = action.StatusFail
		res.Message = err.Error()
		return Outcome{Result: res, StepFailed: true}
	default:
		res.Status = action.StatusError
		res.Message = err.Error()
	}
	return Outcome{Result: res}
}
