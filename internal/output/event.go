package output

import "bugscan/internal/action"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - target.started
// - invocation.result (with a nested "result" object)
// - target.finished
// - run.finished
//
// JSON mode remains an aggregate of action.Result values.
type Event struct {
	Type     string         `json:"type"`
	RunID    string         `json:"run_id,omitempty"`
	Target   string         `json:"target,omitempty"`
	Result   *action.Result `json:"result,omitempty"`
	Targets  int            `json:"targets,omitempty"`
	ExitCode int            `json:"exit_code,omitempty"`
}

func eventFromResult(r action.Result) Event {
	return Event{Type: "invocation.result", Target: r.Target, Result: &r}
}
