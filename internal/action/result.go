package action

type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusSkipped Status = "SKIPPED"
	StatusError   Status = "ERROR"
)

// Result is the outcome of one invocation (or of the no-op path) for a
// target. It is what the output sinks consume.
type Result struct {
	Target  string `json:"target"`
	Format  Format `json:"format,omitempty"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	// ExitCode is the linter's exit status. Meaningful for PASS/FAIL.
	ExitCode int `json:"exit_code"`

	// Files is how many files were analyzed.
	Files int `json:"files,omitempty"`

	// StdoutPath and ExitCodePath locate the materialized outputs.
	StdoutPath   string `json:"stdout_path,omitempty"`
	ExitCodePath string `json:"exit_code_path,omitempty"`
}
