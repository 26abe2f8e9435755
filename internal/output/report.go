package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bugscan/internal/action"
)

// ReportSink accumulates invocation results and writes a Markdown summary
// on Close. Unlike the streaming sinks it holds everything in memory; lint
// runs are bounded by the manifest size, so that is fine.
type ReportSink struct {
	path    string
	mu      sync.Mutex
	runID   string
	results []action.Result
	started time.Time
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	return &ReportSink{path: path, started: time.Now()}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t := v.(type) {
	case Event:
		if t.Type == "run.started" {
			s.runID = t.RunID
		}
	case action.Result:
		s.results = append(s.results, t)
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Lint Report\n\n")
	if s.runID != "" {
		fmt.Fprintf(&b, "Run: `%s`  \n", s.runID)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", s.started.Format(time.RFC3339))

	counts := map[action.Status]int{}
	for _, r := range s.results {
		counts[r.Status]++
	}
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Status | Count |\n|---|---|\n")
	for _, st := range []action.Status{action.StatusPass, action.StatusFail, action.StatusError, action.StatusSkipped} {
		fmt.Fprintf(&b, "| %s | %d |\n", st, counts[st])
	}
	b.WriteString("\n")

	results := make([]action.Result, len(s.results))
	copy(results, s.results)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Target != results[j].Target {
			return results[i].Target < results[j].Target
		}
		return results[i].Format < results[j].Format
	})

	b.WriteString("## Invocations\n\n")
	b.WriteString("| Target | Format | Status | Exit | Output |\n|---|---|---|---|---|\n")
	for _, r := range results {
		out := r.StdoutPath
		if out != "" {
			out = fmt.Sprintf("`%s`", out)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n", r.Target, r.Format, r.Status, r.ExitCode, out)
	}
	b.WriteString("\n")

	var findings []action.Result
	for _, r := range results {
		if r.Status == action.StatusFail || r.Status == action.StatusError {
			findings = append(findings, r)
		}
	}
	if len(findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, r := range findings {
			fmt.Fprintf(&b, "- **%s** (%s): %s", r.Target, r.Format, r.Status)
			if r.Message != "" {
				fmt.Fprintf(&b, ": %s", r.Message)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return os.WriteFile(s.path, []byte(b.String()), 0o644)
}
