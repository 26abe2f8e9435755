package target

import (
	"fmt"
	"sort"
	"strings"
)

// FileSource selects which of a target's file sets get analyzed.
//
// The two variants mirror the two flavors of the upstream tooling: analyzing
// compiled artifacts (jars) versus analyzing declared sources directly.
type FileSource string

const (
	// FilesOutputs analyzes the target's compiled output artifacts.
	FilesOutputs FileSource = "outputs"

	// FilesSources analyzes the target's declared source files.
	FilesSources FileSource = "sources"
)

// DefaultKinds is the default rule-kind allow-list.
func DefaultKinds() []string {
	return []string{"java_binary", "java_library"}
}

// Selector decides which targets are in scope for analysis and which of
// their files get analyzed. It is a pure function of its configuration:
// no side effects, safe to share across a run.
type Selector struct {
	kinds  map[string]bool
	source FileSource
}

// NewSelector builds a Selector for the given rule-kind allow-list and file
// source. An empty kinds list falls back to DefaultKinds.
func NewSelector(kinds []string, source FileSource) (*Selector, error) {
	if source != FilesOutputs && source != FilesSources {
		return nil, fmt.Errorf("unsupported file source: %q (must be %q or %q)", source, FilesOutputs, FilesSources)
	}
	if len(kinds) == 0 {
		kinds = DefaultKinds()
	}
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		set[k] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("rule-kind allow-list is empty")
	}
	return &Selector{kinds: set, source: source}, nil
}

// InScope reports whether a target of the given rule kind should be analyzed.
func (s *Selector) InScope(kind string) bool {
	return s.kinds[kind]
}

// FilesFor returns the ordered list of files to analyze for an in-scope
// target. An empty result is not an error; it signals "nothing to lint" and
// callers take the no-op path.
func (s *Selector) FilesFor(t *Target) []string {
	if t == nil {
		return nil
	}
	var files []string
	switch s.source {
	case FilesSources:
		files = t.Srcs
	default:
		files = t.Outputs
	}
	// Copy so callers cannot alias manifest-owned slices.
	out := make([]string, len(files))
	copy(out, files)
	return out
}

// Source returns the configured file source.
func (s *Selector) Source() FileSource {
	return s.source
}

// Kinds returns the configured allow-list, for plan display.
func (s *Selector) Kinds() []string {
	out := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
