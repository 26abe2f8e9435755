package action

import (
	"fmt"
	"strings"
)

// Filter narrows what the external linter reports. Exactly one of the two
// variants is attached to an invocation:
//
//   - Rulesets: one or more ruleset files; only the listed rules run.
//   - ExclusionFilter: exactly one file of findings to suppress.
//
// The variants are mutually exclusive by construction (sealed interface),
// not by convention between two optional fields.
type Filter interface {
	// Paths returns the filter's file references, in flag order. These are
	// declared action inputs alongside the files under analysis.
	Paths() []string

	// Args returns the linter command-line flags selecting this filter.
	Args() []string

	sealed()
}

// Rulesets is the inclusion variant: run only the rules listed in the given
// ruleset files.
type Rulesets struct {
	files []string
}

// NewRulesets builds the inclusion variant. At least one ruleset file is
// required.
func NewRulesets(files []string) (Rulesets, error) {
	var clean []string
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		clean = append(clean, f)
	}
	if len(clean) == 0 {
		return Rulesets{}, fmt.Errorf("at least one ruleset file is required")
	}
	return Rulesets{files: clean}, nil
}

func (r Rulesets) Paths() []string {
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

func (r Rulesets) Args() []string {
	args := make([]string, 0, 2*len(r.files))
	for _, f := range r.files {
		args = append(args, "-include", f)
	}
	return args
}

func (Rulesets) sealed() {}

// ExclusionFilter is the suppression variant: report everything except the
// findings matched by the single filter file.
type ExclusionFilter struct {
	file string
}

// NewExclusionFilter builds the suppression variant.
func NewExclusionFilter(file string) (ExclusionFilter, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return ExclusionFilter{}, fmt.Errorf("exclusion filter file is required")
	}
	return ExclusionFilter{file: file}, nil
}

func (e ExclusionFilter) Paths() []string {
	return []string{e.file}
}

func (e ExclusionFilter) Args() []string {
	return []string{"-exclude", e.file}
}

func (ExclusionFilter) sealed() {}
