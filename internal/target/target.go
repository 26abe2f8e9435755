package target

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Target is a read-only view of one build target as declared in the build
// manifest. The manifest plays the role of the host build graph: bugscan
// never mutates targets, it only attaches analysis actions to them.
type Target struct {
	// Label uniquely identifies the target within the manifest
	// (e.g. "//java/com/acme:server").
	Label string `yaml:"label"`

	// Kind is the rule kind (e.g. "java_library", "java_binary", "java_test").
	Kind string `yaml:"kind"`

	// Srcs are the declared source files, relative to the manifest root.
	Srcs []string `yaml:"srcs,omitempty"`

	// Outputs are the compiled artifacts (jars), relative to the manifest root.
	Outputs []string `yaml:"outputs,omitempty"`

	// Deps are labels of direct dependencies.
	Deps []string `yaml:"deps,omitempty"`
}

// Manifest is the parsed build manifest: the set of targets bugscan can
// traverse.
type Manifest struct {
	Targets []Target `yaml:"targets"`

	byLabel map[string]*Target
}

// LoadManifest reads and validates a YAML build manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(raw)
}

// ParseManifest parses and validates manifest bytes.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	m.byLabel = make(map[string]*Target, len(m.Targets))
	for i := range m.Targets {
		t := &m.Targets[i]
		if t.Label == "" {
			return fmt.Errorf("manifest target %d: label is required", i)
		}
		if t.Kind == "" {
			return fmt.Errorf("manifest target %q: kind is required", t.Label)
		}
		if _, dup := m.byLabel[t.Label]; dup {
			return fmt.Errorf("manifest: duplicate target label %q", t.Label)
		}
		m.byLabel[t.Label] = t
	}

	for i := range m.Targets {
		t := &m.Targets[i]
		for _, dep := range t.Deps {
			if _, ok := m.byLabel[dep]; !ok {
				return fmt.Errorf("manifest target %q: unknown dep %q", t.Label, dep)
			}
		}
	}

	return m.checkAcyclic()
}

func (m *Manifest) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(m.Targets))

	var visit func(label string) error
	visit = func(label string) error {
		switch state[label] {
		case visiting:
			return fmt.Errorf("manifest: dependency cycle through %q", label)
		case done:
			return nil
		}
		state[label] = visiting
		for _, dep := range m.byLabel[label].Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[label] = done
		return nil
	}

	for i := range m.Targets {
		if err := visit(m.Targets[i].Label); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the target with the given label, if declared.
func (m *Manifest) Lookup(label string) (*Target, bool) {
	t, ok := m.byLabel[label]
	return t, ok
}

// Labels returns all declared labels, sorted.
func (m *Manifest) Labels() []string {
	labels := make([]string, 0, len(m.byLabel))
	for l := range m.byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Walk visits roots and their transitive deps in postorder, each target
// exactly once. This is the aspect traversal: analysis actions attach to
// every visited target, not just the requested roots.
//
// Empty roots means "all targets in the manifest" (sorted by label, for a
// deterministic plan).
func (m *Manifest) Walk(roots []string) ([]*Target, error) {
	if len(roots) == 0 {
		roots = m.Labels()
	}

	seen := make(map[string]bool, len(m.Targets))
	var order []*Target

	var visit func(label string) error
	visit = func(label string) error {
		if seen[label] {
			return nil
		}
		t, ok := m.byLabel[label]
		if !ok {
			return fmt.Errorf("unknown target %q", label)
		}
		seen[label] = true
		for _, dep := range t.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, t)
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return order, nil
}
