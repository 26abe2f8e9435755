// Package dist registers an external linter's binary distribution as a
// local, importable tool: download a versioned archive, verify its content
// hash, extract it, and write a manifest exposing the jar and config files.
package dist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Distribution declares one fetchable linter distribution. Pure data; the
// fetch itself happens in Fetch.
type Distribution struct {
	// Name identifies the tool (directory name under the install root).
	Name string `yaml:"name"`

	// Version is the tool version, recorded in the tool manifest.
	Version string `yaml:"version"`

	// URL is the archive download URL. Mutually exclusive with Release.
	URL string `yaml:"url,omitempty"`

	// Release fetches the archive from a GitHub release asset instead of a
	// direct URL.
	Release *ReleaseSource `yaml:"release,omitempty"`

	// SHA256 is the required content hash of the archive, hex encoded.
	SHA256 string `yaml:"sha256"`

	// StripPrefix is removed from every path inside the archive.
	StripPrefix string `yaml:"strip_prefix,omitempty"`

	// Jars and Configs are glob patterns (relative to the extracted root)
	// selecting the files the tool manifest exposes.
	Jars    []string `yaml:"jars,omitempty"`
	Configs []string `yaml:"configs,omitempty"`

	// Launcher is the path of the executable entry point inside the
	// extracted tree. It gets the executable bit on install.
	Launcher string `yaml:"launcher,omitempty"`
}

// ReleaseSource locates a GitHub release asset.
type ReleaseSource struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	// Tag is the release tag; empty means the latest release.
	Tag string `yaml:"tag,omitempty"`
	// Asset matches the asset file name (path.Match pattern or exact name).
	Asset string `yaml:"asset"`
}

func (d *Distribution) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("distribution: name is required")
	}
	if strings.TrimSpace(d.SHA256) == "" {
		return fmt.Errorf("distribution %s: sha256 is required", d.Name)
	}
	if len(d.SHA256) != 64 {
		return fmt.Errorf("distribution %s: sha256 must be 64 hex characters", d.Name)
	}
	hasURL := strings.TrimSpace(d.URL) != ""
	hasRelease := d.Release != nil
	if hasURL == hasRelease {
		return fmt.Errorf("distribution %s: exactly one of url or release is required", d.Name)
	}
	if hasRelease {
		if d.Release.Owner == "" || d.Release.Repo == "" || d.Release.Asset == "" {
			return fmt.Errorf("distribution %s: release requires owner, repo and asset", d.Name)
		}
	}
	return nil
}

// LoadDistribution reads a distribution declaration from a YAML file.
func LoadDistribution(path string) (*Distribution, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read distribution file: %w", err)
	}
	var d Distribution
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse distribution file: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ToolManifest is written next to the extracted tree and exposes the
// installed files to consumers.
type ToolManifest struct {
	Name     string   `yaml:"name"`
	Version  string   `yaml:"version"`
	SHA256   string   `yaml:"sha256"`
	Launcher string   `yaml:"launcher,omitempty"`
	Jars     []string `yaml:"jars"`
	Configs  []string `yaml:"configs"`
}

// writeToolManifest resolves the jar/config globs against the extracted
// tree and writes tool.yaml at its root.
func writeToolManifest(d *Distribution, root string) (*ToolManifest, error) {
	jars, err := resolveGlobs(root, d.Jars)
	if err != nil {
		return nil, err
	}
	configs, err := resolveGlobs(root, d.Configs)
	if err != nil {
		return nil, err
	}

	m := &ToolManifest{
		Name:     d.Name,
		Version:  d.Version,
		SHA256:   d.SHA256,
		Launcher: d.Launcher,
		Jars:     jars,
		Configs:  configs,
	}

	raw, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal tool manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, "tool.yaml"), raw, 0o644); err != nil {
		return nil, fmt.Errorf("write tool manifest: %w", err)
	}
	return m, nil
}

func resolveGlobs(root string, patterns []string) ([]string, error) {
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pat))
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pat, err)
		}
		for _, m := range matches {
			rel, err := filepath.Rel(root, m)
			if err != nil {
				return nil, err
			}
			out = append(out, filepath.ToSlash(rel))
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out, nil
}
