package dist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestDistribution_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dist    Distribution
		wantErr string
	}{
		{
			name: "url_source_ok",
			dist: Distribution{Name: "linter", URL: "https://example.com/linter.zip", SHA256: goodSHA},
		},
		{
			name: "release_source_ok",
			dist: Distribution{
				Name:    "linter",
				Release: &ReleaseSource{Owner: "acme", Repo: "linter", Asset: "linter-*.tgz"},
				SHA256:  goodSHA,
			},
		},
		{
			name:    "missing_name",
			dist:    Distribution{URL: "https://example.com/x.zip", SHA256: goodSHA},
			wantErr: "name is required",
		},
		{
			name:    "missing_sha256",
			dist:    Distribution{Name: "linter", URL: "https://example.com/x.zip"},
			wantErr: "sha256 is required",
		},
		{
			name:    "short_sha256",
			dist:    Distribution{Name: "linter", URL: "https://example.com/x.zip", SHA256: "abc123"},
			wantErr: "64 hex characters",
		},
		{
			name:    "neither_url_nor_release",
			dist:    Distribution{Name: "linter", SHA256: goodSHA},
			wantErr: "exactly one of url or release",
		},
		{
			name: "both_url_and_release",
			dist: Distribution{
				Name:    "linter",
				URL:     "https://example.com/x.zip",
				Release: &ReleaseSource{Owner: "acme", Repo: "linter", Asset: "x.zip"},
				SHA256:  goodSHA,
			},
			wantErr: "exactly one of url or release",
		},
		{
			name: "release_missing_asset",
			dist: Distribution{
				Name:    "linter",
				Release: &ReleaseSource{Owner: "acme", Repo: "linter"},
				SHA256:  goodSHA,
			},
			wantErr: "release requires owner, repo and asset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dist.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() returned error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDistribution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.yaml")
	decl := `
name: linter
version: 4.8.3
url: https://example.com/linter-4.8.3.tgz
sha256: ` + goodSHA + `
strip_prefix: linter-4.8.3
jars:
  - "lib/*.jar"
configs:
  - "etc/*.xml"
launcher: bin/linter
`
	if err := os.WriteFile(path, []byte(decl), 0o644); err != nil {
		t.Fatalf("write declaration: %v", err)
	}

	d, err := LoadDistribution(path)
	if err != nil {
		t.Fatalf("LoadDistribution returned error: %v", err)
	}
	if d.Name != "linter" || d.Version != "4.8.3" {
		t.Errorf("unexpected identity: %+v", d)
	}
	if d.StripPrefix != "linter-4.8.3" || d.Launcher != "bin/linter" {
		t.Errorf("unexpected layout fields: %+v", d)
	}
	if len(d.Jars) != 1 || d.Jars[0] != "lib/*.jar" {
		t.Errorf("unexpected jars: %v", d.Jars)
	}
}

func TestLoadDistribution_InvalidDeclaration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.yaml")
	if err := os.WriteFile(path, []byte("name: linter\n"), 0o644); err != nil {
		t.Fatalf("write declaration: %v", err)
	}
	if _, err := LoadDistribution(path); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestWriteToolManifest_ResolvesGlobs(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"lib/linter.jar", "lib/annotations.jar", "etc/default.xml", "README"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	d := &Distribution{
		Name:    "linter",
		Version: "1.0.0",
		URL:     "https://example.com/x.zip",
		SHA256:  goodSHA,
		Jars:    []string{"lib/*.jar"},
		Configs: []string{"etc/*.xml"},
	}
	m, err := writeToolManifest(d, root)
	if err != nil {
		t.Fatalf("writeToolManifest returned error: %v", err)
	}

	wantJars := []string{"lib/annotations.jar", "lib/linter.jar"}
	if len(m.Jars) != 2 || m.Jars[0] != wantJars[0] || m.Jars[1] != wantJars[1] {
		t.Errorf("Jars = %v, want %v", m.Jars, wantJars)
	}
	if len(m.Configs) != 1 || m.Configs[0] != "etc/default.xml" {
		t.Errorf("Configs = %v", m.Configs)
	}
	if _, err := os.Stat(filepath.Join(root, "tool.yaml")); err != nil {
		t.Errorf("tool.yaml missing: %v", err)
	}
}
