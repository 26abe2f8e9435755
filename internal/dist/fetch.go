package dist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher downloads, verifies and installs distributions.
type Fetcher struct {
	// HTTPClient downloads archives. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Releases resolves GitHub release assets to download URLs. Only needed
	// for distributions declared with a release source.
	Releases ReleaseResolver
}

// InstallResult describes a completed install.
type InstallResult struct {
	// Dir is the install root containing the extracted tree and tool.yaml.
	Dir string

	// Manifest is the written tool manifest.
	Manifest *ToolManifest

	// ResolvedURL is the URL the archive was downloaded from.
	ResolvedURL string
}

// Fetch downloads the distribution archive, verifies its SHA-256, extracts
// it under installRoot/<name> applying the strip prefix, marks the launcher
// executable and writes tool.yaml.
//
// There are no retries: the archive at a given URL+hash is immutable, and a
// hash mismatch is a declaration bug, not a transient condition.
func (f *Fetcher) Fetch(ctx context.Context, d *Distribution, installRoot string) (*InstallResult, error) {
	if d == nil {
		return nil, fmt.Errorf("distribution is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	url := d.URL
	if d.Release != nil {
		if f.Releases == nil {
			return nil, fmt.Errorf("distribution %s: release source declared but no release resolver configured", d.Name)
		}
		resolved, err := f.Releases.ResolveAssetURL(ctx, d.Release)
		if err != nil {
			return nil, fmt.Errorf("distribution %s: %w", d.Name, err)
		}
		url = resolved
	}

	archivePath, err := f.download(ctx, url, d.Name)
	if err != nil {
		return nil, fmt.Errorf("distribution %s: %w", d.Name, err)
	}
	defer os.Remove(archivePath)

	if err := verifySHA256(archivePath, d.SHA256); err != nil {
		return nil, fmt.Errorf("distribution %s: %w", d.Name, err)
	}

	dir := filepath.Join(installRoot, d.Name)
	// Reinstall from scratch so a previous partial extract can't leak stale
	// files into the tool manifest.
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("distribution %s: clean install dir: %w", d.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("distribution %s: create install dir: %w", d.Name, err)
	}

	if err := extractArchive(archivePath, dir, d.StripPrefix); err != nil {
		return nil, fmt.Errorf("distribution %s: %w", d.Name, err)
	}

	if d.Launcher != "" {
		launcher := filepath.Join(dir, filepath.FromSlash(d.Launcher))
		if err := os.Chmod(launcher, 0o755); err != nil {
			return nil, fmt.Errorf("distribution %s: mark launcher executable: %w", d.Name, err)
		}
	}

	manifest, err := writeToolManifest(d, dir)
	if err != nil {
		return nil, fmt.Errorf("distribution %s: %w", d.Name, err)
	}

	return &InstallResult{Dir: dir, Manifest: manifest, ResolvedURL: url}, nil
}

func (f *Fetcher) download(ctx context.Context, url, name string) (string, error) {
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "bugscan-"+name+"-*"+archiveExt(url))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download %s: %w", url, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", closeErr
	}
	return tmp.Name(), nil
}

func archiveExt(url string) string {
	switch {
	case strings.HasSuffix(url, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(url, ".tgz"):
		return ".tgz"
	default:
		return ".zip"
	}
}

func verifySHA256(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive for verification: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash archive: %w", err)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("archive hash mismatch: got %s, want %s", got, want)
	}
	return nil
}
