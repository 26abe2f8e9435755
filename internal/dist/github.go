package dist

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

// ReleaseResolver resolves a GitHub release asset to a download URL.
type ReleaseResolver interface {
	ResolveAssetURL(ctx context.Context, src *ReleaseSource) (string, error)
}

// GitHubReleases resolves release assets via the GitHub API. An auth token
// is optional for public repos but raises the rate limit.
type GitHubReleases struct {
	client *github.Client
}

// NewGitHubReleases builds a resolver. An empty token means unauthenticated
// access.
func NewGitHubReleases(ctx context.Context, token string) *GitHubReleases {
	var httpClient *http.Client
	if strings.TrimSpace(token) != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	return &GitHubReleases{client: github.NewClient(httpClient)}
}

// NewGitHubReleasesWithClient is a test seam for pointing the resolver at a
// fake API server.
func NewGitHubReleasesWithClient(client *github.Client) *GitHubReleases {
	return &GitHubReleases{client: client}
}

// ResolveAssetURL finds the release (by tag, or latest) and returns the
// browser download URL of the first asset matching the pattern.
func (g *GitHubReleases) ResolveAssetURL(ctx context.Context, src *ReleaseSource) (string, error) {
	if src == nil {
		return "", fmt.Errorf("release source is nil")
	}

	var (
		release *github.RepositoryRelease
		err     error
	)
	if src.Tag != "" {
		release, _, err = g.client.Repositories.GetReleaseByTag(ctx, src.Owner, src.Repo, src.Tag)
	} else {
		release, _, err = g.client.Repositories.GetLatestRelease(ctx, src.Owner, src.Repo)
	}
	if err != nil {
		return "", fmt.Errorf("resolve release %s/%s: %w", src.Owner, src.Repo, err)
	}

	var names []string
	for _, asset := range release.Assets {
		name := asset.GetName()
		names = append(names, name)
		matched, matchErr := path.Match(src.Asset, name)
		if matchErr != nil {
			return "", fmt.Errorf("bad asset pattern %q: %w", src.Asset, matchErr)
		}
		if matched || name == src.Asset {
			if url := asset.GetBrowserDownloadURL(); url != "" {
				return url, nil
			}
			return "", fmt.Errorf("asset %s has no download URL", name)
		}
	}
	return "", fmt.Errorf("no asset matching %q in release %s (assets: %s)",
		src.Asset, release.GetTagName(), strings.Join(names, ", "))
}
