package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bugscan/internal/dist"
)

var (
	fetchDistFile   string
	fetchInstallDir string
	fetchToken      string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Install a linter distribution",
	Long: `Download a linter's binary distribution, verify its content hash, extract
it and expose its jar and config files through a tool manifest.

The distribution is declared in a YAML file: archive name, download URL (or
GitHub release coordinates), strip-prefix inside the archive, SHA-256 hash,
and globs selecting the jars and config files to expose.

Authentication (GitHub release sources only):
	Bugscan uses a GitHub access token if one is available. It prefers
	--token, then GITHUB_TOKEN, then GitHub CLI auth (gh auth token).
	Public release assets work without a token.

Examples:
  # Direct URL distribution
  bugscan fetch --dist linter.yaml --install-dir tools

  # linter.yaml
  #   name: spotlinter
  #   version: 4.8.3
  #   url: https://example.com/spotlinter-4.8.3.tgz
  #   sha256: <hex>
  #   strip_prefix: spotlinter-4.8.3
  #   launcher: bin/spotlinter
  #   jars: ["lib/*.jar"]
  #   configs: ["etc/*.xml"]
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dist.LoadDistribution(fetchDistFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		f := &dist.Fetcher{}
		if d.Release != nil {
			token, source, err := dist.ResolveAuthToken(ctx, fetchToken)
			if err != nil {
				return fmt.Errorf("resolve GitHub auth token: %w", err)
			}
			if token != "" && cfg.Runtime.Verbose {
				fmt.Fprintf(os.Stderr, "Using GitHub token from %s\n", source)
			}
			f.Releases = dist.NewGitHubReleases(ctx, token)
		}

		fmt.Fprintf(os.Stderr, "Fetching %s %s...\n", d.Name, d.Version)
		res, err := f.Fetch(ctx, d, fetchInstallDir)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s to %s\n", d.Name, d.Version, res.Dir)
		fmt.Fprintf(cmd.OutOrStdout(), "  jars:    %d\n  configs: %d\n", len(res.Manifest.Jars), len(res.Manifest.Configs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchDistFile, "dist", "", "Path to the distribution declaration YAML (required)")
	fetchCmd.Flags().StringVar(&fetchInstallDir, "install-dir", "tools", "Directory to install the distribution under")
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "GitHub access token for release sources (default: GITHUB_TOKEN, then gh auth)")
	_ = fetchCmd.MarkFlagRequired("dist")
}
