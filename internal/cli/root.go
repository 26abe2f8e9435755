package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bugscan",
	Short: "Run an external bug-pattern linter over Java build targets",
	Long: `Bugscan walks a dependency graph of Java build targets and runs an external
bug-pattern linter over each in-scope target, recording the linter's output
and exit code as per-target files.

Bugscan does not analyze code itself: the linter is an external executable,
and the build manifest describes the targets. Bugscan is the glue between
the two.

Examples:
	# Show available commands and global flags
	bugscan --help

	# Analyze every java_library / java_binary in a manifest
	bugscan check --manifest build.yaml --tool ./tools/linter --exclusion-filter filter.xml

	# Install a linter distribution
	bugscan fetch --dist linter.yaml --install-dir tools

	# Print build info
	bugscan version

Output:
	By default, commands write human-readable output to stdout.
	The check command supports structured output via emitter flags (see
	"bugscan check --help").`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints scheduler details and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
