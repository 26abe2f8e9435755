package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bugscan/internal/target"
)

var (
	targetsManifest  string
	targetsListQuiet bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Inspect build manifest targets",
	Long: `Inspect the targets declared in a build manifest.

Examples:
  # List all targets with kinds and file counts
  bugscan targets list --manifest build.yaml
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List targets declared in a manifest",
	Long: `List every target in the manifest, sorted by label.

Examples:
  bugscan targets list --manifest build.yaml
  bugscan targets list --manifest build.yaml -q
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := target.LoadManifest(targetsManifest)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		for _, label := range m.Labels() {
			if targetsListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), label)
				continue
			}
			t, _ := m.Lookup(label)
			bold.Fprintf(cmd.OutOrStdout(), "%s\n", label)
			fmt.Fprintf(cmd.OutOrStdout(), "  kind: %s  srcs: %d  outputs: %d  deps: %d\n",
				t.Kind, len(t.Srcs), len(t.Outputs), len(t.Deps))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsListCmd)
	targetsCmd.PersistentFlags().StringVar(&targetsManifest, "manifest", "", "Path to the YAML build manifest (required)")
	_ = targetsCmd.MarkPersistentFlagRequired("manifest")
	targetsListCmd.Flags().BoolVarP(&targetsListQuiet, "quiet", "q", false, "Only print target labels")
}
