package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/importer"
)

var importDataCmd = &cobra.Command{
	Use:   "import-data <user@host> [local-path]",
	Short: "Import a local output tree into a running remote deployment",
	Long: `Import-data packages a local directory tree, ships it to the remote
staging area and extracts it into the remote output layout. Bundles are
classified by their top-level subdirectories (collected, reports,
verdicts); anything else lands as a generic import with a listing.

The target instance must be running: imports are validated against a live
service so data never lands where nothing will serve it.`,
	Example: `  # Import the conventional local output directory
  ncdeploy import-data deploy@news.example.com

  # Import a specific tree
  ncdeploy import-data deploy@news.example.com ./output`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}
		host := args[0]
		localPath := cfg.Local.OutputDir
		if len(args) == 2 {
			localPath = args[1]
		}

		runner := execx.NewRunner()
		client := newSSHClient(cfg, host, runner)
		imp := importer.NewImporter(cfg, client, cmd.OutOrStdout())

		result, err := imp.Import(cmd.Context(), localPath)
		if err != nil {
			return err
		}

		recordHistory(host, "import-data", "", "")

		if result.Generic {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✅ Imported (no known classification matched); remote output now contains:")
			if result.Listing != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Listing)
			}
			return nil
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported classifications: %s\n", strings.Join(result.Kinds, ", "))
		for _, kind := range result.Kinds {
			if kind == "reports" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   📊 reports: %d JSON file(s)\n", result.JSONReports)
			}
		}
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(importDataCmd)
}
