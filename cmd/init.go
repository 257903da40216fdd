package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/templates"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local working directory",
	Long: `Init creates the local files and directories ncdeploy expects.

This command will create:
  - config/config.yaml (default payload configuration, empty credentials)
  - .env (environment variable template)
  - output/collected, output/reports, output/verdicts

Run this once when setting up a new working directory.`,
	Example: `  # Initialize in current directory
  ncdeploy init

  # Force overwrite existing files
  ncdeploy init --force`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "🔧 Initializing ncdeploy...")

		dirs := []string{
			"config",
			filepath.Join("output", "collected"),
			filepath.Join("output", "reports"),
			filepath.Join("output", "verdicts"),
		}

		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Created directory: %s\n", dir)
		}

		files := map[string][]byte{
			filepath.Join("config", "config.yaml"): templates.PayloadConfigYAML,
			".env":                                 templates.EnvFile,
		}

		for filename, content := range files {
			if _, err := os.Stat(filename); err == nil && !force {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Skipping %s (already exists, use --force to overwrite)\n", filename)
				continue
			}

			if err := os.WriteFile(filename, content, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Created %s\n", filename)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\n🎉 Initialization complete!")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\n📝 Next steps:")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "   1. Edit config/config.yaml to add platform and AI credentials")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "   2. Run 'ncdeploy local test' to verify your environment")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "   3. Run 'ncdeploy local start' for a local run, or 'ncdeploy setup <user@host>' for a remote one")

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration files")
}
