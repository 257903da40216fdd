package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/remote"
)

var setupCmd = &cobra.Command{
	Use:   "setup <user@host>",
	Short: "Create the remote directory layout and default configuration",
	Long: `Setup prepares a remote host for deployment: the deployment directory
with config/, output/{collected,reports,verdicts} and data/ staging, plus a
default configuration file with empty credential fields.

Idempotent: existing directories are left alone and an existing
configuration file is never overwritten.`,
	Example: `  # Prepare a fresh host
  ncdeploy setup deploy@news.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}
		host := args[0]

		runner := execx.NewRunner()
		client := newSSHClient(cfg, host, runner)
		ctx := cmd.Context()

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "🔌 Checking connectivity to %s...\n", host)
		if err := client.Probe(ctx); err != nil {
			return err
		}

		layout := remote.NewLayout(cfg, client)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "📁 Creating %s layout...\n", cfg.RemotePath())
		if err := layout.Ensure(ctx); err != nil {
			return err
		}

		recordHistory(host, "setup", "", "")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is ready for deployment\n", host)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\n📝 Next steps:")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   1. Edit %s on the host to add credentials\n", cfg.RemotePath("config", "config.yaml"))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   2. Run 'ncdeploy deploy %s'\n", host)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(setupCmd)
}
