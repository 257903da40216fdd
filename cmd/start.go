package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/execx"
)

var startCmd = &cobra.Command{
	Use:   "start <user@host>",
	Short: "Start the stopped service instance on a remote host",
	Long: `Start transitions a stopped instance to running and verifies the state
afterwards. Starting an already running instance is a no-op reported as
success. Starting an instance that was never deployed is an error; start
never creates anything implicitly.`,
	Example: `  # Start the instance
  ncdeploy start deploy@news.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}
		host := args[0]
		ctx := cmd.Context()

		controller, _, err := remoteController(ctx, cfg, host, execx.NewRunner())
		if err != nil {
			return err
		}

		outcome, err := controller.Start(ctx)
		if err != nil {
			return err
		}

		if !outcome.Changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ℹ️  Container %s on %s: %s\n",
				cfg.Container.Name, host, outcome.Note)
			return nil
		}

		recordHistory(host, "start", "", controller.Engine().String())
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Container %s is running on %s (port %d)\n",
			cfg.Container.Name, host, cfg.Container.HostPort)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(startCmd)
}
