package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/execx"
)

var stopCmd = &cobra.Command{
	Use:   "stop <user@host>",
	Short: "Stop the running service instance on a remote host",
	Long: `Stop transitions a running instance to stopped and verifies the state
afterwards. Stopping an already stopped instance, or one that does not
exist, is a no-op reported as success.`,
	Example: `  # Stop the instance
  ncdeploy stop deploy@news.example.com`,
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

		outcome, err := controller.Stop(ctx)
		if err != nil {
			return err
		}

		if !outcome.Changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ℹ️  Container %s on %s: %s\n",
				cfg.Container.Name, host, outcome.Note)
			return nil
		}

		recordHistory(host, "stop", "", controller.Engine().String())
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Container %s stopped on %s\n", cfg.Container.Name, host)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(stopCmd)
}
