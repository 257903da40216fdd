package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/runtime"
)

var statusCmd = &cobra.Command{
	Use:   "status <user@host>",
	Short: "Report the instance state on a remote host",
	Long: `Status reads the typed lifecycle state of the named instance on the
remote host: absent, stopped, running or restarting. Read-only.`,
	Example: `  # Check the instance state
  ncdeploy status deploy@news.example.com`,
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

		state := controller.Status(ctx)
		icon := map[runtime.InstanceState]string{
			runtime.StateRunning:    "✅",
			runtime.StateRestarting: "🔄",
			runtime.StateStopped:    "⏸ ",
			runtime.StateAbsent:     "∅ ",
		}[state]

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s: %s (runtime: %s)\n",
			icon, cfg.Container.Name, host, state, controller.Engine())
		if state == runtime.StateRunning {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   Port %d → %d\n",
				cfg.Container.HostPort, cfg.Container.ContainerPort)
		}
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
}
