package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/docker"
	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/local"
	"github.com/zorak1103/ncdeploy/internal/runtime"
)

var (
	localWithDB    bool
	localClean     bool
	localRebuild   bool
	localForceHost bool
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Run the collector on this machine without a remote host",
	Long: `Local runs the collector on the workstation itself.

The best available strategy is picked automatically: podman with
podman-compose, docker with the compose plugin, the standalone
docker-compose binary, or a plain host process when no container
engine is usable.`,
}

var localStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the collector locally",
	Example: `  # Start with the best available strategy
  ncdeploy local start

  # Start together with a local database
  ncdeploy local start --with-db

  # Tear down any previous instance, then rebuild and start
  ncdeploy local start --clean --rebuild

  # Skip container engines and run as a host process
  ncdeploy local start --no-container`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}

		orch := local.NewOrchestrator(cfg, execx.NewRunner(), cmd.OutOrStdout())
		orch.DockerAPI = openDockerAPI(cmd)
		defer closeDockerAPI(orch.DockerAPI)

		strategy, err := orch.Start(cmd.Context(), local.Options{
			WithDB:    localWithDB,
			Clean:     localClean,
			Rebuild:   localRebuild,
			ForceHost: localForceHost,
		})
		if err != nil {
			return fmt.Errorf("local start failed: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "🎉 Collector started locally via %s\n", strategy)
		return nil
	},
}

var localStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the locally running collector",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}

		orch := local.NewOrchestrator(cfg, execx.NewRunner(), cmd.OutOrStdout())
		strategy, err := orch.Stop(cmd.Context(), localForceHost)
		if err != nil {
			return fmt.Errorf("local stop failed: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Stopped local %s instance\n", strategy)
		return nil
	},
}

var localTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the local environment without changing it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}

		orch := local.NewOrchestrator(cfg, execx.NewRunner(), cmd.OutOrStdout())
		orch.DockerAPI = openDockerAPI(cmd)
		defer closeDockerAPI(orch.DockerAPI)

		checks := orch.Preflight(cmd.Context())
		for _, c := range checks {
			icon := "✅"
			if !c.OK {
				icon = "❌"
				if !c.Fatal {
					icon = "⚠️ "
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", icon, c.Name, c.Detail)
		}

		if !local.PreflightOK(checks) {
			return fmt.Errorf("environment check failed")
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\n🎉 Environment looks good!")
		return nil
	},
}

// openDockerAPI returns a daemon client when docker is the local engine,
// nil otherwise. Verification falls back to the CLI without one.
func openDockerAPI(cmd *cobra.Command) docker.Client {
	if runtime.DetectLocal(execx.NewRunner()) != runtime.EngineDocker {
		return nil
	}
	api, err := docker.NewClient()
	if err != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Docker API unavailable, falling back to CLI: %v\n", err)
		return nil
	}
	return api
}

func closeDockerAPI(api docker.Client) {
	if api != nil {
		_ = api.Close()
	}
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(localCmd)
	localCmd.AddCommand(localStartCmd)
	localCmd.AddCommand(localStopCmd)
	localCmd.AddCommand(localTestCmd)

	localStartCmd.Flags().BoolVar(&localWithDB, "with-db", false, "also start a local database wired to the collector")
	localStartCmd.Flags().BoolVar(&localClean, "clean", false, "tear down any previous instance before starting")
	localStartCmd.Flags().BoolVar(&localRebuild, "rebuild", false, "force a fresh image build")
	localStartCmd.Flags().BoolVar(&localForceHost, "no-container", false, "skip container engines and run as a host process")
	localStopCmd.Flags().BoolVar(&localForceHost, "no-container", false, "stop the host-process instance")
}
