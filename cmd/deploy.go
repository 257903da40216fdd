package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/artifact"
	"github.com/zorak1103/ncdeploy/internal/execx"
	"github.com/zorak1103/ncdeploy/internal/notification"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <user@host>",
	Short: "Build, transfer and run the service on a remote host",
	Long: `Deploy builds the service image locally, serializes it to a compressed
artifact, transfers it over SSH, loads it into the remote container engine
and starts a fresh instance bound to the fixed port contract.

Re-running deploy converges: the previous instance is replaced, never
duplicated, and the remote layout is created automatically on first deploy.
The local artifact is removed on every exit path, success or failure.`,
	Example: `  # Deploy to a remote host
  ncdeploy deploy deploy@news.example.com

  # Deploy with command tracing
  ncdeploy deploy -v deploy@news.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}
		host := args[0]

		runner := execx.NewRunner()
		client := newSSHClient(cfg, host, runner)
		pipeline := artifact.NewPipeline(cfg, runner, client, cmd.OutOrStdout())

		notifier, nerr := notification.NewNotifier(cfg)
		if nerr != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Notifications disabled: %v\n", nerr)
		}

		started := time.Now()
		result, err := pipeline.Deploy(cmd.Context())
		took := time.Since(started)

		if notifier != nil && notifier.IsEnabled() {
			if serr := notifier.SendDeployResult(host, result.Tag, err == nil, took); serr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", serr)
			}
		}

		if err != nil {
			return err
		}

		recordHistory(host, "deploy", result.Tag, result.RemoteEngine.String())
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n🎉 Deployed %s in %s\n",
			cfg.ImageRef(result.Tag), took.Round(time.Second))
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(deployCmd)
}
