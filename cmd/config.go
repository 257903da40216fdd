package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tool settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Long: `Show prints the settings the tool is running with after merging the
settings file, environment variables (NCDEPLOY_ prefix) and defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireConfig(cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		source := cfg.ConfigFilePath
		if source == "" {
			source = "(defaults, no settings file found)"
		}
		_, _ = fmt.Fprintf(out, "⚙️  Settings source: %s\n\n", source)

		_, _ = fmt.Fprintln(out, "Image:")
		_, _ = fmt.Fprintf(out, "  name:          %s\n", cfg.Image.Name)
		tag := cfg.Image.Tag
		if tag == "" {
			tag = "(derived from git HEAD, fallback latest)"
		}
		_, _ = fmt.Fprintf(out, "  tag:           %s\n", tag)
		_, _ = fmt.Fprintf(out, "  build_context: %s\n", cfg.Image.BuildContext)

		_, _ = fmt.Fprintln(out, "\nContainer:")
		_, _ = fmt.Fprintf(out, "  name:           %s\n", cfg.Container.Name)
		_, _ = fmt.Fprintf(out, "  host_port:      %d\n", cfg.Container.HostPort)
		_, _ = fmt.Fprintf(out, "  container_port: %d\n", cfg.Container.ContainerPort)

		_, _ = fmt.Fprintln(out, "\nRemote:")
		_, _ = fmt.Fprintf(out, "  dir:             %s\n", cfg.Remote.Dir)
		_, _ = fmt.Fprintf(out, "  connect_timeout: %ds\n", cfg.Remote.ConnectTimeoutSeconds)

		_, _ = fmt.Fprintln(out, "\nLocal:")
		_, _ = fmt.Fprintf(out, "  output_dir:     %s\n", cfg.Local.OutputDir)
		_, _ = fmt.Fprintf(out, "  config_file:    %s\n", cfg.Local.ConfigFile)
		_, _ = fmt.Fprintf(out, "  python_bin:     %s\n", cfg.Local.PythonBin)
		_, _ = fmt.Fprintf(out, "  settle_seconds: %d\n", cfg.Local.SettleSeconds)
		_, _ = fmt.Fprintf(out, "  database_name:  %s\n", cfg.Local.DatabaseName)

		_, _ = fmt.Fprintln(out, "\nNotification:")
		_, _ = fmt.Fprintf(out, "  enabled: %v\n", cfg.Notification.Enabled)
		url := "(not set)"
		if cfg.Notification.ShoutrrURL != "" {
			url = "(set)" // never print the URL, it embeds credentials
		}
		_, _ = fmt.Fprintf(out, "  url:     %s\n", url)

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
