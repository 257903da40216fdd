package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zorak1103/ncdeploy/internal/state"
)

var historyHost string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded deployment actions",
	Long: `History tracks the last action performed against each host: deploys,
starts, stops, setups and data imports. Records are informational only
and never influence what an operation does.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the last recorded action per host",
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := state.Load(historyFile)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		hosts := h.GetAllHosts()
		if len(hosts) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "📭 No deployment history recorded yet")
			return nil
		}

		names := make([]string, 0, len(hosts))
		for name := range hosts {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "HOST\tACTION\tTAG\tRUNTIME\tWHEN")
		for _, name := range names {
			rec := hosts[name]
			tag := rec.ImageTag
			if tag == "" {
				tag = "-"
			}
			rt := rec.Runtime
			if rt == "" {
				rt = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				name, rec.LastAction, tag, rt, rec.Time.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the deployment history",
	Example: `  # Forget everything
  ncdeploy history clear

  # Forget a single host
  ncdeploy history clear --host deploy@news.example.com`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := state.Load(historyFile)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if historyHost != "" {
			if !h.Remove(historyHost) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ℹ️  No record for %s\n", historyHost)
				return nil
			}
			if err := h.Save(); err != nil {
				return fmt.Errorf("failed to save history: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed record for %s\n", historyHost)
			return nil
		}

		count := h.Count()
		if err := h.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Cleared %d record(s)\n", count)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyClearCmd.Flags().StringVar(&historyHost, "host", "", "clear only the record for this host")
}
