// Package app contains the Cobra command tree for inferscope.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "inferscope",
	Short: "Analytics over chat-session inference data",
	Long: `inferscope loads chat-session transcripts enriched with per-session
inference metadata (intent, sentiment, urgency, escalation, risk flags),
normalizes them into a flat analytical table, and answers analyst
queries: filtered session grids, grouped distributions, daily rollups,
and escalation-spike alerts.

Run 'inferscope report' for the full picture.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("inferscope", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  report    Full analytics report: KPIs, distributions, rollups, spikes")
		fmt.Println("  sessions  Session-level detail grid for the current filters")
		fmt.Println("  spikes    Flag days whose escalation rate exceeds the threshold")
		fmt.Println("  track     Snapshot aggregate metrics and compare over time")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/inferscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
}
