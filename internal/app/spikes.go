package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rowanline/inferscope/internal/analyzer"
	"github.com/rowanline/inferscope/internal/config"
	"github.com/rowanline/inferscope/internal/output"
	"github.com/spf13/cobra"
)

var spikesThreshold float64

var spikesCmd = &cobra.Command{
	Use:   "spikes [documents...]",
	Short: "Flag days whose escalation rate exceeds the threshold",
	Long: fmt.Sprintf(`Compute the daily escalation-rate rollup for the filtered table and
flag every day at or above the threshold percentage (inclusive). Days
with no known escalation flags never spike.

The threshold is a percentage in [0,100]; typical operating values are
%.0f-%.0f in steps of %.0f, default %.0f.`,
		config.SpikeThresholdMin, config.SpikeThresholdMax,
		config.SpikeThresholdStep, config.DefaultSpikeThreshold),
	RunE: runSpikes,
}

func init() {
	addFilterFlags(spikesCmd)
	spikesCmd.Flags().Float64Var(&spikesThreshold, "threshold", 0, "Escalation spike threshold percentage (default from config)")
	rootCmd.AddCommand(spikesCmd)
}

func runSpikes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	table, err := loadTable(cfg, args)
	if err != nil {
		return err
	}

	sel, err := buildSelection(table)
	if err != nil {
		return err
	}

	threshold := spikesThreshold
	if !cmd.Flags().Changed("threshold") {
		threshold = cfg.SpikeThreshold
	}

	view := analyzer.Apply(table, sel)
	daily := analyzer.ComputeDailyRollup(view)
	spikes := analyzer.DetectSpikes(daily, threshold)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"threshold_pct": threshold,
			"spikes":        spikes,
		})
	}

	fmt.Println(output.Section("Escalation Spikes"))

	if len(spikes) == 0 {
		fmt.Printf(" %s\n\n",
			output.StyleSuccess.Render(fmt.Sprintf("No escalation spikes detected above %.0f%%.", threshold)))
		return nil
	}

	tbl := output.NewTable("Date", "Sessions", "Escalation %")
	for _, s := range spikes {
		tbl.AddRow(s.Date, fmt.Sprintf("%d", s.Sessions), fmt.Sprintf("%.1f", s.EscalationPct))
	}
	tbl.Print()
	fmt.Println()

	return nil
}
