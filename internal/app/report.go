package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rowanline/inferscope/internal/analyzer"
	"github.com/rowanline/inferscope/internal/config"
	"github.com/rowanline/inferscope/internal/output"
	"github.com/spf13/cobra"
)

var reportThreshold float64

var reportCmd = &cobra.Command{
	Use:   "report [documents...]",
	Short: "Full analytics report: KPIs, distributions, rollups, spikes",
	Long: `Load the configured inference documents, apply the active filters, and
render the complete analytics picture: headline KPIs, intent and
sentiment distributions, risk and escalation breakdowns, daily trends,
and the escalation spike alert panel.

Input documents come from positional arguments or the data_files config
setting. Missing files are skipped with a warning; only a fully empty
load aborts.`,
	RunE: runReport,
}

func init() {
	addFilterFlags(reportCmd)
	reportCmd.Flags().Float64Var(&reportThreshold, "threshold", 0, "Escalation spike threshold percentage (default from config)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	threshold := reportThreshold
	if !cmd.Flags().Changed("threshold") {
		threshold = cfg.SpikeThreshold
	}

	report := analyzer.Recompute(table, sel, threshold)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	renderKPIs(report.KPI)
	renderIntentAnalytics(report)
	renderSentimentUrgency(report)
	renderRiskEscalation(report)
	renderDailyRollup(report.Daily)
	renderDailyBySource(report.DailyBySource)
	renderSpikePanel(report.Spikes, report.ThresholdPct)

	return nil
}

func renderKPIs(kpi analyzer.KPISummary) {
	fmt.Println(output.Section("Session Overview"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Total sessions"),
		output.StyleValue.Render(fmt.Sprintf("%d", kpi.TotalSessions)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Escalation rate"),
		output.StyleValue.Render(formatPct(kpi.EscalationRatePct)))

	if len(kpi.SessionsBySource) > 0 {
		fmt.Printf("\n %s\n", output.StyleMuted.Render("Sessions by source:"))
		for _, kv := range sortMapByValue(kpi.SessionsBySource) {
			fmt.Printf("   %s %s\n",
				output.StyleLabel.Render(displayCategory(kv.key)),
				output.StyleValue.Render(fmt.Sprintf("%d", kv.value)))
		}
	}

	fmt.Println()
}

func renderIntentAnalytics(report analyzer.Report) {
	fmt.Println(output.Section("Intent Analytics"))

	if len(report.CountsByIntent) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No sessions match the current filters"))
		return
	}

	fmt.Printf(" %s\n", output.StyleMuted.Render("Sessions by primary intent:"))
	for _, kv := range sortMapByValue(report.CountsByIntent) {
		fmt.Printf("   %s %s\n",
			output.StyleLabel.Render(displayCategory(kv.key)),
			output.StyleValue.Render(fmt.Sprintf("%d", kv.value)))
	}

	// Single- vs multi-intent sessions.
	cardinalities := make([]int, 0, len(report.CountsByIntentCount))
	for n := range report.CountsByIntentCount {
		cardinalities = append(cardinalities, n)
	}
	sort.Ints(cardinalities)

	fmt.Printf("\n %s\n", output.StyleMuted.Render("By detected intent count:"))
	for _, n := range cardinalities {
		fmt.Printf("   %s %s\n",
			output.StyleLabel.Render(fmt.Sprintf("%d intent(s)", n)),
			output.StyleValue.Render(fmt.Sprintf("%d", report.CountsByIntentCount[n])))
	}

	fmt.Println()
}

func renderSentimentUrgency(report analyzer.Report) {
	fmt.Println(output.Section("Sentiment & Urgency"))

	if report.View.Len() == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No sessions match the current filters"))
		return
	}

	fmt.Printf(" %s\n", output.StyleMuted.Render("Sentiment distribution:"))
	for _, kv := range sortMapByValue(report.SentimentDistribution) {
		fmt.Printf("   %s %s\n",
			output.StyleLabel.Render(displayCategory(kv.key)),
			output.StyleValue.Render(fmt.Sprintf("%d", kv.value)))
	}

	fmt.Printf("\n %s\n", output.StyleMuted.Render("Urgency distribution:"))
	for _, kv := range sortMapByValue(report.UrgencyDistribution) {
		fmt.Printf("   %s %s\n",
			output.StyleLabel.Render(displayCategory(kv.key)),
			output.StyleValue.Render(fmt.Sprintf("%d", kv.value)))
	}

	fmt.Println()
}

func renderRiskEscalation(report analyzer.Report) {
	fmt.Println(output.Section("Risk & Escalation"))

	if report.View.Len() == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No sessions match the current filters"))
		return
	}

	if len(report.RiskFlagCounts) > 0 {
		fmt.Printf(" %s\n", output.StyleMuted.Render("Risk flag distribution:"))
		for _, kv := range sortMapByValue(report.RiskFlagCounts) {
			fmt.Printf("   %s %s\n",
				output.StyleLabel.Render(kv.key),
				output.StyleValue.Render(fmt.Sprintf("%d", kv.value)))
		}
	} else {
		fmt.Printf(" %s\n", output.StyleMuted.Render("No risk flags recorded"))
	}

	fmt.Printf("\n %s\n", output.StyleMuted.Render("Escalation levels:"))
	for _, kv := range sortMapByValue(report.EscalationLevels) {
		fmt.Printf("   %s %s\n",
			output.StyleLabel.Render(displayCategory(kv.key)),
			output.StyleValue.Render(fmt.Sprintf("%d", kv.value)))
	}

	fmt.Println()
}

func renderDailyRollup(daily []analyzer.DayStat) {
	fmt.Println(output.Section("Daily Trends"))

	if len(daily) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No sessions match the current filters"))
		return
	}

	tbl := output.NewTable("Date", "Sessions", "Escalation", "Avg Complexity", "Avg Resolution")
	for _, d := range daily {
		esc := "n/a"
		if d.EscalationRate != nil {
			esc = output.RateBar(*d.EscalationRate*100, 10)
		}
		tbl.AddRow(
			d.Date,
			fmt.Sprintf("%d", d.Sessions),
			esc,
			formatAvg(d.AvgComplexity),
			formatAvg(d.AvgResolution),
		)
	}
	tbl.Print()
	fmt.Println()
}

func renderDailyBySource(stats []analyzer.DaySourceStat) {
	fmt.Println(output.Section("Source-Wise Trends"))

	if len(stats) == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No sessions match the current filters"))
		return
	}

	tbl := output.NewTable("Date", "Source", "Sessions")
	for _, s := range stats {
		tbl.AddRow(s.Date, displayCategory(s.Source), fmt.Sprintf("%d", s.Sessions))
	}
	tbl.Print()
	fmt.Println()
}

func renderSpikePanel(spikes []analyzer.Spike, thresholdPct float64) {
	fmt.Println(output.Section("Escalation Spike Alerts"))

	if len(spikes) == 0 {
		fmt.Printf(" %s\n\n",
			output.StyleSuccess.Render(fmt.Sprintf("No escalation spikes detected above %.0f%%.", thresholdPct)))
		return
	}

	fmt.Printf(" %s\n\n",
		output.StyleError.Render(fmt.Sprintf("%d spike day(s) at or above %.0f%%", len(spikes), thresholdPct)))

	for _, a := range analyzer.SpikeAlerts(spikes, thresholdPct) {
		icon := output.StyleWarning.Render("⚠")
		if a.Level == "critical" {
			icon = output.StyleError.Render("⚠")
		}
		fmt.Printf(" %s %s\n   %s\n", icon, output.StyleHeader.Render(a.Title), output.StyleMuted.Render(a.Message))
	}

	fmt.Println()
}

// formatPct renders a nullable percentage; nil means no data, which is
// distinct from 0%.
func formatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

// formatAvg renders a nullable average score.
func formatAvg(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}

// displayCategory shows empty categorical values as a placeholder so
// rows normalized from absent fields stay visible.
func displayCategory(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

// kvPair is a key-value pair for sorted map iteration.
type kvPair struct {
	key   string
	value int
}

// sortMapByValue returns a slice of key-value pairs sorted by value descending.
func sortMapByValue(m map[string]int) []kvPair {
	pairs := make([]kvPair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, kvPair{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value != pairs[j].value {
			return pairs[i].value > pairs[j].value
		}
		return pairs[i].key < pairs[j].key
	})
	return pairs
}
