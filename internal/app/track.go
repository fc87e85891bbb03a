package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rowanline/inferscope/internal/analyzer"
	"github.com/rowanline/inferscope/internal/config"
	"github.com/rowanline/inferscope/internal/output"
	"github.com/rowanline/inferscope/internal/store"
	"github.com/spf13/cobra"
)

var (
	trackCompare int
	trackHistory int
)

var trackCmd = &cobra.Command{
	Use:   "track [documents...]",
	Short: "Snapshot aggregate metrics and compare over time",
	Long: `Run the full analysis, store a snapshot of the aggregate metrics,
daily rollups, risk-flag counts, and flagged spike days, then compare
against the most recent previous snapshot to show deltas with trend
arrows. Filters apply before the snapshot is taken.`,
	RunE: runTrack,
}

func init() {
	addFilterFlags(trackCmd)
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous snapshot (1 = most recent)")
	trackCmd.Flags().IntVar(&trackHistory, "history", 0, "Show metric trends across N most recent snapshots")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	table, err := loadTable(cfg, args)
	if err != nil {
		return err
	}

	sel, err := buildSelection(table)
	if err != nil {
		return err
	}

	report := analyzer.Recompute(table, sel, cfg.SpikeThreshold)

	snapshotID, err := db.CreateSnapshot("track", appVersion, report.ThresholdPct)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	if err := persistReport(db, snapshotID, report); err != nil {
		return err
	}

	// Handle --history mode: show trends across N snapshots.
	if trackHistory > 0 {
		if flagJSON {
			return outputHistoryJSON(db, trackHistory)
		}
		return renderHistory(db, trackHistory)
	}

	// Load previous snapshot for comparison.
	// trackCompare=1 means compare against the immediate predecessor (offset 2 from newest).
	prevSnapshot, err := db.GetSnapshotN(trackCompare + 1)
	if err != nil {
		return fmt.Errorf("loading previous snapshot: %w", err)
	}

	currentSnapshot, err := db.GetSnapshot(snapshotID)
	if err != nil {
		return fmt.Errorf("loading current snapshot: %w", err)
	}

	var diff *store.SnapshotDiff
	if prevSnapshot != nil {
		prevMetrics, err := db.GetAggregateMetrics(prevSnapshot.ID)
		if err != nil {
			return fmt.Errorf("loading previous metrics: %w", err)
		}

		currMetrics, err := db.GetAggregateMetrics(snapshotID)
		if err != nil {
			return fmt.Errorf("loading current metrics: %w", err)
		}

		diff = &store.SnapshotDiff{
			Previous: prevSnapshot,
			Current:  currentSnapshot,
			Deltas:   computeDeltas(prevMetrics, currMetrics),
		}
	}

	if flagJSON {
		result := map[string]any{"snapshot": currentSnapshot}
		if diff != nil {
			result["diff"] = diff
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderTrackOutput(currentSnapshot, diff)
	return nil
}

// persistReport writes one report's aggregates into a snapshot.
func persistReport(db *store.DB, snapshotID int64, report analyzer.Report) error {
	for name, value := range buildAggregateMetrics(report) {
		if err := db.InsertAggregateMetric(snapshotID, name, value); err != nil {
			return fmt.Errorf("inserting metric %s: %w", name, err)
		}
	}

	for _, d := range report.Daily {
		row := &store.DailyRollupRow{
			SnapshotID:     snapshotID,
			SessionDate:    d.Date,
			Sessions:       d.Sessions,
			EscalationRate: d.EscalationRate,
			AvgComplexity:  d.AvgComplexity,
			AvgResolution:  d.AvgResolution,
		}
		if err := db.InsertDailyRollup(row); err != nil {
			return fmt.Errorf("inserting rollup for %s: %w", d.Date, err)
		}
	}

	for flag, count := range report.RiskFlagCounts {
		if err := db.InsertRiskFlagCount(snapshotID, flag, count); err != nil {
			return fmt.Errorf("inserting risk flag %s: %w", flag, err)
		}
	}

	for _, s := range report.Spikes {
		row := &store.SpikeDayRow{
			SnapshotID:    snapshotID,
			SessionDate:   s.Date,
			Sessions:      s.Sessions,
			EscalationPct: s.EscalationPct,
		}
		if err := db.InsertSpikeDay(row); err != nil {
			return fmt.Errorf("inserting spike day %s: %w", s.Date, err)
		}
	}

	return nil
}

// buildAggregateMetrics produces a flat map of metric name to value
// from one report.
func buildAggregateMetrics(report analyzer.Report) map[string]float64 {
	totalFlags := 0
	for _, count := range report.RiskFlagCounts {
		totalFlags += count
	}

	escalationPct := 0.0
	if report.KPI.EscalationRatePct != nil {
		escalationPct = *report.KPI.EscalationRatePct
	}

	return map[string]float64{
		"total_sessions":      float64(report.KPI.TotalSessions),
		"escalation_rate_pct": escalationPct,
		"distinct_intents":    float64(len(report.CountsByIntent)),
		"risk_flag_events":    float64(totalFlags),
		"active_days":         float64(len(report.Daily)),
		"spike_days":          float64(len(report.Spikes)),
	}
}

// metricDirection maps metric names to whether higher values are better.
var metricDirection = map[string]bool{
	"total_sessions":      true,
	"escalation_rate_pct": false,
	"distinct_intents":    true,
	"risk_flag_events":    false,
	"active_days":         true,
	"spike_days":          false,
}

// computeDeltas compares two sets of aggregate metrics and returns MetricDelta entries.
func computeDeltas(prev, curr []store.AggregateMetric) []store.MetricDelta {
	prevMap := make(map[string]float64)
	for _, m := range prev {
		prevMap[m.MetricName] = m.MetricValue
	}

	var deltas []store.MetricDelta
	for _, m := range curr {
		prevVal := prevMap[m.MetricName]
		delta := m.MetricValue - prevVal

		direction := "unchanged"
		if delta != 0 {
			higherIsBetter, known := metricDirection[m.MetricName]
			if !known {
				higherIsBetter = true // default assumption
			}
			isPositive := delta > 0
			if (isPositive && higherIsBetter) || (!isPositive && !higherIsBetter) {
				direction = "improved"
			} else {
				direction = "regressed"
			}
		}

		deltas = append(deltas, store.MetricDelta{
			Name:      m.MetricName,
			Previous:  prevVal,
			Current:   m.MetricValue,
			Delta:     delta,
			Direction: direction,
		})
	}

	return deltas
}

func renderTrackOutput(current *store.Snapshot, diff *store.SnapshotDiff) {
	fmt.Println(output.Section("Track: Snapshot Comparison"))
	fmt.Println()
	fmt.Printf(" Snapshot #%d taken at %s\n\n", current.ID, current.TakenAt.Format("2006-01-02 15:04:05"))

	if diff == nil {
		fmt.Println(" First snapshot recorded. Run 'inferscope track' again later to see trends.")
		return
	}

	fmt.Printf(" Comparing against snapshot #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.TakenAt.Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Delta", "Trend")

	for _, d := range diff.Deltas {
		higherIsBetter, known := metricDirection[d.Name]
		if !known {
			higherIsBetter = true
		}

		tbl.AddRow(
			metricShortName(d.Name),
			fmt.Sprintf("%.1f", d.Previous),
			fmt.Sprintf("%.1f", d.Current),
			fmt.Sprintf("%+.1f", d.Delta),
			output.TrendArrow(d.Delta, higherIsBetter),
		)
	}

	tbl.Print()
}

// metricDisplayOrder defines the order metrics appear in history output.
var metricDisplayOrder = []string{
	"total_sessions",
	"escalation_rate_pct",
	"distinct_intents",
	"risk_flag_events",
	"active_days",
	"spike_days",
}

// metricShortName returns a compact label for display in track tables.
func metricShortName(name string) string {
	short := map[string]string{
		"total_sessions":      "Sessions",
		"escalation_rate_pct": "Escalation %",
		"distinct_intents":    "Distinct Intents",
		"risk_flag_events":    "Risk Flag Events",
		"active_days":         "Active Days",
		"spike_days":          "Spike Days",
	}
	if s, ok := short[name]; ok {
		return s
	}
	return name
}

// renderHistory shows a multi-snapshot timeline table.
func renderHistory(db *store.DB, n int) error {
	snapshots, err := db.GetRecentSnapshots(n)
	if err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		fmt.Println(" No snapshots found. Run 'inferscope track' to create one.")
		return nil
	}

	// Reverse so oldest is first (left to right = chronological).
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}

	type snapshotMetrics struct {
		snapshot store.Snapshot
		metrics  map[string]float64
	}
	var timeline []snapshotMetrics
	for _, s := range snapshots {
		metrics, err := db.GetAggregateMetrics(s.ID)
		if err != nil {
			return fmt.Errorf("loading metrics for snapshot #%d: %w", s.ID, err)
		}
		m := make(map[string]float64)
		for _, am := range metrics {
			m[am.MetricName] = am.MetricValue
		}
		timeline = append(timeline, snapshotMetrics{snapshot: s, metrics: m})
	}

	fmt.Println(output.Section("Track: Metric History"))
	fmt.Println()
	fmt.Printf(" Showing %d most recent snapshots\n\n", len(timeline))

	headers := []string{"Metric"}
	for _, sm := range timeline {
		headers = append(headers, fmt.Sprintf("#%d %s", sm.snapshot.ID, sm.snapshot.TakenAt.Format("Jan 02")))
	}
	headers = append(headers, "Trend")
	tbl := output.NewTable(headers...)

	for _, name := range metricDisplayOrder {
		row := []string{metricShortName(name)}
		var vals []float64
		for _, sm := range timeline {
			v := sm.metrics[name]
			vals = append(vals, v)
			row = append(row, fmt.Sprintf("%.1f", v))
		}

		// Compute trend from first to last.
		trend := ""
		if len(vals) >= 2 {
			delta := vals[len(vals)-1] - vals[0]
			higherIsBetter, known := metricDirection[name]
			if !known {
				higherIsBetter = true
			}
			trend = output.TrendArrow(delta, higherIsBetter)
		}
		row = append(row, trend)
		tbl.AddRow(row...)
	}

	tbl.Print()
	return nil
}

// outputHistoryJSON writes the history data as JSON.
func outputHistoryJSON(db *store.DB, n int) error {
	snapshots, err := db.GetRecentSnapshots(n)
	if err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}

	type snapshotEntry struct {
		Snapshot store.Snapshot          `json:"snapshot"`
		Metrics  []store.AggregateMetric `json:"metrics"`
	}

	var entries []snapshotEntry
	for _, s := range snapshots {
		metrics, err := db.GetAggregateMetrics(s.ID)
		if err != nil {
			return fmt.Errorf("loading metrics for snapshot #%d: %w", s.ID, err)
		}
		entries = append(entries, snapshotEntry{Snapshot: s, Metrics: metrics})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"history": entries})
}
