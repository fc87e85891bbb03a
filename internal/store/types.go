package store

import "time"

// Snapshot is one recorded run of the track command.
type Snapshot struct {
	ID        int64     `json:"id"`
	TakenAt   time.Time `json:"taken_at"`
	Command   string    `json:"command"`
	Version   string    `json:"version"`
	Threshold float64   `json:"threshold"`
}

// AggregateMetric is one named metric value within a snapshot.
type AggregateMetric struct {
	ID          int64   `json:"id"`
	SnapshotID  int64   `json:"snapshot_id"`
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
}

// DailyRollupRow is one persisted day of the rollup. Nil pointers mark
// days where the underlying group had no eligible rows.
type DailyRollupRow struct {
	ID             int64    `json:"id"`
	SnapshotID     int64    `json:"snapshot_id"`
	SessionDate    string   `json:"session_date"`
	Sessions       int      `json:"sessions"`
	EscalationRate *float64 `json:"escalation_rate"`
	AvgComplexity  *float64 `json:"avg_complexity"`
	AvgResolution  *float64 `json:"avg_resolution"`
}

// RiskFlagCountRow is one persisted risk-flag tally.
type RiskFlagCountRow struct {
	ID         int64  `json:"id"`
	SnapshotID int64  `json:"snapshot_id"`
	Flag       string `json:"flag"`
	Count      int    `json:"count"`
}

// SpikeDayRow is one persisted flagged day.
type SpikeDayRow struct {
	ID            int64   `json:"id"`
	SnapshotID    int64   `json:"snapshot_id"`
	SessionDate   string  `json:"session_date"`
	Sessions      int     `json:"sessions"`
	EscalationPct float64 `json:"escalation_pct"`
}

// MetricDelta describes the change in one metric between snapshots.
type MetricDelta struct {
	Name      string  `json:"name"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
}

// SnapshotDiff compares two snapshots.
type SnapshotDiff struct {
	Previous *Snapshot     `json:"previous"`
	Current  *Snapshot     `json:"current"`
	Deltas   []MetricDelta `json:"deltas"`
}
