package store

import (
	"database/sql"
	"time"
)

// CreateSnapshot inserts a new snapshot and returns its ID.
func (db *DB) CreateSnapshot(command, version string, threshold float64) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO snapshots (taken_at, command, version, threshold) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), command, version, threshold,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetSnapshot returns a snapshot by ID.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT id, taken_at, command, version, threshold FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// GetSnapshotN returns the Nth most recent snapshot (1 = latest, 2 = previous, etc.).
func (db *DB) GetSnapshotN(n int) (*Snapshot, error) {
	row := db.conn.QueryRow(
		"SELECT id, taken_at, command, version, threshold FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	return scanSnapshot(row)
}

// GetRecentSnapshots returns up to n most recent snapshots, newest first.
func (db *DB) GetRecentSnapshots(n int) ([]Snapshot, error) {
	rows, err := db.conn.Query(
		"SELECT id, taken_at, command, version, threshold FROM snapshots ORDER BY id DESC LIMIT ?", n,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var takenAt string
		if err := rows.Scan(&s.ID, &takenAt, &s.Command, &s.Version, &s.Threshold); err != nil {
			return nil, err
		}
		s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Command, &s.Version, &s.Threshold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// InsertAggregateMetric inserts an aggregate metric for a snapshot.
func (db *DB) InsertAggregateMetric(snapshotID int64, name string, value float64) error {
	_, err := db.conn.Exec(
		"INSERT INTO aggregate_metrics (snapshot_id, metric_name, metric_value) VALUES (?, ?, ?)",
		snapshotID, name, value,
	)
	return err
}

// GetAggregateMetrics returns all aggregate metrics for a snapshot.
func (db *DB) GetAggregateMetrics(snapshotID int64) ([]AggregateMetric, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, metric_name, metric_value FROM aggregate_metrics WHERE snapshot_id = ?",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []AggregateMetric
	for rows.Next() {
		var m AggregateMetric
		if err := rows.Scan(&m.ID, &m.SnapshotID, &m.MetricName, &m.MetricValue); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// InsertDailyRollup inserts one day of the rollup for a snapshot.
func (db *DB) InsertDailyRollup(r *DailyRollupRow) error {
	_, err := db.conn.Exec(
		`INSERT INTO daily_rollups
		(snapshot_id, session_date, sessions, escalation_rate, avg_complexity, avg_resolution)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.SnapshotID, r.SessionDate, r.Sessions,
		nullableFloat(r.EscalationRate), nullableFloat(r.AvgComplexity), nullableFloat(r.AvgResolution),
	)
	return err
}

// GetDailyRollups returns the persisted rollup for a snapshot, ordered by date.
func (db *DB) GetDailyRollups(snapshotID int64) ([]DailyRollupRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, snapshot_id, session_date, sessions, escalation_rate, avg_complexity, avg_resolution
		 FROM daily_rollups WHERE snapshot_id = ? ORDER BY session_date`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rollups []DailyRollupRow
	for rows.Next() {
		var r DailyRollupRow
		var rate, complexity, resolution sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.SnapshotID, &r.SessionDate, &r.Sessions, &rate, &complexity, &resolution); err != nil {
			return nil, err
		}
		r.EscalationRate = floatPtr(rate)
		r.AvgComplexity = floatPtr(complexity)
		r.AvgResolution = floatPtr(resolution)
		rollups = append(rollups, r)
	}
	return rollups, rows.Err()
}

// InsertRiskFlagCount inserts one risk-flag tally for a snapshot.
func (db *DB) InsertRiskFlagCount(snapshotID int64, flag string, count int) error {
	_, err := db.conn.Exec(
		"INSERT INTO risk_flag_counts (snapshot_id, flag, count) VALUES (?, ?, ?)",
		snapshotID, flag, count,
	)
	return err
}

// GetRiskFlagCounts returns the persisted flag tallies for a snapshot.
func (db *DB) GetRiskFlagCounts(snapshotID int64) ([]RiskFlagCountRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, flag, count FROM risk_flag_counts WHERE snapshot_id = ? ORDER BY count DESC, flag",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []RiskFlagCountRow
	for rows.Next() {
		var c RiskFlagCountRow
		if err := rows.Scan(&c.ID, &c.SnapshotID, &c.Flag, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// InsertSpikeDay inserts one flagged day for a snapshot.
func (db *DB) InsertSpikeDay(s *SpikeDayRow) error {
	_, err := db.conn.Exec(
		"INSERT INTO spike_days (snapshot_id, session_date, sessions, escalation_pct) VALUES (?, ?, ?, ?)",
		s.SnapshotID, s.SessionDate, s.Sessions, s.EscalationPct,
	)
	return err
}

// GetSpikeDays returns the persisted flagged days for a snapshot.
func (db *DB) GetSpikeDays(snapshotID int64) ([]SpikeDayRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, session_date, sessions, escalation_pct FROM spike_days WHERE snapshot_id = ? ORDER BY session_date",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var days []SpikeDayRow
	for rows.Next() {
		var d SpikeDayRow
		if err := rows.Scan(&d.ID, &d.SnapshotID, &d.SessionDate, &d.Sessions, &d.EscalationPct); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
