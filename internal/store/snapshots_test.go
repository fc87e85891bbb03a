package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fptr(f float64) *float64 { return &f }

func TestOpenCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "track.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateSnapshot("track", "1.2.3", 30)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	snap, err := db.GetSnapshot(id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "track", snap.Command)
	assert.Equal(t, "1.2.3", snap.Version)
	assert.Equal(t, 30.0, snap.Threshold)
	assert.False(t, snap.TakenAt.IsZero())
}

func TestGetSnapshotMissingReturnsNil(t *testing.T) {
	db := testDB(t)

	snap, err := db.GetSnapshot(999)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestGetSnapshotN(t *testing.T) {
	db := testDB(t)

	first, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)
	second, err := db.CreateSnapshot("track", "1", 35)
	require.NoError(t, err)

	latest, err := db.GetSnapshotN(1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second, latest.ID)

	previous, err := db.GetSnapshotN(2)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, first, previous.ID)

	none, err := db.GetSnapshotN(3)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGetRecentSnapshots(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 5; i++ {
		_, err := db.CreateSnapshot("track", "1", 30)
		require.NoError(t, err)
	}

	snaps, err := db.GetRecentSnapshots(3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Greater(t, snaps[0].ID, snaps[1].ID, "newest first")
}

func TestAggregateMetricsRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)

	require.NoError(t, db.InsertAggregateMetric(id, "total_sessions", 42))
	require.NoError(t, db.InsertAggregateMetric(id, "escalation_rate_pct", 37.5))

	metrics, err := db.GetAggregateMetrics(id)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	byName := make(map[string]float64)
	for _, m := range metrics {
		byName[m.MetricName] = m.MetricValue
	}
	assert.Equal(t, 42.0, byName["total_sessions"])
	assert.Equal(t, 37.5, byName["escalation_rate_pct"])
}

func TestDailyRollupPreservesNulls(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)

	require.NoError(t, db.InsertDailyRollup(&DailyRollupRow{
		SnapshotID:     id,
		SessionDate:    "2025-05-10",
		Sessions:       4,
		EscalationRate: fptr(0.5),
		AvgComplexity:  fptr(0.4),
	}))
	require.NoError(t, db.InsertDailyRollup(&DailyRollupRow{
		SnapshotID:  id,
		SessionDate: "2025-05-11",
		Sessions:    2,
	}))

	rollups, err := db.GetDailyRollups(id)
	require.NoError(t, err)
	require.Len(t, rollups, 2)

	withRate := rollups[0]
	require.NotNil(t, withRate.EscalationRate)
	assert.InDelta(t, 0.5, *withRate.EscalationRate, 1e-9)
	require.NotNil(t, withRate.AvgComplexity)
	assert.Nil(t, withRate.AvgResolution)

	noData := rollups[1]
	assert.Equal(t, 2, noData.Sessions)
	assert.Nil(t, noData.EscalationRate, "a NULL rate must come back nil, not zero")
	assert.Nil(t, noData.AvgComplexity)
}

func TestRiskFlagCountsOrderedByCount(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)

	require.NoError(t, db.InsertRiskFlagCount(id, "auth_failure", 1))
	require.NoError(t, db.InsertRiskFlagCount(id, "pii_shared", 3))
	require.NoError(t, db.InsertRiskFlagCount(id, "account_takeover", 1))

	counts, err := db.GetRiskFlagCounts(id)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, "pii_shared", counts[0].Flag)
	assert.Equal(t, "account_takeover", counts[1].Flag, "ties break on flag name")
	assert.Equal(t, "auth_failure", counts[2].Flag)
}

func TestSpikeDaysRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)

	require.NoError(t, db.InsertSpikeDay(&SpikeDayRow{
		SnapshotID:    id,
		SessionDate:   "2025-05-10",
		Sessions:      8,
		EscalationPct: 62.5,
	}))

	days, err := db.GetSpikeDays(id)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-05-10", days[0].SessionDate)
	assert.Equal(t, 8, days[0].Sessions)
	assert.InDelta(t, 62.5, days[0].EscalationPct, 1e-9)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	db := testDB(t)

	a, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)
	b, err := db.CreateSnapshot("track", "1", 30)
	require.NoError(t, err)

	require.NoError(t, db.InsertAggregateMetric(a, "total_sessions", 10))
	require.NoError(t, db.InsertAggregateMetric(b, "total_sessions", 20))

	metrics, err := db.GetAggregateMetrics(a)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 10.0, metrics[0].MetricValue)
}
