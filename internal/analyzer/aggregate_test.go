package analyzer

import (
	"testing"

	"github.com/rowanline/inferscope/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewOf(rows ...session.Row) FilteredView {
	return FilteredView{Rows: rows}
}

func TestComputeDailyRollup_ExcludesNullFlagsFromRate(t *testing.T) {
	// Four sessions on one day: escalated, not escalated, and two with
	// unknown flags. The rate is 1/2, not 1/4.
	view := viewOf(
		session.Row{SessionDate: "2025-05-10", Escalation: boolPtr(true)},
		session.Row{SessionDate: "2025-05-10", Escalation: boolPtr(false)},
		session.Row{SessionDate: "2025-05-10"},
		session.Row{SessionDate: "2025-05-10"},
	)

	rollup := ComputeDailyRollup(view)
	require.Len(t, rollup, 1)

	day := rollup[0]
	assert.Equal(t, 4, day.Sessions)
	require.NotNil(t, day.EscalationRate)
	assert.InDelta(t, 0.5, *day.EscalationRate, 1e-9)
}

func TestComputeDailyRollup_AllNullFlagsGivesNilRate(t *testing.T) {
	view := viewOf(
		session.Row{SessionDate: "2025-05-10"},
		session.Row{SessionDate: "2025-05-10"},
	)

	rollup := ComputeDailyRollup(view)
	require.Len(t, rollup, 1)
	assert.Equal(t, 2, rollup[0].Sessions)
	assert.Nil(t, rollup[0].EscalationRate, "unknown flags must yield no rate, not zero")
}

func TestComputeDailyRollup_SortedByDate(t *testing.T) {
	view := viewOf(
		session.Row{SessionDate: "2025-05-12", Escalation: boolPtr(false)},
		session.Row{SessionDate: "2025-05-10", Escalation: boolPtr(true)},
		session.Row{SessionDate: "2025-05-11"},
	)

	rollup := ComputeDailyRollup(view)
	require.Len(t, rollup, 3)
	assert.Equal(t, "2025-05-10", rollup[0].Date)
	assert.Equal(t, "2025-05-11", rollup[1].Date)
	assert.Equal(t, "2025-05-12", rollup[2].Date)
}

func TestComputeDailyRollup_ScoreAverages(t *testing.T) {
	view := viewOf(
		session.Row{SessionDate: "2025-05-10", ComplexityScore: floatPtr(0.2), ResolutionConfidence: floatPtr(0.9)},
		session.Row{SessionDate: "2025-05-10", ComplexityScore: floatPtr(0.6)},
		session.Row{SessionDate: "2025-05-10"},
	)

	rollup := ComputeDailyRollup(view)
	require.Len(t, rollup, 1)

	day := rollup[0]
	require.NotNil(t, day.AvgComplexity)
	assert.InDelta(t, 0.4, *day.AvgComplexity, 1e-9)
	require.NotNil(t, day.AvgResolution)
	assert.InDelta(t, 0.9, *day.AvgResolution, 1e-9)
}

func TestComputeDailyRollup_EmptyView(t *testing.T) {
	assert.Empty(t, ComputeDailyRollup(FilteredView{}))
}

func TestRiskFlagCounts_FlattensJoinedFlags(t *testing.T) {
	view := viewOf(
		session.Row{RiskFlags: "pii_shared, auth_failure"},
		session.Row{RiskFlags: "pii_shared"},
		session.Row{RiskFlags: ""},
	)

	counts := RiskFlagCounts(view)
	assert.Equal(t, map[string]int{
		"pii_shared":   2,
		"auth_failure": 1,
	}, counts)
}

func TestRiskFlagCounts_EmptyView(t *testing.T) {
	assert.Empty(t, RiskFlagCounts(FilteredView{}))
}

func TestCountsByIntent(t *testing.T) {
	view := viewOf(
		session.Row{PrimaryIntent: "refund"},
		session.Row{PrimaryIntent: "refund"},
		session.Row{PrimaryIntent: "password_reset"},
		session.Row{PrimaryIntent: ""},
	)

	counts := CountsByIntent(view)
	assert.Equal(t, map[string]int{
		"refund":         2,
		"password_reset": 1,
		"":               1,
	}, counts)
}

func TestCountsByIntentCardinality(t *testing.T) {
	view := viewOf(
		session.Row{IntentCount: 1},
		session.Row{IntentCount: 1},
		session.Row{IntentCount: 3},
		session.Row{IntentCount: 0},
	)

	counts := CountsByIntentCardinality(view)
	assert.Equal(t, map[int]int{0: 1, 1: 2, 3: 1}, counts)
}

func TestDistributions(t *testing.T) {
	view := viewOf(
		session.Row{Sentiment: "negative", Urgency: "high", EscalationLevel: "L2"},
		session.Row{Sentiment: "negative", Urgency: "low", EscalationLevel: ""},
		session.Row{Sentiment: "neutral", Urgency: "high", EscalationLevel: "L1"},
	)

	assert.Equal(t, map[string]int{"negative": 2, "neutral": 1}, SentimentDistribution(view))
	assert.Equal(t, map[string]int{"high": 2, "low": 1}, UrgencyDistribution(view))
	assert.Equal(t, map[string]int{"L2": 1, "L1": 1, "": 1}, EscalationLevelDistribution(view))
}

func TestDailyBySource_OrderedDateThenSource(t *testing.T) {
	view := viewOf(
		session.Row{SessionDate: "2025-05-11", Source: "billing"},
		session.Row{SessionDate: "2025-05-10", Source: "it_support"},
		session.Row{SessionDate: "2025-05-10", Source: "billing"},
		session.Row{SessionDate: "2025-05-10", Source: "billing"},
	)

	stats := DailyBySource(view)
	require.Len(t, stats, 3)
	assert.Equal(t, DaySourceStat{Date: "2025-05-10", Source: "billing", Sessions: 2}, stats[0])
	assert.Equal(t, DaySourceStat{Date: "2025-05-10", Source: "it_support", Sessions: 1}, stats[1])
	assert.Equal(t, DaySourceStat{Date: "2025-05-11", Source: "billing", Sessions: 1}, stats[2])
}

func TestComputeKPIs(t *testing.T) {
	view := viewOf(
		session.Row{Source: "it_support", Escalation: boolPtr(true)},
		session.Row{Source: "it_support", Escalation: boolPtr(false)},
		session.Row{Source: "billing"},
	)

	kpi := ComputeKPIs(view)
	assert.Equal(t, 3, kpi.TotalSessions)
	assert.Equal(t, map[string]int{"it_support": 2, "billing": 1}, kpi.SessionsBySource)
	require.NotNil(t, kpi.EscalationRatePct)
	assert.InDelta(t, 50.0, *kpi.EscalationRatePct, 1e-9)
}

func TestComputeKPIs_NoKnownFlags(t *testing.T) {
	kpi := ComputeKPIs(viewOf(session.Row{Source: "billing"}))
	assert.Equal(t, 1, kpi.TotalSessions)
	assert.Nil(t, kpi.EscalationRatePct)
}

func TestRecompute_WiresEveryAggregate(t *testing.T) {
	table := sampleTable()
	report := Recompute(table, DefaultSelection(table), 30)

	assert.Equal(t, 4, report.KPI.TotalSessions)
	assert.Equal(t, 4, report.View.Len())
	assert.Len(t, report.Daily, 2)
	assert.Equal(t, 30.0, report.ThresholdPct)
	// Day one: 1/2 escalated = 50% >= 30%. Day two: 1/1 known = 100%.
	require.Len(t, report.Spikes, 2)
	assert.Equal(t, "2025-05-10", report.Spikes[0].Date)
	assert.InDelta(t, 50.0, report.Spikes[0].EscalationPct, 1e-9)
	assert.InDelta(t, 100.0, report.Spikes[1].EscalationPct, 1e-9)
}

func TestRecompute_Idempotent(t *testing.T) {
	table := sampleTable()
	sel := NewSelection(table, []string{"it_support"}, nil, nil, EscalationAny)

	first := Recompute(table, sel, 30)
	second := Recompute(table, sel, 30)
	assert.Equal(t, first, second)
}
