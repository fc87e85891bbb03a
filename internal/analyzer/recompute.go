package analyzer

import "github.com/rowanline/inferscope/internal/session"

// Recompute runs the full filter → aggregate → spike pipeline for one
// table, selection, and threshold. It is a pure function of its
// inputs, called from scratch whenever any of them changes.
func Recompute(table session.Table, sel Selection, thresholdPct float64) Report {
	view := Apply(table, sel)
	daily := ComputeDailyRollup(view)

	return Report{
		KPI:                   ComputeKPIs(view),
		View:                  view,
		CountsByIntent:        CountsByIntent(view),
		CountsByIntentCount:   CountsByIntentCardinality(view),
		SentimentDistribution: SentimentDistribution(view),
		UrgencyDistribution:   UrgencyDistribution(view),
		EscalationLevels:      EscalationLevelDistribution(view),
		RiskFlagCounts:        RiskFlagCounts(view),
		Daily:                 daily,
		DailyBySource:         DailyBySource(view),
		ThresholdPct:          thresholdPct,
		Spikes:                DetectSpikes(daily, thresholdPct),
	}
}
