package analyzer

import (
	"sort"
	"strings"

	"github.com/rowanline/inferscope/internal/session"
)

// CountsByIntent groups the view by primary intent and counts rows.
// Only observed intents appear.
func CountsByIntent(view FilteredView) map[string]int {
	counts := make(map[string]int)
	for _, r := range view.Rows {
		counts[r.PrimaryIntent]++
	}
	return counts
}

// CountsByIntentCardinality groups by the number of detected intents,
// distinguishing single- from multi-intent sessions.
func CountsByIntentCardinality(view FilteredView) map[int]int {
	counts := make(map[int]int)
	for _, r := range view.Rows {
		counts[r.IntentCount]++
	}
	return counts
}

// SentimentDistribution counts rows per sentiment category.
func SentimentDistribution(view FilteredView) map[string]int {
	return countBy(view, func(r session.Row) string { return r.Sentiment })
}

// UrgencyDistribution counts rows per urgency category.
func UrgencyDistribution(view FilteredView) map[string]int {
	return countBy(view, func(r session.Row) string { return r.Urgency })
}

// EscalationLevelDistribution counts rows per escalation level.
func EscalationLevelDistribution(view FilteredView) map[string]int {
	return countBy(view, func(r session.Row) string { return r.EscalationLevel })
}

func countBy(view FilteredView, key func(session.Row) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range view.Rows {
		counts[key(r)]++
	}
	return counts
}

// RiskFlagCounts splits each row's joined risk-flag column back into
// individual flags, flattens across the view, and counts occurrences.
// Rows with no flags contribute nothing.
func RiskFlagCounts(view FilteredView) map[string]int {
	counts := make(map[string]int)
	for _, r := range view.Rows {
		if r.RiskFlags == "" {
			continue
		}
		for _, flag := range strings.Split(r.RiskFlags, session.RiskFlagDelimiter) {
			if flag == "" {
				continue
			}
			counts[flag]++
		}
	}
	return counts
}

// ComputeDailyRollup groups the view by session date. Escalation rate
// is the mean of the boolean flag over rows where it is present; rows
// with a null flag count toward neither numerator nor denominator. A
// day with no eligible rows gets a nil rate, not zero. Complexity and
// resolution averages are null-safe the same way.
func ComputeDailyRollup(view FilteredView) []DayStat {
	type acc struct {
		sessions   int
		escTrue    int
		escKnown   int
		complexity float64
		nComplex   int
		resolution float64
		nResol     int
	}

	byDay := make(map[string]*acc)
	for _, r := range view.Rows {
		a := byDay[r.SessionDate]
		if a == nil {
			a = &acc{}
			byDay[r.SessionDate] = a
		}
		a.sessions++
		if r.Escalation != nil {
			a.escKnown++
			if *r.Escalation {
				a.escTrue++
			}
		}
		if r.ComplexityScore != nil {
			a.complexity += *r.ComplexityScore
			a.nComplex++
		}
		if r.ResolutionConfidence != nil {
			a.resolution += *r.ResolutionConfidence
			a.nResol++
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	rollup := make([]DayStat, 0, len(days))
	for _, day := range days {
		a := byDay[day]
		stat := DayStat{Date: day, Sessions: a.sessions}
		if a.escKnown > 0 {
			rate := float64(a.escTrue) / float64(a.escKnown)
			stat.EscalationRate = &rate
		}
		if a.nComplex > 0 {
			avg := a.complexity / float64(a.nComplex)
			stat.AvgComplexity = &avg
		}
		if a.nResol > 0 {
			avg := a.resolution / float64(a.nResol)
			stat.AvgResolution = &avg
		}
		rollup = append(rollup, stat)
	}
	return rollup
}

// DailyBySource counts sessions per (date, source) pair, ordered by
// date then source.
func DailyBySource(view FilteredView) []DaySourceStat {
	type key struct {
		date   string
		source string
	}
	counts := make(map[key]int)
	for _, r := range view.Rows {
		counts[key{r.SessionDate, r.Source}]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].source < keys[j].source
	})

	stats := make([]DaySourceStat, 0, len(keys))
	for _, k := range keys {
		stats = append(stats, DaySourceStat{Date: k.date, Source: k.source, Sessions: counts[k]})
	}
	return stats
}

// ComputeKPIs produces the headline numbers for a view. The overall
// escalation rate follows the same null-exclusion rule as the daily
// rollup and is nil for a view with no known escalation flags.
func ComputeKPIs(view FilteredView) KPISummary {
	kpi := KPISummary{
		TotalSessions:    len(view.Rows),
		SessionsBySource: make(map[string]int),
	}
	escTrue, escKnown := 0, 0
	for _, r := range view.Rows {
		kpi.SessionsBySource[r.Source]++
		if r.Escalation != nil {
			escKnown++
			if *r.Escalation {
				escTrue++
			}
		}
	}
	if escKnown > 0 {
		pct := float64(escTrue) / float64(escKnown) * 100
		kpi.EscalationRatePct = &pct
	}
	return kpi
}
