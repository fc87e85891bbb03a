// Package analyzer computes filtered views, grouped summaries, and
// escalation-spike alerts over the analytical table.
package analyzer

import (
	"time"

	"github.com/rowanline/inferscope/internal/session"
)

// EscalationFilter selects rows by their escalation flag.
type EscalationFilter int

const (
	// EscalationAny keeps every row regardless of escalation.
	EscalationAny EscalationFilter = iota
	// EscalationTrue keeps only rows whose escalation flag is true.
	EscalationTrue
	// EscalationFalse keeps only rows whose escalation flag is false.
	EscalationFalse
)

// Selection is the immutable filter state applied on each
// recomputation. Allowed-value sets are conjunctive: a row passes only
// if its source, primary intent, and data source are all members.
type Selection struct {
	Sources     map[string]bool
	Intents     map[string]bool
	DataSources map[string]bool
	Escalation  EscalationFilter
}

// FilteredView is a read-only subsequence of the analytical table
// satisfying the active selection, in table order.
type FilteredView struct {
	Rows []session.Row `json:"rows"`
}

// Len returns the number of rows in the view.
func (v FilteredView) Len() int { return len(v.Rows) }

// DayStat is one day's rollup. Rate and average fields are nil when no
// eligible rows exist for that day, never zero-by-division.
type DayStat struct {
	Date           string   `json:"session_date"`
	Sessions       int      `json:"sessions"`
	EscalationRate *float64 `json:"escalation_rate"`
	AvgComplexity  *float64 `json:"avg_complexity"`
	AvgResolution  *float64 `json:"avg_resolution"`
}

// DaySourceStat counts one (day, source) group.
type DaySourceStat struct {
	Date     string `json:"session_date"`
	Source   string `json:"source"`
	Sessions int    `json:"sessions"`
}

// Spike is a day whose escalation rate met or exceeded the alert
// threshold.
type Spike struct {
	Date          string  `json:"session_date"`
	Sessions      int     `json:"sessions"`
	EscalationPct float64 `json:"escalation_pct"`
}

// KPISummary is the headline block computed from a filtered view.
type KPISummary struct {
	TotalSessions     int            `json:"total_sessions"`
	SessionsBySource  map[string]int `json:"sessions_by_source"`
	EscalationRatePct *float64       `json:"escalation_rate_pct"`
}

// Report bundles everything one recomputation produces: the filtered
// view, every aggregate table, and the flagged spike days.
type Report struct {
	KPI                   KPISummary      `json:"kpi"`
	View                  FilteredView    `json:"view"`
	CountsByIntent        map[string]int  `json:"counts_by_intent"`
	CountsByIntentCount   map[int]int     `json:"counts_by_intent_cardinality"`
	SentimentDistribution map[string]int  `json:"sentiment_distribution"`
	UrgencyDistribution   map[string]int  `json:"urgency_distribution"`
	EscalationLevels      map[string]int  `json:"escalation_level_distribution"`
	RiskFlagCounts        map[string]int  `json:"risk_flag_counts"`
	Daily                 []DayStat       `json:"daily_rollup"`
	DailyBySource         []DaySourceStat `json:"daily_by_source"`
	ThresholdPct          float64         `json:"spike_threshold_pct"`
	Spikes                []Spike         `json:"spikes"`
}

// Alert is a leveled notification derived from a spike day, rendered
// by the alert panel.
type Alert struct {
	Level   string    `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
