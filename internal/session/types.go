// Package session loads chat-session inference documents and normalizes
// them into the flat analytical table consumed by the analyzer.
package session

import "time"

// Document is the top-level structure of one input file.
type Document struct {
	Sessions []RawSession `json:"sessions"`
}

// RawSession is one chat conversation as produced by the upstream
// inference pipeline. Every field beyond SessionID and message
// timestamps is optional; absence never aborts normalization.
type RawSession struct {
	SessionID string     `json:"sessionId"`
	Messages  []Message  `json:"messages"`
	Inference *Inference `json:"session_inference"`
}

// Message is a single turn within a session. Only the timestamp is
// consumed; remaining fields are ignored.
type Message struct {
	Timestamp string `json:"timestamp"`
}

// Inference carries the per-session classification metadata.
type Inference struct {
	Source               string      `json:"source"`
	PrimaryIntent        string      `json:"primary_intent"`
	Sentiment            string      `json:"sentiment"`
	Urgency              string      `json:"urgency"`
	Escalation           *Escalation `json:"escalation"`
	ComplexityScore      *float64    `json:"complexity_score"`
	ResolutionConfidence *float64    `json:"resolution_confidence"`
	Topics               []any       `json:"topics"`
	IntentFlow           string      `json:"intent_flow"`
	RiskFlags            []string    `json:"risk_flags"`
}

// Escalation flags a session that needed human handling.
type Escalation struct {
	Required *bool  `json:"required"`
	Level    string `json:"level"`
}

// Row is one normalized session: the flat record the analytical table
// is made of. Nullable inference fields stay pointers so a missing
// value is distinguishable from a zero.
type Row struct {
	SessionID            string     `json:"sessionId"`
	Source               string     `json:"source"`
	PrimaryIntent        string     `json:"primary_intent"`
	Sentiment            string     `json:"sentiment"`
	Urgency              string     `json:"urgency"`
	Escalation           *bool      `json:"escalation"`
	EscalationLevel      string     `json:"escalation_level"`
	ComplexityScore      *float64   `json:"complexity_score"`
	ResolutionConfidence *float64   `json:"resolution_confidence"`
	IntentCount          int        `json:"intent_count"`
	IntentFlow           string     `json:"intent_flow"`
	RiskFlags            string     `json:"risk_flags"`
	SessionTime          time.Time  `json:"session_time"`
	SessionDate          string     `json:"session_date"`
	SessionWeek          string     `json:"session_week"`
	DataSource           string     `json:"data_source"`
}

// Table is the ordered analytical table: one Row per session that
// survived normalization, in input concatenation order. It is built
// once per load cycle and treated as immutable afterward.
type Table struct {
	Rows []Row `json:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// RiskFlagDelimiter joins a session's risk flags into the single
// RiskFlags column and is the token the aggregator splits on.
const RiskFlagDelimiter = ", "
