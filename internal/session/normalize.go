package session

import (
	"strings"
	"time"
)

// ParseTimestamp parses an ISO 8601 timestamp string. It tries
// RFC3339Nano, RFC3339, and a plain datetime format without timezone.
// Returns the zero time if the string is empty or cannot be parsed by
// any supported format.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			// Fallback for datetime strings without a timezone suffix.
			t, err = time.Parse("2006-01-02T15:04:05", s)
			if err != nil {
				return time.Time{}
			}
		}
	}
	return t
}

// Normalize flattens one raw session into a table row. The second
// return value is false when the session has no parseable message
// timestamp at all; such sessions are excluded from the table rather
// than treated as errors.
func Normalize(s RawSession, provenance string) (Row, bool) {
	var sessionTime time.Time
	for _, m := range s.Messages {
		ts := ParseTimestamp(m.Timestamp)
		if ts.IsZero() {
			continue
		}
		if sessionTime.IsZero() || ts.Before(sessionTime) {
			sessionTime = ts
		}
	}
	if sessionTime.IsZero() {
		return Row{}, false
	}

	row := Row{
		SessionID:   s.SessionID,
		SessionTime: sessionTime,
		SessionDate: sessionTime.Format("2006-01-02"),
		SessionWeek: startOfWeek(sessionTime).Format("2006-01-02"),
		DataSource:  provenance,
	}

	// Inference fields default to null/empty when absent.
	inf := s.Inference
	if inf == nil {
		return row, true
	}

	row.Source = inf.Source
	row.PrimaryIntent = inf.PrimaryIntent
	row.Sentiment = inf.Sentiment
	row.Urgency = inf.Urgency
	row.ComplexityScore = inf.ComplexityScore
	row.ResolutionConfidence = inf.ResolutionConfidence
	row.IntentCount = len(inf.Topics)
	row.IntentFlow = inf.IntentFlow
	row.RiskFlags = strings.Join(inf.RiskFlags, RiskFlagDelimiter)

	if esc := inf.Escalation; esc != nil {
		row.Escalation = esc.Required
		row.EscalationLevel = esc.Level
	}

	return row, true
}

// BuildTable normalizes every loaded session, keeping only those that
// produced a row and preserving input order. Duplicate session IDs
// across documents survive as distinct rows; DataSource disambiguates.
func BuildTable(res *LoadResult) Table {
	rows := make([]Row, 0, len(res.Sessions))
	for i, s := range res.Sessions {
		row, ok := Normalize(s, res.Provenance[i])
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return Table{Rows: rows}
}

// startOfWeek returns midnight on the Monday of t's ISO week.
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
