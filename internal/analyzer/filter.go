package analyzer

import (
	"fmt"

	"github.com/rowanline/inferscope/internal/session"
)

// DefaultSelection returns the no-op filter state for a table: every
// observed source, intent, and data source allowed, any escalation.
func DefaultSelection(table session.Table) Selection {
	sel := Selection{
		Sources:     make(map[string]bool),
		Intents:     make(map[string]bool),
		DataSources: make(map[string]bool),
		Escalation:  EscalationAny,
	}
	for _, r := range table.Rows {
		sel.Sources[r.Source] = true
		sel.Intents[r.PrimaryIntent] = true
		sel.DataSources[r.DataSource] = true
	}
	return sel
}

// NewSelection builds a selection from explicit allow-lists. An empty
// list means "all observed values", mirroring an untouched filter.
func NewSelection(table session.Table, sources, intents, dataSources []string, esc EscalationFilter) Selection {
	sel := DefaultSelection(table)
	sel.Escalation = esc
	if len(sources) > 0 {
		sel.Sources = toSet(sources)
	}
	if len(intents) > 0 {
		sel.Intents = toSet(intents)
	}
	if len(dataSources) > 0 {
		sel.DataSources = toSet(dataSources)
	}
	return sel
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Apply filters the table down to the rows matching the selection.
// The table is never mutated; the view preserves table order and is
// cheap to recompute on every selection change.
func Apply(table session.Table, sel Selection) FilteredView {
	var rows []session.Row
	for _, r := range table.Rows {
		if !sel.matches(r) {
			continue
		}
		rows = append(rows, r)
	}
	return FilteredView{Rows: rows}
}

// matches reports whether a single row satisfies every clause of the
// selection. A nil escalation flag fails both RequireTrue and
// RequireFalse: an unknown value is neither.
func (sel Selection) matches(r session.Row) bool {
	if !sel.Sources[r.Source] || !sel.Intents[r.PrimaryIntent] || !sel.DataSources[r.DataSource] {
		return false
	}
	switch sel.Escalation {
	case EscalationTrue:
		return r.Escalation != nil && *r.Escalation
	case EscalationFalse:
		return r.Escalation != nil && !*r.Escalation
	}
	return true
}

// ParseEscalationFilter maps the CLI/config token to a filter value.
func ParseEscalationFilter(s string) (EscalationFilter, error) {
	switch s {
	case "", "all":
		return EscalationAny, nil
	case "true":
		return EscalationTrue, nil
	case "false":
		return EscalationFalse, nil
	}
	return EscalationAny, fmt.Errorf("invalid escalation filter %q (want all, true, or false)", s)
}
