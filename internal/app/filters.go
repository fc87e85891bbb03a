package app

import (
	"fmt"
	"os"

	"github.com/rowanline/inferscope/internal/analyzer"
	"github.com/rowanline/inferscope/internal/config"
	"github.com/rowanline/inferscope/internal/output"
	"github.com/rowanline/inferscope/internal/session"
	"github.com/spf13/cobra"
)

// Filter flags shared by report, sessions, and spikes. An unset
// multi-select means "all observed values" for that column.
var (
	filterSources    []string
	filterIntents    []string
	filterDataFiles  []string
	filterEscalation string
)

// addFilterFlags registers the shared selection flags on a command.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&filterSources, "source", nil, "Only include sessions from these support sources (repeatable)")
	cmd.Flags().StringSliceVar(&filterIntents, "intent", nil, "Only include sessions with these primary intents (repeatable)")
	cmd.Flags().StringSliceVar(&filterDataFiles, "input-file", nil, "Only include sessions from these input documents (repeatable)")
	cmd.Flags().StringVar(&filterEscalation, "escalation", "all", "Filter by escalation flag: all, true, or false")
}

// loader memoizes the built table across recomputations within one run.
var loader = session.NewLoader()

// loadTable resolves the input document list (positional args override
// config) and builds the analytical table, printing per-file warnings
// to stderr. A fully empty load is fatal.
func loadTable(cfg *config.Config, args []string) (session.Table, error) {
	paths := args
	if len(paths) == 0 {
		paths = cfg.DataFiles
	}
	if len(paths) == 0 {
		return session.Table{}, fmt.Errorf("no input documents: pass file paths or set data_files in config")
	}

	table, warnings, err := loader.LoadTable(paths)
	if err != nil {
		return session.Table{}, err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, output.StyleWarning.Render("warning: ")+w)
	}
	return table, nil
}

// buildSelection turns the active filter flags into an immutable
// selection over the given table.
func buildSelection(table session.Table) (analyzer.Selection, error) {
	esc, err := analyzer.ParseEscalationFilter(filterEscalation)
	if err != nil {
		return analyzer.Selection{}, err
	}
	return analyzer.NewSelection(table, filterSources, filterIntents, filterDataFiles, esc), nil
}
