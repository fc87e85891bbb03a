package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rowanline/inferscope/internal/analyzer"
	"github.com/rowanline/inferscope/internal/config"
	"github.com/rowanline/inferscope/internal/output"
	"github.com/spf13/cobra"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions [documents...]",
	Short: "Session-level detail grid for the current filters",
	Long: `Render the filtered analytical table row by row: one line per session
with its classification, escalation, scores, and provenance. The same
filter flags as 'report' apply.`,
	RunE: runSessions,
}

func init() {
	addFilterFlags(sessionsCmd)
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 0, "Show at most N rows (0 = all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	table, err := loadTable(cfg, args)
	if err != nil {
		return err
	}

	sel, err := buildSelection(table)
	if err != nil {
		return err
	}

	view := analyzer.Apply(table, sel)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Println(output.Section(fmt.Sprintf("Sessions (%d of %d)", view.Len(), table.Len())))

	if view.Len() == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No sessions match the current filters"))
		return nil
	}

	rows := view.Rows
	if sessionsLimit > 0 && len(rows) > sessionsLimit {
		rows = rows[:sessionsLimit]
	}

	tbl := output.NewTable("Session", "Date", "Source", "Intent", "Sentiment", "Urgency", "Esc", "Level", "Risk Flags", "File")
	for _, r := range rows {
		tbl.AddRow(
			r.SessionID,
			r.SessionDate,
			displayCategory(r.Source),
			displayCategory(r.PrimaryIntent),
			displayCategory(r.Sentiment),
			displayCategory(r.Urgency),
			formatEscalation(r.Escalation),
			displayCategory(r.EscalationLevel),
			r.RiskFlags,
			r.DataSource,
		)
	}
	tbl.Print()

	if len(rows) < view.Len() {
		fmt.Printf(" %s\n", output.StyleMuted.Render(fmt.Sprintf("(%d more rows hidden by --limit)", view.Len()-len(rows))))
	}
	fmt.Println()

	return nil
}

// formatEscalation renders the nullable escalation flag.
func formatEscalation(p *bool) string {
	switch {
	case p == nil:
		return "?"
	case *p:
		return output.StyleError.Render("yes")
	default:
		return "no"
	}
}
