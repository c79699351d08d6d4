package app

import (
	"fmt"
	"strconv"

	"github.com/blackwell-systems/combatlens/internal/config"
	"github.com/blackwell-systems/combatlens/internal/output"
	"github.com/blackwell-systems/combatlens/internal/report"
	"github.com/blackwell-systems/combatlens/internal/store"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [report-id]",
	Short: "Show archived reports",
	Long: `List reports saved with 'analyze --save', newest first, with the DPS
change against the previous attempt at the same encounter. With a report ID,
print that report's statistics and suggestions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of reports to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := setup(cmd); err != nil {
		return err
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report id %q", args[0])
		}
		return showArchivedReport(cmd, db, id)
	}

	summaries, err := db.ListReports(historyLimit)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), summaries)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, output.Section("Archived Reports"))
	fmt.Fprintln(w)
	if len(summaries) == 0 {
		fmt.Fprintln(w, " No reports yet. Run 'combatlens analyze --save <log>' to archive one.")
		return nil
	}

	tbl := output.NewTable("ID", "Saved", "Encounter", "Profile", "Duration", "DPS", "Trend", "Issues")
	for _, s := range summaries {
		trend := output.StyleMuted.Render("─")
		if s.Partial {
			trend = output.StyleError.Render("partial")
		} else if prev, ok, err := db.PreviousDPS(s.ID); err == nil && ok && prev > 0 {
			trend = output.TrendArrowPercent((s.DPS-prev)/prev*100, true)
		}

		name := s.EncounterName
		if name == "" {
			name = s.EncounterID
		}
		tbl.AddRow(
			strconv.FormatInt(s.ID, 10),
			s.SavedAt.Local().Format("2006-01-02 15:04"),
			name,
			s.Profile,
			output.FormatDuration(s.DurationMs),
			output.FormatNumber(s.DPS),
			trend,
			fmt.Sprintf("%s/%s/%s",
				output.StyleError.Render(strconv.Itoa(s.Major)),
				output.StyleWarning.Render(strconv.Itoa(s.Regular)),
				output.StyleMuted.Render(strconv.Itoa(s.Minor))),
		)
	}
	tbl.Fprint(w)
	return nil
}

func showArchivedReport(cmd *cobra.Command, db *store.DB, id int64) error {
	summary, err := db.GetReport(id)
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("no report with id %d", id)
	}

	issues, err := db.GetIssues(id)
	if err != nil {
		return fmt.Errorf("loading issues: %w", err)
	}
	stats, err := db.GetStatistics(id)
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}
	efficiency, err := db.GetEfficiency(id)
	if err != nil {
		return fmt.Errorf("loading efficiency: %w", err)
	}

	r := &report.Report{
		Profile:    summary.Profile,
		Efficiency: efficiency,
		Issues:     issues,
		Statistics: stats,
		Skipped:    summary.Skipped,
		Partial:    summary.Partial,
		Error:      summary.Error,
	}
	r.Encounter.ID = summary.EncounterID
	r.Encounter.Name = summary.EncounterName
	r.Encounter.Player = summary.Player
	r.Context.DurationMs = summary.DurationMs

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), r)
	}
	renderReport(cmd.OutOrStdout(), r, false)
	return nil
}
