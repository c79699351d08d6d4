package app

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/blackwell-systems/combatlens/internal/output"
	"github.com/blackwell-systems/combatlens/internal/report"
	"github.com/blackwell-systems/combatlens/internal/suggest"
)

// renderReport writes one report in the styled terminal layout.
func renderReport(w io.Writer, r *report.Report, bySeverity bool) {
	title := r.Encounter.ID
	if r.Encounter.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Encounter.Name, r.Encounter.ID)
	}
	fmt.Fprintln(w, output.Section("Encounter: "+title))
	fmt.Fprintf(w, " %s %s   %s %s   %s %s\n",
		output.StyleMuted.Render("Player:"), orDash(r.Encounter.Player),
		output.StyleMuted.Render("Profile:"), r.Profile,
		output.StyleMuted.Render("Duration:"), output.FormatDuration(r.Context.DurationMs),
	)
	if r.Skipped > 0 {
		fmt.Fprintln(w, output.StyleWarning.Render(fmt.Sprintf(" %d malformed lines were skipped", r.Skipped)))
	}

	if r.Partial {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.StyleError.Render(" Analysis stopped: "+r.Error))
		return
	}

	renderStatistics(w, r.Statistics)
	renderEfficiency(w, r)
	renderIssues(w, r.Issues, bySeverity)
}

func renderStatistics(w io.Writer, stats []report.Statistic) {
	if len(stats) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section("Statistics"))
	for _, s := range stats {
		fmt.Fprintf(w, " %s%s%s\n",
			output.StyleLabel.Render(s.Label),
			output.StyleValue.Render(formatStatistic(s)),
			output.StyleMuted.Render(s.Detail),
		)
	}
}

func renderEfficiency(w io.Writer, r *report.Report) {
	if len(r.Efficiency) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section("Cast Efficiency"))

	tbl := output.NewTable("Ability", "Casts", "Efficiency", "Target")
	for _, e := range r.Efficiency {
		name := e.Name
		if name == "" {
			name = strconv.Itoa(e.AbilityID)
		}
		tbl.AddRow(
			name,
			fmt.Sprintf("%d/%d", e.Casts, e.MaxPossibleCasts),
			output.EfficiencyBar(e.Ratio, e.RecommendedEfficiency, 20),
			fmt.Sprintf("%.0f%%", e.RecommendedEfficiency*100),
		)
	}
	fmt.Fprintln(w)
	tbl.Fprint(w)
}

func renderIssues(w io.Writer, issues []suggest.Issue, bySeverity bool) {
	if len(issues) == 0 {
		fmt.Fprintln(w, output.Section("Suggestions"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.StyleSuccess.Render(" Nothing to improve. Well played!"))
		return
	}

	if bySeverity {
		issues = suggest.BySeverity(issues)
	}

	counts := suggest.CountBySeverity(issues)
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Suggestions (%d major, %d regular, %d minor)",
		counts[suggest.SeverityMajor], counts[suggest.SeverityRegular], counts[suggest.SeverityMinor])))
	fmt.Fprintln(w)

	for i, is := range issues {
		fmt.Fprintf(w, " #%d %s %s\n", i+1, output.SeverityLabel(is.Severity), is.Message)
	}
}

func formatStatistic(s report.Statistic) string {
	switch s.Unit {
	case report.UnitDPS:
		return output.FormatNumber(s.Value) + " dps"
	case report.UnitFraction:
		return output.FormatPercentage(s.Value)
	default:
		return output.FormatThousands(int64(math.Round(s.Value)))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
