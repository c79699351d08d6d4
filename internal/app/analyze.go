package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/blackwell-systems/combatlens/internal/combatlog"
	"github.com/blackwell-systems/combatlens/internal/config"
	"github.com/blackwell-systems/combatlens/internal/encounter"
	"github.com/blackwell-systems/combatlens/internal/output"
	"github.com/blackwell-systems/combatlens/internal/report"
	"github.com/blackwell-systems/combatlens/internal/store"
	"github.com/spf13/cobra"
)

var (
	analyzeProfile    string
	analyzePlayer     string
	analyzeSort       bool
	analyzeSave       bool
	analyzeBySeverity bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <log.jsonl>...",
	Short: "Analyze one or more JSONL combat logs",
	Long: `Analyze combat logs and print cast efficiency, statistics and
suggestions for each encounter. Encounters are analyzed concurrently; reports
are printed in argument order.

The profile is taken from --profile, else from the log header, else from the
default_profile config key.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "", "Profile name or path to a .toml profile")
	analyzeCmd.Flags().StringVar(&analyzePlayer, "player", "", "Only keep events whose source is this player")
	analyzeCmd.Flags().BoolVar(&analyzeSort, "sort", false, "Sort events by timestamp before analysis")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Archive the reports in the local database")
	analyzeCmd.Flags().BoolVar(&analyzeBySeverity, "by-severity", false, "List suggestions by severity instead of evaluation order")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	logs := make([]*combatlog.Log, 0, len(args))
	for _, path := range args {
		log, err := combatlog.ParseFile(path, analyzePlayer)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if analyzeSort {
			combatlog.SortEvents(log.Events)
		}
		e.logger.Debug("parsed log", "source", path, "events", len(log.Events), "skipped", log.Skipped)
		logs = append(logs, log)
	}

	reports, analyzeErr := analyzeLogs(cmd.Context(), e, logs, analyzeProfile)

	if analyzeSave {
		if err := saveReports(cmd.OutOrStdout(), reports); err != nil {
			return err
		}
	}

	if flagJSON {
		if err := writeJSON(cmd.OutOrStdout(), nonNil(reports)); err != nil {
			return err
		}
		return analyzeErr
	}

	for _, r := range reports {
		if r != nil {
			renderReport(cmd.OutOrStdout(), r, analyzeBySeverity)
		}
	}
	return analyzeErr
}

// analyzeLogs groups logs by their resolved profile and runs each group
// through its own driver. Reports keep the order of logs.
func analyzeLogs(ctx context.Context, e *env, logs []*combatlog.Log, profileRef string) ([]*report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	type group struct {
		driver  *encounter.Driver
		indexes []int
		logs    []*combatlog.Log
	}
	groups := make(map[string]*group)
	var order []string

	for i, log := range logs {
		ref := profileFor(log, profileRef, e.cfg)
		g, ok := groups[ref]
		if !ok {
			p, err := e.loader.Resolve(ref)
			if err != nil {
				return nil, fmt.Errorf("loading profile %q: %w", ref, err)
			}
			d, err := encounter.New(p, encounter.WithLogger(e.logger))
			if err != nil {
				return nil, err
			}
			g = &group{driver: d}
			groups[ref] = g
			order = append(order, ref)
		}
		g.indexes = append(g.indexes, i)
		g.logs = append(g.logs, log)
	}

	reports := make([]*report.Report, len(logs))
	var errs []error
	for _, ref := range order {
		g := groups[ref]
		out, err := g.driver.AnalyzeAll(ctx, g.logs)
		for j, r := range out {
			reports[g.indexes[j]] = r
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

func profileFor(log *combatlog.Log, flag string, cfg *config.Config) string {
	switch {
	case flag != "":
		return flag
	case log.Encounter.Profile != "":
		return log.Encounter.Profile
	default:
		return cfg.DefaultProfile
	}
}

func saveReports(w io.Writer, reports []*report.Report) error {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, r := range reports {
		if r == nil {
			continue
		}
		id, err := db.SaveReport(r)
		if err != nil {
			return fmt.Errorf("saving report for %s: %w", r.Encounter.ID, err)
		}
		if !flagJSON {
			fmt.Fprintln(w, output.StyleMuted.Render(fmt.Sprintf(" Saved %s as report #%d", r.Encounter.ID, id)))
		}
	}
	return nil
}

func nonNil(reports []*report.Report) []*report.Report {
	out := make([]*report.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
