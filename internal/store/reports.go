package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
	"github.com/blackwell-systems/combatlens/internal/report"
	"github.com/blackwell-systems/combatlens/internal/suggest"
)

// SaveReport archives a report with its efficiency results, issues and
// statistics, and returns the new report ID.
func (db *DB) SaveReport(r *report.Report) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var dps float64
	if s, ok := r.Find("damage_done"); ok {
		dps = s.Value
	}

	result, err := tx.Exec(
		`INSERT INTO encounters
		(saved_at, encounter_id, encounter_name, player, profile, fight_start, fight_end,
		 duration_ms, dps, skipped, partial, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), r.Encounter.ID, r.Encounter.Name, r.Encounter.Player,
		r.Profile, r.Context.FightStart, r.Context.FightEnd, r.Context.DurationMs,
		dps, r.Skipped, r.Partial, r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting encounter: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, e := range r.Efficiency {
		if _, err := tx.Exec(
			`INSERT INTO efficiency_results
			(report_id, position, ability_id, name, casts, max_possible_casts, ratio, recommended, can_be_improved)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, e.AbilityID, e.Name, e.Casts, e.MaxPossibleCasts, e.Ratio,
			e.RecommendedEfficiency, e.CanBeImproved,
		); err != nil {
			return 0, fmt.Errorf("inserting efficiency result: %w", err)
		}
	}

	for i, is := range r.Issues {
		if _, err := tx.Exec(
			`INSERT INTO issues
			(report_id, position, severity, category, subject_id, message, metric_value)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, is.Severity.String(), is.Category, is.SubjectID, is.Message, is.MetricValue,
		); err != nil {
			return 0, fmt.Errorf("inserting issue: %w", err)
		}
	}

	for i, s := range r.Statistics {
		if _, err := tx.Exec(
			`INSERT INTO statistics
			(report_id, position, stat_key, label, value, unit, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, s.Key, s.Label, s.Value, s.Unit, s.Detail,
		); err != nil {
			return 0, fmt.Errorf("inserting statistic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const summaryColumns = `
	e.id, e.saved_at, e.encounter_id, e.encounter_name, e.player, e.profile,
	e.duration_ms, e.dps, e.skipped, e.partial, e.error,
	(SELECT COUNT(*) FROM issues i WHERE i.report_id = e.id AND i.severity = 'major'),
	(SELECT COUNT(*) FROM issues i WHERE i.report_id = e.id AND i.severity = 'regular'),
	(SELECT COUNT(*) FROM issues i WHERE i.report_id = e.id AND i.severity = 'minor')`

// ListReports returns the most recent reports, newest first. A limit of
// zero or less returns every report.
func (db *DB) ListReports(limit int) ([]ReportSummary, error) {
	query := "SELECT " + summaryColumns + " FROM encounters e ORDER BY e.id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ReportSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetReport returns one report summary, or nil if it does not exist.
func (db *DB) GetReport(id int64) (*ReportSummary, error) {
	row := db.conn.QueryRow("SELECT "+summaryColumns+" FROM encounters e WHERE e.id = ?", id)
	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// PreviousDPS returns the DPS of the latest complete report for the same
// encounter name and profile saved before report id.
func (db *DB) PreviousDPS(id int64) (float64, bool, error) {
	row := db.conn.QueryRow(
		`SELECT p.dps FROM encounters p, encounters c
		 WHERE c.id = ? AND p.id < c.id AND p.partial = false
		   AND p.encounter_name IS c.encounter_name AND p.profile = c.profile
		 ORDER BY p.id DESC LIMIT 1`,
		id,
	)
	var dps float64
	err := row.Scan(&dps)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return dps, true, nil
}

// GetIssues returns the issues of a report in evaluation order.
func (db *DB) GetIssues(reportID int64) ([]suggest.Issue, error) {
	rows, err := db.conn.Query(
		`SELECT severity, category, subject_id, message, metric_value
		 FROM issues WHERE report_id = ? ORDER BY position`,
		reportID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var issues []suggest.Issue
	for rows.Next() {
		var is suggest.Issue
		var severity string
		if err := rows.Scan(&severity, &is.Category, &is.SubjectID, &is.Message, &is.MetricValue); err != nil {
			return nil, err
		}
		if is.Severity, err = suggest.ParseSeverity(severity); err != nil {
			return nil, fmt.Errorf("report %d: %w", reportID, err)
		}
		issues = append(issues, is)
	}
	return issues, rows.Err()
}

// GetStatistics returns the statistics of a report in their saved order.
func (db *DB) GetStatistics(reportID int64) ([]report.Statistic, error) {
	rows, err := db.conn.Query(
		`SELECT stat_key, label, value, unit, detail
		 FROM statistics WHERE report_id = ? ORDER BY position`,
		reportID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stats []report.Statistic
	for rows.Next() {
		var s report.Statistic
		var detail sql.NullString
		if err := rows.Scan(&s.Key, &s.Label, &s.Value, &s.Unit, &detail); err != nil {
			return nil, err
		}
		s.Detail = detail.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetEfficiency returns the cast-efficiency results of a report.
func (db *DB) GetEfficiency(reportID int64) ([]analyzer.EfficiencyResult, error) {
	rows, err := db.conn.Query(
		`SELECT ability_id, name, casts, max_possible_casts, ratio, recommended, can_be_improved
		 FROM efficiency_results WHERE report_id = ? ORDER BY position`,
		reportID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []analyzer.EfficiencyResult
	for rows.Next() {
		var e analyzer.EfficiencyResult
		var name sql.NullString
		if err := rows.Scan(&e.AbilityID, &name, &e.Casts, &e.MaxPossibleCasts,
			&e.Ratio, &e.RecommendedEfficiency, &e.CanBeImproved); err != nil {
			return nil, err
		}
		e.Name = name.String
		results = append(results, e)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*ReportSummary, error) {
	var s ReportSummary
	var savedAt string
	var name, player, errText sql.NullString
	if err := row.Scan(
		&s.ID, &savedAt, &s.EncounterID, &name, &player, &s.Profile,
		&s.DurationMs, &s.DPS, &s.Skipped, &s.Partial, &errText,
		&s.Major, &s.Regular, &s.Minor,
	); err != nil {
		return nil, err
	}
	s.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
	s.EncounterName = name.String
	s.Player = player.String
	s.Error = errText.String
	return &s, nil
}
