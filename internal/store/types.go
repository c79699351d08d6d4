// Package store archives analyzed encounter reports in SQLite.
package store

import "time"

// ReportSummary is one archived report without its detail rows.
type ReportSummary struct {
	ID            int64     `json:"id"`
	SavedAt       time.Time `json:"saved_at"`
	EncounterID   string    `json:"encounter_id"`
	EncounterName string    `json:"encounter_name,omitempty"`
	Player        string    `json:"player,omitempty"`
	Profile       string    `json:"profile"`
	DurationMs    int64     `json:"duration_ms"`
	DPS           float64   `json:"dps"`
	Skipped       int       `json:"skipped,omitempty"`
	Partial       bool      `json:"partial,omitempty"`
	Error         string    `json:"error,omitempty"`

	// Issue counts by severity.
	Major   int `json:"major"`
	Regular int `json:"regular"`
	Minor   int `json:"minor"`
}
