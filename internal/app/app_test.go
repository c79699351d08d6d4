package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/combatlens/internal/combatlog"
	"github.com/blackwell-systems/combatlens/internal/config"
	"github.com/blackwell-systems/combatlens/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flagJSON, flagNoColor, flagVerbose, flagConfig = false, false, false, ""
	analyzeProfile, analyzePlayer = "", ""
	analyzeSort, analyzeSave, analyzeBySeverity = false, false, false
	historyLimit = 20
	listenURL, listenSubject, listenPlayer, listenProfile = "", "", "", ""
	listenTimeout, listenSave = 0, false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	profiles := filepath.Join(dir, "profiles")
	require.NoError(t, os.MkdirAll(profiles, 0o755))
	cfg := writeFile(t, dir, "config.yaml", "profile_dirs:\n  - "+profiles+"\nlog:\n  level: error\n")
	return cfg, dir
}

const danceLog = `{"type":"encounter_start","id":"pull-1","name":"Training Dummy","player":"Vex","profile":"subtlety-rogue","start":0}
{"type":"cast","t":0,"source":"Vex","ability":185313}
{"type":"buff_applied","t":0,"source":"Vex","buff":185422}
{"type":"damage","t":2000,"source":"Vex","ability":53,"amount":3000}
{"type":"buff_removed","t":8000,"source":"Vex","buff":185422}
{"type":"damage","t":30000,"source":"Vex","ability":53,"amount":3000}
{"type":"encounter_end","t":60000}
`

// --- profileFor ---

func TestProfileFor_Precedence(t *testing.T) {
	cfg := &config.Config{DefaultProfile: "fallback"}
	withHeader := &combatlog.Log{Encounter: combatlog.Encounter{Profile: "unholy-dk"}}
	bare := &combatlog.Log{}

	assert.Equal(t, "custom.toml", profileFor(withHeader, "custom.toml", cfg))
	assert.Equal(t, "unholy-dk", profileFor(withHeader, "", cfg))
	assert.Equal(t, "fallback", profileFor(bare, "", cfg))
}

// --- formatStatistic ---

func TestFormatStatistic_Units(t *testing.T) {
	assert.Equal(t, "1.50k dps", formatStatistic(report.Statistic{Value: 1500, Unit: report.UnitDPS}))
	assert.Equal(t, "50.00%", formatStatistic(report.Statistic{Value: 0.5, Unit: report.UnitFraction}))
	assert.Equal(t, "12,346", formatStatistic(report.Statistic{Value: 12345.6, Unit: report.UnitAmount}))
}

// --- commands ---

func TestAnalyze_JSON(t *testing.T) {
	cfg, dir := testConfig(t)
	logPath := writeFile(t, dir, "pull-1.jsonl", danceLog)

	out, err := run(t, "--config", cfg, "--json", "analyze", logPath)
	require.NoError(t, err)

	var reports []report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "pull-1", r.Encounter.ID)
	assert.Equal(t, "subtlety-rogue", r.Profile)
	assert.False(t, r.Partial)
	assert.Equal(t, int64(60000), r.Context.DurationMs)

	dmg, ok := r.Find("damage_done")
	require.True(t, ok)
	assert.InDelta(t, 100.0, dmg.Value, 1e-9)

	uptime, ok := r.Find("uptime:185422")
	require.True(t, ok)
	assert.InDelta(t, 8000.0/60000.0, uptime.Value, 1e-9)
}

func TestAnalyze_OrderingViolationIsPartial(t *testing.T) {
	cfg, dir := testConfig(t)
	logPath := writeFile(t, dir, "bad.jsonl", `{"type":"encounter_start","id":"bad","player":"Vex","start":0}
{"type":"cast","t":5000,"source":"Vex","ability":185313}
{"type":"cast","t":1000,"source":"Vex","ability":185313}
{"type":"encounter_end","t":60000}
`)

	out, err := run(t, "--config", cfg, "--json", "analyze", logPath)
	require.Error(t, err)

	var reports []report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Partial)
	assert.Contains(t, reports[0].Error, "precedes")
	assert.Empty(t, reports[0].Statistics)
}

func TestAnalyze_Text(t *testing.T) {
	cfg, dir := testConfig(t)
	logPath := writeFile(t, dir, "pull-1.jsonl", danceLog)

	out, err := run(t, "--config", cfg, "analyze", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Training Dummy (pull-1)")
	assert.Contains(t, out, "Cast Efficiency")
	assert.Contains(t, out, "Suggestions")
}

func TestAnalyze_UnknownProfile(t *testing.T) {
	cfg, dir := testConfig(t)
	logPath := writeFile(t, dir, "pull-1.jsonl", danceLog)

	_, err := run(t, "--config", cfg, "analyze", "--profile", "does-not-exist", logPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestProfiles_ListIncludesDirectoryAndBuiltins(t *testing.T) {
	cfg, dir := testConfig(t)
	writeFile(t, filepath.Join(dir, "profiles"), "custom.toml", `[profile]
name = "custom"
description = "Local profile"

[[ability]]
id = 1
name = "Strike"
cooldown_ms = 10000
recommended_efficiency = 0.8
`)

	out, err := run(t, "--config", cfg, "profiles")
	require.NoError(t, err)
	for _, name := range []string{"custom", "subtlety-rogue", "unholy-dk"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Local profile")
}

func TestProfiles_Show(t *testing.T) {
	cfg, _ := testConfig(t)

	out, err := run(t, "--config", cfg, "profiles", "subtlety-rogue")
	require.NoError(t, err)
	assert.Contains(t, out, "Shadow Dance")
	assert.Contains(t, out, "energy")
	assert.True(t, strings.Contains(out, "Abilities"))
}
