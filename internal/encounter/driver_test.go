package encounter

import (
	"context"
	"errors"
	"testing"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
	"github.com/blackwell-systems/combatlens/internal/combatlog"
	"github.com/blackwell-systems/combatlens/internal/profile"
	"github.com/blackwell-systems/combatlens/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	abilityCooldown = 1
	abilityFinisher = 2
	abilityFiller   = 3
	buffEmpower     = 10
	talentGated     = 99
)

func testProfile() *profile.Profile {
	offsets := suggest.DefaultOffsets
	return &profile.Profile{
		Name:    "test",
		Offsets: offsets,
		Abilities: []analyzer.AbilityUsageModel{
			{AbilityID: abilityCooldown, Name: "Cooldown", CooldownMs: 60000, MaxCharges: 1, RecommendedEfficiency: 0.8},
		},
		Uptimes: []profile.Uptime{
			{BuffID: buffEmpower, Name: "Empower", Target: 0.9, Thresholds: offsets.For(0.9, false)},
		},
		Windows: []profile.Window{
			{
				Name: "finisher-in-empower", BuffID: buffEmpower, BuffName: "Empower",
				AbilityID: abilityFinisher, AbilityName: "Finisher",
				ExpectedPerWindow: 2, Target: 0.9, Thresholds: offsets.For(0.9, false),
			},
		},
		Bonuses: []profile.Bonus{
			{Name: "gated", Label: "Gated bonus", BuffID: buffEmpower, BuffName: "Empower", Multiplier: 0.5, RequiresTalent: talentGated},
		},
		Resources: []profile.Resource{
			{
				Model:         analyzer.ResourceModel{Type: "energy", Initial: 100, Ceiling: 100},
				OvercapTarget: 0.05,
				Thresholds:    suggest.Thresholds{Regular: 0.1, Major: 0.2, HigherIsWorse: true},
			},
		},
	}
}

func testLog(id string, talents ...int) *combatlog.Log {
	return &combatlog.Log{
		Source:    id + ".jsonl",
		Encounter: combatlog.Encounter{ID: id, Player: "p1", Talents: talents, Start: 0, End: 120000},
		Ended:     true,
		Events: []combatlog.Event{
			{Kind: combatlog.KindBuffApplied, Timestamp: 0, BuffID: buffEmpower},
			{Kind: combatlog.KindCast, Timestamp: 0, AbilityID: abilityCooldown},
			{Kind: combatlog.KindCast, Timestamp: 1000, AbilityID: abilityFinisher},
			{Kind: combatlog.KindDamage, Timestamp: 1000, AbilityID: abilityFinisher, Amount: 3000},
			{Kind: combatlog.KindBuffRemoved, Timestamp: 30000, BuffID: buffEmpower},
			{Kind: combatlog.KindDamage, Timestamp: 40000, AbilityID: abilityFiller, Amount: 1000},
			{Kind: combatlog.KindResourceChange, Timestamp: 60000, ResourceType: "energy", Delta: 50},
			{Kind: combatlog.KindBuffApplied, Timestamp: 90000, BuffID: buffEmpower},
		},
	}
}

func badLog(id string) *combatlog.Log {
	return &combatlog.Log{
		Encounter: combatlog.Encounter{ID: id, Start: 0, End: 10000},
		Events: []combatlog.Event{
			{Kind: combatlog.KindCast, Timestamp: 5000, AbilityID: abilityCooldown},
			{Kind: combatlog.KindCast, Timestamp: 1000, AbilityID: abilityCooldown},
		},
	}
}

// --- New ---

func TestNew_RejectsInvalidProfile(t *testing.T) {
	p := testProfile()
	p.Abilities[0].CooldownMs = 0

	_, err := New(p)
	var cfgErr *profile.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected *ConfigurationError, got %v", err)
}

func TestNew_NilProfile(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

// --- Analyze ---

func TestAnalyze_FullPipeline(t *testing.T) {
	d, err := New(testProfile())
	require.NoError(t, err)

	r, err := d.Analyze(testLog("e1"))
	require.NoError(t, err)
	require.False(t, r.Partial)

	assert.Equal(t, int64(120000), r.Context.DurationMs)

	require.Len(t, r.Efficiency, 1)
	assert.Equal(t, 1, r.Efficiency[0].Casts)
	assert.Equal(t, 2, r.Efficiency[0].MaxPossibleCasts)
	assert.InDelta(t, 0.5, r.Efficiency[0].Ratio, 1e-9)

	categories := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		categories[i] = is.Category
		assert.Equal(t, suggest.SeverityMajor, is.Severity, "issue %d (%s)", i, is.Category)
	}
	assert.Equal(t, []string{
		suggest.CategoryCastEfficiency,
		suggest.CategoryUptime,
		suggest.CategoryWindow,
		suggest.CategoryResource,
	}, categories)

	keys := make([]string, len(r.Statistics))
	for i, s := range r.Statistics {
		keys[i] = s.Key
	}
	assert.Equal(t, []string{"damage_done", "uptime:10", "window:finisher-in-empower", "resource:energy"}, keys,
		"bonus gated on a missing talent must not be reported")

	dps, _ := r.Find("damage_done")
	assert.InDelta(t, 4000.0/120.0, dps.Value, 1e-9)

	uptime, _ := r.Find("uptime:10")
	assert.InDelta(t, 0.5, uptime.Value, 1e-9)

	window, _ := r.Find("window:finisher-in-empower")
	assert.InDelta(t, 0.25, window.Value, 1e-9)
	assert.Equal(t, "1/4", window.Detail)

	wasted, _ := r.Find("resource:energy")
	assert.Equal(t, 50.0, wasted.Value)
}

func TestAnalyze_TalentGatedBonus(t *testing.T) {
	d, err := New(testProfile())
	require.NoError(t, err)

	r, err := d.Analyze(testLog("e1", talentGated))
	require.NoError(t, err)

	bonus, ok := r.Find("bonus:gated")
	require.True(t, ok, "bonus should be reported when the talent is selected")
	// 3000 damage inside Empower, +50% => 1000 bonus damage over 120s.
	assert.InDelta(t, 1000.0/120.0, bonus.Value, 1e-9)
}

func TestAnalyze_OrderingViolationGivesPartialReport(t *testing.T) {
	d, err := New(testProfile())
	require.NoError(t, err)

	r, err := d.Analyze(badLog("bad"))
	require.Error(t, err)

	var ov *analyzer.OrderingViolationError
	require.True(t, errors.As(err, &ov))
	assert.Equal(t, int64(5000), ov.Last)
	assert.Equal(t, int64(1000), ov.Got)

	require.NotNil(t, r)
	assert.True(t, r.Partial)
	assert.Equal(t, "bad", r.Encounter.ID)
	assert.Empty(t, r.Efficiency)
	assert.Empty(t, r.Issues)
	assert.Empty(t, r.Statistics)
	assert.NotEmpty(t, r.Error)
}

func TestAnalyze_CustomRules(t *testing.T) {
	d, err := New(testProfile(), WithRules(suggest.LowUptime))
	require.NoError(t, err)

	r, err := d.Analyze(testLog("e1"))
	require.NoError(t, err)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, suggest.CategoryUptime, r.Issues[0].Category)
}

func TestAnalyze_Deterministic(t *testing.T) {
	d, err := New(testProfile())
	require.NoError(t, err)

	a, err := d.Analyze(testLog("e1", talentGated))
	require.NoError(t, err)
	b, err := d.Analyze(testLog("e1", talentGated))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// --- AnalyzeAll ---

func TestAnalyzeAll_PreservesOrder(t *testing.T) {
	d, err := New(testProfile(), WithConcurrency(4))
	require.NoError(t, err)

	logs := []*combatlog.Log{testLog("a"), testLog("b"), testLog("c"), testLog("d"), testLog("e")}
	reports, err := d.AnalyzeAll(context.Background(), logs)
	require.NoError(t, err)
	require.Len(t, reports, len(logs))
	for i, r := range reports {
		require.NotNil(t, r, "report %d", i)
		assert.Equal(t, logs[i].Encounter.ID, r.Encounter.ID)
	}
}

func TestAnalyzeAll_FailureDoesNotStopOtherEncounters(t *testing.T) {
	d, err := New(testProfile(), WithConcurrency(1))
	require.NoError(t, err)

	logs := []*combatlog.Log{badLog("bad"), testLog("good1"), testLog("good2")}
	reports, err := d.AnalyzeAll(context.Background(), logs)
	require.Error(t, err)

	var ov *analyzer.OrderingViolationError
	assert.True(t, errors.As(err, &ov))
	assert.Contains(t, err.Error(), "bad")

	require.Len(t, reports, 3)
	require.NotNil(t, reports[0])
	assert.True(t, reports[0].Partial)
	for i, id := range []string{"good1", "good2"} {
		r := reports[i+1]
		require.NotNil(t, r, id)
		assert.Equal(t, id, r.Encounter.ID)
		assert.False(t, r.Partial)
		assert.NotEmpty(t, r.Statistics)
	}
}

func TestAnalyzeAll_JoinsEveryFailure(t *testing.T) {
	d, err := New(testProfile(), WithConcurrency(2))
	require.NoError(t, err)

	logs := []*combatlog.Log{badLog("first"), testLog("ok"), badLog("second")}
	reports, err := d.AnalyzeAll(context.Background(), logs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")

	require.Len(t, reports, 3)
	assert.True(t, reports[0].Partial)
	assert.False(t, reports[1].Partial)
	assert.True(t, reports[2].Partial)
}

func TestAnalyzeAll_CanceledContext(t *testing.T) {
	d, err := New(testProfile())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := d.AnalyzeAll(ctx, []*combatlog.Log{testLog("a")})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, reports, 1)
	assert.Nil(t, reports[0])
}
