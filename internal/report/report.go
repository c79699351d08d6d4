// Package report assembles the per-encounter output: efficiency results,
// issues and an ordered list of statistics.
package report

import (
	"fmt"
	"strconv"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
	"github.com/blackwell-systems/combatlens/internal/combatlog"
	"github.com/blackwell-systems/combatlens/internal/profile"
	"github.com/blackwell-systems/combatlens/internal/suggest"
)

// Statistic units.
const (
	UnitDPS      = "dps"
	UnitFraction = "fraction"
	UnitAmount   = "amount"
)

// Statistic is one labelled number in a report.
type Statistic struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Detail string  `json:"detail,omitempty"`
}

// Report is the result of analyzing one encounter.
type Report struct {
	Encounter combatlog.Encounter       `json:"encounter"`
	Profile   string                    `json:"profile"`
	Context   analyzer.EncounterContext `json:"context"`

	Efficiency []analyzer.EfficiencyResult `json:"efficiency"`
	Issues     []suggest.Issue             `json:"issues"`
	Statistics []Statistic                 `json:"statistics"`

	// Skipped counts input lines that could not be decoded.
	Skipped int `json:"skipped,omitempty"`

	// Partial is set when the analysis stopped early. Only the encounter
	// header and Error are filled in.
	Partial bool   `json:"partial,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Input is everything Assemble needs from a finished analysis pass.
type Input struct {
	Encounter   combatlog.Encounter
	Profile     *profile.Profile
	Accumulator *analyzer.Accumulator
	Signals     *suggest.Context
	Issues      []suggest.Issue
	Skipped     int
}

// Assemble builds the report for a completed pass. The accumulator must
// have been ended.
func Assemble(in Input) *Report {
	acc := in.Accumulator
	r := &Report{
		Encounter:  in.Encounter,
		Profile:    in.Profile.Name,
		Context:    acc.Context(),
		Efficiency: in.Signals.Efficiency,
		Issues:     in.Issues,
		Skipped:    in.Skipped,
	}
	if r.Issues == nil {
		r.Issues = []suggest.Issue{}
	}
	if r.Efficiency == nil {
		r.Efficiency = []analyzer.EfficiencyResult{}
	}
	r.Statistics = Statistics(in)
	return r
}

// Partial builds the report for a pass that failed before completion.
func Partial(enc combatlog.Encounter, profileName string, skipped int, err error) *Report {
	return &Report{
		Encounter:  enc,
		Profile:    profileName,
		Context:    analyzer.NewEncounterContext(enc.Start, enc.Start),
		Efficiency: []analyzer.EfficiencyResult{},
		Issues:     []suggest.Issue{},
		Statistics: []Statistic{},
		Skipped:    skipped,
		Partial:    true,
		Error:      err.Error(),
	}
}

// Statistics computes the ordered statistics: damage done, uptimes, window
// usage, damage bonuses and resource waste.
func Statistics(in Input) []Statistic {
	acc := in.Accumulator
	duration := acc.Context().DurationMs
	stats := make([]Statistic, 0, 1+len(in.Signals.Uptimes)+len(in.Signals.Windows)+len(in.Profile.Bonuses)+len(in.Signals.Resources))

	total := acc.TotalDamage()
	stats = append(stats, Statistic{
		Key:    "damage_done",
		Label:  "Damage done",
		Value:  perSecond(float64(total), duration),
		Unit:   UnitDPS,
		Detail: fmt.Sprintf("%d total damage", total),
	})

	for _, u := range in.Signals.Uptimes {
		stats = append(stats, Statistic{
			Key:    "uptime:" + strconv.Itoa(u.BuffID),
			Label:  u.Name + " uptime",
			Value:  u.Uptime,
			Unit:   UnitFraction,
			Detail: fmt.Sprintf("%d ms of %d ms", acc.UptimeOf(u.BuffID), duration),
		})
	}

	for _, w := range in.Signals.Windows {
		stats = append(stats, Statistic{
			Key:    "window:" + w.Name,
			Label:  fmt.Sprintf("%s during %s", w.AbilityName, w.BuffName),
			Value:  w.Ratio(),
			Unit:   UnitFraction,
			Detail: fmt.Sprintf("%d/%d", w.Actual, w.Possible),
		})
	}

	for _, b := range in.Profile.Bonuses {
		if b.RequiresTalent != 0 && !in.Encounter.HasTalent(b.RequiresTalent) {
			continue
		}
		during := analyzer.DamageWhile(acc, b.BuffID)
		bonus := float64(during) * b.Multiplier / (1 + b.Multiplier)
		stats = append(stats, Statistic{
			Key:    "bonus:" + b.Name,
			Label:  b.Label,
			Value:  perSecond(bonus, duration),
			Unit:   UnitDPS,
			Detail: fmt.Sprintf("%.0f damage over %d %s windows", bonus, len(acc.Intervals(b.BuffID)), b.BuffName),
		})
	}

	for _, res := range in.Signals.Resources {
		l := res.Ledger
		stats = append(stats, Statistic{
			Key:    "resource:" + l.Type,
			Label:  "Wasted " + l.Type,
			Value:  float64(l.Overcap),
			Unit:   UnitAmount,
			Detail: fmt.Sprintf("%.1f%% of %d generated", l.WastedFraction()*100, l.Generated),
		})
	}

	return stats
}

// Find returns the statistic with key, if present.
func (r *Report) Find(key string) (Statistic, bool) {
	for _, s := range r.Statistics {
		if s.Key == key {
			return s, true
		}
	}
	return Statistic{}, false
}

func perSecond(amount float64, durationMs int64) float64 {
	return analyzer.Ratio(amount*1000, float64(durationMs))
}
