package suggest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
)

// CastEfficiency raises an issue for every ability whose cast ratio is below
// its recommended efficiency. An ability's importance override wins over
// the computed severity.
func CastEfficiency(ctx *Context) []Issue {
	var issues []Issue
	for _, r := range ctx.Efficiency {
		if !r.CanBeImproved {
			continue
		}
		model := ctx.Abilities[r.AbilityID]

		severity := castSeverity(ctx.Offsets, r, model.HigherIsWorse)
		if model.Importance != "" {
			if forced, err := ParseSeverity(model.Importance); err == nil {
				severity = forced
			}
		}

		name := r.Name
		if name == "" {
			name = "ability " + strconv.Itoa(r.AbilityID)
		}
		message := fmt.Sprintf(
			"Try to cast %s more often (%d/%d casts: %.0f%% cast efficiency). %s",
			name, r.Casts, r.MaxPossibleCasts, math.Round(r.Ratio*100), model.ExtraSuggestion,
		)

		issues = append(issues, Issue{
			Severity:    severity,
			Category:    CategoryCastEfficiency,
			SubjectID:   strconv.Itoa(r.AbilityID),
			Message:     strings.TrimSpace(message),
			MetricValue: r.Ratio,
		})
	}
	return issues
}

// castSeverity classifies a cast ratio that fell short of its recommended
// efficiency. With higherIsWorse the metric is the shortfall below the
// recommendation, classified against the offsets themselves.
func castSeverity(o Offsets, r analyzer.EfficiencyResult, higherIsWorse bool) Severity {
	if higherIsWorse {
		return o.For(0, true).Classify(r.RecommendedEfficiency - r.Ratio)
	}
	return o.For(r.RecommendedEfficiency, false).Classify(r.Ratio)
}

// LowUptime flags buffs and debuffs kept up for less than their target.
func LowUptime(ctx *Context) []Issue {
	var issues []Issue
	for _, u := range ctx.Uptimes {
		if u.Uptime >= u.Target {
			continue
		}
		issues = append(issues, Issue{
			Severity:  u.Thresholds.Classify(u.Uptime),
			Category:  CategoryUptime,
			SubjectID: strconv.Itoa(u.BuffID),
			Message: fmt.Sprintf(
				"Your %s uptime can be improved (%.2f%% uptime, aim for at least %.0f%%).",
				u.Name, u.Uptime*100, u.Target*100,
			),
			MetricValue: u.Uptime,
		})
	}
	return issues
}

// WindowUsage flags buff windows that were not filled with the expected
// number of casts.
func WindowUsage(ctx *Context) []Issue {
	var issues []Issue
	for _, w := range ctx.Windows {
		if w.Possible == 0 {
			continue
		}
		ratio := w.Ratio()
		if ratio >= w.Target {
			continue
		}
		issues = append(issues, Issue{
			Severity:  w.Thresholds.Classify(ratio),
			Category:  CategoryWindow,
			SubjectID: w.Name,
			Message: fmt.Sprintf(
				"Cast more %s during %s (%d/%d possible casts: %.0f%%).",
				w.AbilityName, w.BuffName, w.Actual, w.Possible, math.Round(ratio*100),
			),
			MetricValue: ratio,
		})
	}
	return issues
}

// ResourceOvercap flags resources where too much generation was lost to
// the cap.
func ResourceOvercap(ctx *Context) []Issue {
	var issues []Issue
	for _, r := range ctx.Resources {
		wasted := r.Ledger.WastedFraction()
		if wasted <= r.Target {
			continue
		}
		issues = append(issues, Issue{
			Severity:  r.Thresholds.Classify(wasted),
			Category:  CategoryResource,
			SubjectID: r.Ledger.Type,
			Message: fmt.Sprintf(
				"You wasted %d %s by overcapping (%.1f%% of %d generated).",
				r.Ledger.Overcap, r.Ledger.Type, wasted*100, r.Ledger.Generated,
			),
			MetricValue: wasted,
		})
	}
	return issues
}
