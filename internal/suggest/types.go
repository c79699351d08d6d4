// Package suggest classifies performance signals into severity-ranked issues.
package suggest

import "github.com/blackwell-systems/combatlens/internal/analyzer"

// Issue categories.
const (
	CategoryCastEfficiency = "cast_efficiency"
	CategoryUptime         = "uptime"
	CategoryWindow         = "window"
	CategoryResource       = "resource"
)

// Issue is one deficiency found in an encounter.
type Issue struct {
	Severity  Severity `json:"severity"`
	Category  string   `json:"category"`
	SubjectID string   `json:"subject_id"`
	Message   string   `json:"message"`

	// MetricValue is the number the message was built from.
	MetricValue float64 `json:"metric_value"`
}

// Context carries every signal the rules evaluate. It is assembled by the
// encounter driver from the accumulator and the active profile.
type Context struct {
	// Efficiency holds one result per tracked ability, in profile order.
	Efficiency []analyzer.EfficiencyResult

	// Abilities maps ability ID to its usage model.
	Abilities map[int]analyzer.AbilityUsageModel

	// Offsets derive cast-efficiency thresholds from recommended efficiency.
	Offsets Offsets

	Uptimes   []UptimeSignal
	Windows   []WindowSignal
	Resources []ResourceSignal
}

// UptimeSignal is a buff uptime measured against a target.
type UptimeSignal struct {
	BuffID int
	Name   string

	// Uptime is the active fraction of the encounter.
	Uptime float64

	// Target is the uptime below which an issue is raised.
	Target     float64
	Thresholds Thresholds
}

// WindowSignal is the use of an ability inside buff windows, e.g. finishers
// per Shadow Dance.
type WindowSignal struct {
	Name        string
	AbilityName string
	BuffName    string
	Actual      int
	Possible    int
	Target      float64
	Thresholds  Thresholds
}

// Ratio is Actual / Possible, or 0 when nothing was possible.
func (w WindowSignal) Ratio() float64 {
	return analyzer.Ratio(float64(w.Actual), float64(w.Possible))
}

// ResourceSignal is a resource ledger checked for overcap waste.
type ResourceSignal struct {
	Ledger analyzer.ResourceLedger

	// Target is the wasted fraction above which an issue is raised.
	Target     float64
	Thresholds Thresholds
}

// Rule is a function that examines the context and produces zero or more
// issues.
type Rule func(ctx *Context) []Issue
