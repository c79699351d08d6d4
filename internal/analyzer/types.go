// Package analyzer derives performance signals from a combat event stream:
// buff uptime, resource ledgers, damage attribution and cast efficiency.
package analyzer

import "fmt"

// EncounterContext holds the time bounds of one encounter. FightEnd and
// DurationMs are fixed once the accumulator has been ended.
type EncounterContext struct {
	FightStart int64 `json:"fight_start"`
	FightEnd   int64 `json:"fight_end"`
	DurationMs int64 `json:"duration_ms"`
}

// NewEncounterContext builds a context for a fight spanning [start, end].
func NewEncounterContext(start, end int64) EncounterContext {
	duration := end - start
	if duration < 0 {
		duration = 0
	}
	return EncounterContext{FightStart: start, FightEnd: end, DurationMs: duration}
}

// Interval is a contiguous span during which a buff was active. Open is set
// when the buff had not been removed at query time; End is then the query
// horizon.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Open  bool  `json:"open,omitempty"`
}

// Duration returns End - Start.
func (iv Interval) Duration() int64 {
	return iv.End - iv.Start
}

// Contains reports whether ts lies in [Start, End]. Both bounds are inclusive.
func (iv Interval) Contains(ts int64) bool {
	return ts >= iv.Start && ts <= iv.End
}

// DamageInstance is one recorded hit.
type DamageInstance struct {
	Timestamp int64 `json:"timestamp"`
	AbilityID int   `json:"ability_id,omitempty"`
	Amount    int64 `json:"amount"`
}

// ResourceModel bounds a resource pool. A Ceiling of zero means unbounded.
type ResourceModel struct {
	Type    string `json:"type"`
	Initial int64  `json:"initial"`
	Floor   int64  `json:"floor"`
	Ceiling int64  `json:"ceiling"`
}

// ResourceLedger is the running account of one resource type.
type ResourceLedger struct {
	Type      string `json:"type"`
	Current   int64  `json:"current"`
	Generated int64  `json:"generated"`
	Spent     int64  `json:"spent"`

	// Overcap is gain lost to the ceiling; Underflow is spend below the floor.
	Overcap   int64 `json:"overcap"`
	Underflow int64 `json:"underflow"`
	Changes   int   `json:"changes"`
}

// WastedFraction is Overcap / Generated, or 0 when nothing was generated.
func (l ResourceLedger) WastedFraction() float64 {
	return Ratio(float64(l.Overcap), float64(l.Generated))
}

// AbilityUsageModel is the expected usage of one ability.
type AbilityUsageModel struct {
	AbilityID int    `json:"ability_id"`
	Name      string `json:"name"`

	CooldownMs       int64 `json:"cooldown_ms"`
	MaxCharges       int   `json:"max_charges"`
	FirstAvailableMs int64 `json:"first_available_ms,omitempty"`

	// RecommendedEfficiency is the target cast ratio in [0, 1].
	RecommendedEfficiency float64 `json:"recommended_efficiency"`

	NoSuggestion bool `json:"no_suggestion,omitempty"`

	// Importance, when set, forces the severity of any issue raised for the
	// ability ("minor", "regular" or "major").
	Importance string `json:"importance,omitempty"`

	// HigherIsWorse classifies the shortfall below RecommendedEfficiency
	// rather than the ratio itself.
	HigherIsWorse bool `json:"higher_is_worse,omitempty"`

	ExtraSuggestion string `json:"extra_suggestion,omitempty"`
}

// EfficiencyResult compares actual casts of an ability with the maximum the
// encounter allowed.
type EfficiencyResult struct {
	AbilityID             int     `json:"ability_id"`
	Name                  string  `json:"name"`
	Casts                 int     `json:"casts"`
	MaxPossibleCasts      int     `json:"max_possible_casts"`
	Ratio                 float64 `json:"ratio"`
	RecommendedEfficiency float64 `json:"recommended_efficiency"`
	CanBeImproved         bool    `json:"can_be_improved"`
}

// WindowStat is what happened inside one buff interval.
type WindowStat struct {
	Interval Interval `json:"interval"`
	Casts    int      `json:"casts"`
	Damage   int64    `json:"damage"`
}

// OrderingViolationError reports an event older than the one before it.
// Once returned, the accumulator rejects every later event.
type OrderingViolationError struct {
	// Index is the zero-based position of the offending event.
	Index int
	Last  int64
	Got   int64
}

func (e *OrderingViolationError) Error() string {
	return fmt.Sprintf("event %d at %dms precedes previous event at %dms", e.Index, e.Got, e.Last)
}

// Ratio divides num by den, returning 0 when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
