// Package combatlog decodes combat event streams into typed events.
package combatlog

// Kind identifies the variant carried by an Event.
type Kind string

const (
	KindCast           Kind = "cast"
	KindBuffApplied    Kind = "buff_applied"
	KindBuffRemoved    Kind = "buff_removed"
	KindDamage         Kind = "damage"
	KindResourceChange Kind = "resource_change"
)

// Valid reports whether k is one of the known event kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCast, KindBuffApplied, KindBuffRemoved, KindDamage, KindResourceChange:
		return true
	}
	return false
}

// Event is a single combat event for the tracked player. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind Kind `json:"type"`

	// Timestamp is milliseconds since encounter start.
	Timestamp int64  `json:"t"`
	SourceID  string `json:"source,omitempty"`

	// AbilityID is set for casts and, optionally, damage.
	AbilityID int `json:"ability,omitempty"`

	// BuffID is set for buff_applied and buff_removed.
	BuffID int `json:"buff,omitempty"`

	// Amount is the damage dealt by a damage event.
	Amount int64 `json:"amount,omitempty"`

	// ResourceType and Delta describe a resource_change event.
	ResourceType string `json:"resource,omitempty"`
	Delta        int64  `json:"delta,omitempty"`
}

// Encounter describes the fight an event stream belongs to.
type Encounter struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Player  string `json:"player"`
	Profile string `json:"profile,omitempty"`
	Talents []int  `json:"talents,omitempty"`

	// Start and End are milliseconds on the same clock as event timestamps.
	// End is zero until an encounter_end line has been seen.
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// HasTalent reports whether the combatant had the given talent selected.
func (e Encounter) HasTalent(id int) bool {
	for _, t := range e.Talents {
		if t == id {
			return true
		}
	}
	return false
}

// Log is one decoded encounter: its header and the ordered events.
type Log struct {
	Source    string    `json:"source"`
	Encounter Encounter `json:"encounter"`
	Events    []Event   `json:"events"`

	// Ended is true once an encounter_end line fixed Encounter.End.
	Ended bool `json:"ended"`

	// Skipped counts malformed or unknown lines that were ignored.
	Skipped int `json:"skipped"`
}
