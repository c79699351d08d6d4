// Package profile loads and validates the ability usage models, uptime
// targets and attribution windows that drive the analysis of one specialization.
package profile

import (
	"fmt"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
	"github.com/blackwell-systems/combatlens/internal/suggest"
)

// Profile is the capability set for one specialization. It is plain data:
// the encounter driver composes it with the analysis packages.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Source is the file or builtin the profile was read from.
	Source string `json:"source"`

	Offsets   suggest.Offsets              `json:"offsets"`
	Abilities []analyzer.AbilityUsageModel `json:"abilities"`
	Uptimes   []Uptime                     `json:"uptimes,omitempty"`
	Windows   []Window                     `json:"windows,omitempty"`
	Bonuses   []Bonus                      `json:"bonuses,omitempty"`
	Resources []Resource                   `json:"resources,omitempty"`
}

// Uptime is a buff or debuff whose uptime is reported. A zero Target makes
// it a statistic only.
type Uptime struct {
	BuffID     int                `json:"buff_id"`
	Name       string             `json:"name"`
	Target     float64            `json:"target,omitempty"`
	Thresholds suggest.Thresholds `json:"thresholds"`
}

// Window measures casts of an ability inside the intervals of a buff
// against ExpectedPerWindow casts per interval.
type Window struct {
	Name              string             `json:"name"`
	Label             string             `json:"label"`
	BuffID            int                `json:"buff_id"`
	BuffName          string             `json:"buff_name"`
	AbilityID         int                `json:"ability_id"`
	AbilityName       string             `json:"ability_name"`
	ExpectedPerWindow int                `json:"expected_per_window"`
	RequiresTalent    int                `json:"requires_talent,omitempty"`
	Target            float64            `json:"target,omitempty"`
	Thresholds        suggest.Thresholds `json:"thresholds"`
}

// Bonus is a multiplicative damage increase active during a buff. The share
// of damage it contributed is damage * m / (1 + m).
type Bonus struct {
	Name           string  `json:"name"`
	Label          string  `json:"label"`
	BuffID         int     `json:"buff_id"`
	BuffName       string  `json:"buff_name"`
	Multiplier     float64 `json:"multiplier"`
	RequiresTalent int     `json:"requires_talent,omitempty"`
}

// Resource bounds a resource pool and sets the tolerated overcap waste.
type Resource struct {
	Model         analyzer.ResourceModel `json:"model"`
	OvercapTarget float64                `json:"overcap_target"`
	Thresholds    suggest.Thresholds     `json:"thresholds"`
}

// ResourceModels returns the pool bounds for the accumulator.
func (p *Profile) ResourceModels() []analyzer.ResourceModel {
	models := make([]analyzer.ResourceModel, 0, len(p.Resources))
	for _, r := range p.Resources {
		models = append(models, r.Model)
	}
	return models
}

// AbilityIndex maps ability IDs to their usage model.
func (p *Profile) AbilityIndex() map[int]analyzer.AbilityUsageModel {
	index := make(map[int]analyzer.AbilityUsageModel, len(p.Abilities))
	for _, a := range p.Abilities {
		index[a.AbilityID] = a
	}
	return index
}

// ConfigurationError reports an invalid profile. It is raised before any
// event is processed.
type ConfigurationError struct {
	Profile string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("profile %s: %s", e.Profile, e.Reason)
	}
	return fmt.Sprintf("profile %s: %s: %s", e.Profile, e.Field, e.Reason)
}

// Validate checks every model and threshold in the profile.
func (p *Profile) Validate() error {
	fail := func(field, format string, args ...any) error {
		return &ConfigurationError{Profile: p.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if p.Name == "" {
		return &ConfigurationError{Profile: p.Source, Reason: "name is required"}
	}
	if err := p.Offsets.Validate(); err != nil {
		return fail("profile", "%v", err)
	}

	seen := make(map[int]bool, len(p.Abilities))
	for i, a := range p.Abilities {
		field := fmt.Sprintf("ability[%d]", i)
		if a.AbilityID <= 0 {
			return fail(field+".id", "must be positive")
		}
		if seen[a.AbilityID] {
			return fail(field+".id", "duplicate ability %d", a.AbilityID)
		}
		seen[a.AbilityID] = true
		if a.CooldownMs <= 0 {
			return fail(field+".cooldown_ms", "must be positive, got %d", a.CooldownMs)
		}
		if a.MaxCharges < 1 {
			return fail(field+".max_charges", "must be at least 1, got %d", a.MaxCharges)
		}
		if a.FirstAvailableMs < 0 {
			return fail(field+".first_available_ms", "must not be negative")
		}
		if a.RecommendedEfficiency < 0 || a.RecommendedEfficiency > 1 {
			return fail(field+".recommended_efficiency", "must be in [0, 1], got %.4g", a.RecommendedEfficiency)
		}
		if a.Importance != "" {
			if _, err := suggest.ParseSeverity(a.Importance); err != nil {
				return fail(field+".importance", "%v", err)
			}
		}
		if err := p.Offsets.For(a.RecommendedEfficiency, false).Validate(); err != nil {
			return fail(field, "%v", err)
		}
	}

	for i, u := range p.Uptimes {
		field := fmt.Sprintf("uptime[%d]", i)
		if u.BuffID <= 0 {
			return fail(field+".buff_id", "must be positive")
		}
		if u.Target < 0 || u.Target > 1 {
			return fail(field+".target", "must be in [0, 1], got %.4g", u.Target)
		}
		if err := u.Thresholds.Validate(); err != nil {
			return fail(field, "%v", err)
		}
	}

	names := make(map[string]bool, len(p.Windows)+len(p.Bonuses))
	for i, w := range p.Windows {
		field := fmt.Sprintf("window[%d]", i)
		if w.Name == "" {
			return fail(field+".name", "is required")
		}
		if names[w.Name] {
			return fail(field+".name", "duplicate name %q", w.Name)
		}
		names[w.Name] = true
		if w.BuffID <= 0 || w.AbilityID <= 0 {
			return fail(field, "buff_id and ability_id must be positive")
		}
		if w.ExpectedPerWindow < 1 {
			return fail(field+".expected_per_window", "must be at least 1")
		}
		if err := w.Thresholds.Validate(); err != nil {
			return fail(field, "%v", err)
		}
	}

	for i, b := range p.Bonuses {
		field := fmt.Sprintf("bonus[%d]", i)
		if b.Name == "" {
			return fail(field+".name", "is required")
		}
		if names[b.Name] {
			return fail(field+".name", "duplicate name %q", b.Name)
		}
		names[b.Name] = true
		if b.BuffID <= 0 {
			return fail(field+".buff_id", "must be positive")
		}
		if b.Multiplier <= 0 {
			return fail(field+".multiplier", "must be positive, got %.4g", b.Multiplier)
		}
	}

	types := make(map[string]bool, len(p.Resources))
	for i, r := range p.Resources {
		field := fmt.Sprintf("resource[%d]", i)
		if r.Model.Type == "" {
			return fail(field+".type", "is required")
		}
		if types[r.Model.Type] {
			return fail(field+".type", "duplicate resource %q", r.Model.Type)
		}
		types[r.Model.Type] = true
		if r.Model.Ceiling > 0 && r.Model.Ceiling < r.Model.Floor {
			return fail(field+".ceiling", "must not be below floor %d", r.Model.Floor)
		}
		if r.Model.Ceiling > 0 && (r.Model.Initial > r.Model.Ceiling || r.Model.Initial < r.Model.Floor) {
			return fail(field+".initial", "must lie within [floor, ceiling]")
		}
		if err := r.Thresholds.Validate(); err != nil {
			return fail(field, "%v", err)
		}
	}

	return nil
}
