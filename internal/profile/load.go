package profile

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
	"github.com/blackwell-systems/combatlens/internal/suggest"
	"github.com/pelletier/go-toml/v2"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

const fileExt = ".toml"

// document mirrors the TOML layout of a profile file.
type document struct {
	Profile struct {
		Name          string   `toml:"name"`
		Description   string   `toml:"description"`
		RegularOffset *float64 `toml:"regular_offset"`
		MajorOffset   *float64 `toml:"major_offset"`
	} `toml:"profile"`

	Abilities []abilityDoc  `toml:"ability"`
	Uptimes   []uptimeDoc   `toml:"uptime"`
	Windows   []windowDoc   `toml:"window"`
	Bonuses   []bonusDoc    `toml:"bonus"`
	Resources []resourceDoc `toml:"resource"`
}

type abilityDoc struct {
	ID                    int     `toml:"id"`
	Name                  string  `toml:"name"`
	CooldownMs            int64   `toml:"cooldown_ms"`
	MaxCharges            int     `toml:"max_charges"`
	FirstAvailableMs      int64   `toml:"first_available_ms"`
	RecommendedEfficiency float64 `toml:"recommended_efficiency"`
	NoSuggestion          bool    `toml:"no_suggestion"`
	Importance            string  `toml:"importance"`
	HigherIsWorse         bool    `toml:"higher_is_worse"`
	ExtraSuggestion       string  `toml:"extra_suggestion"`
}

type uptimeDoc struct {
	BuffID  int      `toml:"buff_id"`
	Name    string   `toml:"name"`
	Target  float64  `toml:"target"`
	Regular *float64 `toml:"regular"`
	Major   *float64 `toml:"major"`
}

type windowDoc struct {
	Name              string   `toml:"name"`
	Label             string   `toml:"label"`
	BuffID            int      `toml:"buff_id"`
	BuffName          string   `toml:"buff_name"`
	AbilityID         int      `toml:"ability_id"`
	AbilityName       string   `toml:"ability_name"`
	ExpectedPerWindow int      `toml:"expected_per_window"`
	RequiresTalent    int      `toml:"requires_talent"`
	Target            float64  `toml:"target"`
	Regular           *float64 `toml:"regular"`
	Major             *float64 `toml:"major"`
}

type bonusDoc struct {
	Name           string  `toml:"name"`
	Label          string  `toml:"label"`
	BuffID         int     `toml:"buff_id"`
	BuffName       string  `toml:"buff_name"`
	Multiplier     float64 `toml:"multiplier"`
	RequiresTalent int     `toml:"requires_talent"`
}

type resourceDoc struct {
	Type           string   `toml:"type"`
	Initial        int64    `toml:"initial"`
	Floor          int64    `toml:"floor"`
	Ceiling        int64    `toml:"ceiling"`
	OvercapTarget  float64  `toml:"overcap_target"`
	OvercapRegular *float64 `toml:"overcap_regular"`
	OvercapMajor   *float64 `toml:"overcap_major"`
}

// Parse decodes and validates a TOML profile with the default offsets.
// Unknown keys are rejected.
func Parse(data []byte, source string) (*Profile, error) {
	return parse(data, source, suggest.DefaultOffsets)
}

func parse(data []byte, source string, defaults suggest.Offsets) (*Profile, error) {
	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, &ConfigurationError{Profile: source, Reason: "unknown keys:\n" + strict.String()}
		}
		return nil, fmt.Errorf("decoding profile %s: %w", source, err)
	}

	p := doc.normalize(source, defaults)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Loader finds profiles on disk and among the builtins. Offsets apply to
// every profile that does not set its own; nil means suggest.DefaultOffsets.
type Loader struct {
	Dirs    []string
	Offsets *suggest.Offsets
}

func (l Loader) offsets() suggest.Offsets {
	if l.Offsets == nil {
		return suggest.DefaultOffsets
	}
	return *l.Offsets
}

// Load reads a profile file.
func (l Loader) Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data, path, l.offsets())
}

// Builtin returns one of the embedded profiles by name.
func (l Loader) Builtin(name string) (*Profile, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + fileExt)
	if err != nil {
		return nil, fmt.Errorf("no builtin profile %q", name)
	}
	return parse(data, "builtin:"+name, l.offsets())
}

// Resolve finds a profile by path or by name. A name is looked up as
// <dir>/<name>.toml in each directory in order, then among the builtins.
func (l Loader) Resolve(ref string) (*Profile, error) {
	if ref == "" {
		return nil, errors.New("no profile given")
	}
	if strings.HasSuffix(ref, fileExt) || strings.ContainsRune(ref, os.PathSeparator) {
		return l.Load(ref)
	}
	for _, dir := range l.Dirs {
		path := filepath.Join(dir, ref+fileExt)
		if _, err := os.Stat(path); err == nil {
			return l.Load(path)
		}
	}
	return l.Builtin(ref)
}

// Available lists profile names found in the directories plus the
// builtins. A name defined in a directory shadows a builtin of the same
// name.
func (l Loader) Available() []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range l.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), fileExt)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	for _, name := range BuiltinNames() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Load reads a profile file with the default offsets.
func Load(path string) (*Profile, error) {
	return Loader{}.Load(path)
}

// Builtin returns an embedded profile with the default offsets.
func Builtin(name string) (*Profile, error) {
	return Loader{}.Builtin(name)
}

// Resolve is Loader{Dirs: dirs}.Resolve(ref).
func Resolve(ref string, dirs []string) (*Profile, error) {
	return Loader{Dirs: dirs}.Resolve(ref)
}

// BuiltinNames lists the embedded profiles, sorted.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), fileExt) {
			names = append(names, strings.TrimSuffix(e.Name(), fileExt))
		}
	}
	sort.Strings(names)
	return names
}

func (doc *document) normalize(source string, defaults suggest.Offsets) *Profile {
	p := &Profile{
		Name:        doc.Profile.Name,
		Description: doc.Profile.Description,
		Source:      source,
		Offsets:     defaults,
	}
	if doc.Profile.RegularOffset != nil {
		p.Offsets.Regular = *doc.Profile.RegularOffset
	}
	if doc.Profile.MajorOffset != nil {
		p.Offsets.Major = *doc.Profile.MajorOffset
	}

	for _, a := range doc.Abilities {
		charges := a.MaxCharges
		if charges == 0 {
			charges = 1
		}
		p.Abilities = append(p.Abilities, analyzer.AbilityUsageModel{
			AbilityID:             a.ID,
			Name:                  a.Name,
			CooldownMs:            a.CooldownMs,
			MaxCharges:            charges,
			FirstAvailableMs:      a.FirstAvailableMs,
			RecommendedEfficiency: a.RecommendedEfficiency,
			NoSuggestion:          a.NoSuggestion,
			Importance:            a.Importance,
			HigherIsWorse:         a.HigherIsWorse,
			ExtraSuggestion:       a.ExtraSuggestion,
		})
	}

	for _, u := range doc.Uptimes {
		p.Uptimes = append(p.Uptimes, Uptime{
			BuffID:     u.BuffID,
			Name:       u.Name,
			Target:     u.Target,
			Thresholds: thresholdsAround(u.Target, p.Offsets, false, u.Regular, u.Major),
		})
	}

	for _, w := range doc.Windows {
		label := w.Label
		if label == "" {
			label = w.Name
		}
		p.Windows = append(p.Windows, Window{
			Name:              w.Name,
			Label:             label,
			BuffID:            w.BuffID,
			BuffName:          w.BuffName,
			AbilityID:         w.AbilityID,
			AbilityName:       w.AbilityName,
			ExpectedPerWindow: w.ExpectedPerWindow,
			RequiresTalent:    w.RequiresTalent,
			Target:            w.Target,
			Thresholds:        thresholdsAround(w.Target, p.Offsets, false, w.Regular, w.Major),
		})
	}

	for _, b := range doc.Bonuses {
		label := b.Label
		if label == "" {
			label = b.Name
		}
		p.Bonuses = append(p.Bonuses, Bonus{
			Name:           b.Name,
			Label:          label,
			BuffID:         b.BuffID,
			BuffName:       b.BuffName,
			Multiplier:     b.Multiplier,
			RequiresTalent: b.RequiresTalent,
		})
	}

	for _, r := range doc.Resources {
		p.Resources = append(p.Resources, Resource{
			Model: analyzer.ResourceModel{
				Type:    r.Type,
				Initial: r.Initial,
				Floor:   r.Floor,
				Ceiling: r.Ceiling,
			},
			OvercapTarget: r.OvercapTarget,
			Thresholds:    thresholdsAround(r.OvercapTarget, p.Offsets, true, r.OvercapRegular, r.OvercapMajor),
		})
	}

	return p
}

// thresholdsAround fills thresholds missing from the file by applying the
// profile offsets to target.
func thresholdsAround(target float64, offsets suggest.Offsets, higherIsWorse bool, regular, major *float64) suggest.Thresholds {
	th := offsets.For(target, higherIsWorse)
	if regular != nil {
		th.Regular = *regular
	}
	if major != nil {
		th.Major = *major
	}
	return th
}
