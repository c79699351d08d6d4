package combatlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	lineEncounterStart = "encounter_start"
	lineEncounterEnd   = "encounter_end"
)

// rawLine is the union of every field that may appear on one JSONL line.
type rawLine struct {
	Type string `json:"type"`

	T        int64  `json:"t"`
	Source   string `json:"source"`
	Ability  int    `json:"ability"`
	Buff     int    `json:"buff"`
	Amount   int64  `json:"amount"`
	Resource string `json:"resource"`
	Delta    int64  `json:"delta"`

	ID      string `json:"id"`
	Name    string `json:"name"`
	Player  string `json:"player"`
	Profile string `json:"profile"`
	Start   int64  `json:"start"`
	Talents []int  `json:"talents"`
}

// Decoder turns JSONL lines into a Log. It keeps events in arrival order;
// ordering is checked downstream by the accumulator.
type Decoder struct {
	log    Log
	player string
}

// NewDecoder creates a decoder. If player is non-empty, events whose source
// is set and differs from it are dropped; otherwise the player named in the
// encounter_start header is used as the filter.
func NewDecoder(source, player string) *Decoder {
	return &Decoder{
		log:    Log{Source: source},
		player: player,
	}
}

// Feed decodes one line. It returns true once an encounter_end line has been
// consumed. Malformed lines are counted in Log.Skipped and otherwise ignored.
func (d *Decoder) Feed(line []byte) bool {
	if len(strings.TrimSpace(string(line))) == 0 {
		return false
	}

	var raw rawLine
	if err := json.Unmarshal(line, &raw); err != nil {
		d.log.Skipped++
		return false
	}

	switch raw.Type {
	case lineEncounterStart:
		d.log.Encounter = Encounter{
			ID:      raw.ID,
			Name:    raw.Name,
			Player:  raw.Player,
			Profile: raw.Profile,
			Talents: raw.Talents,
			Start:   raw.Start,
		}
		if d.player == "" {
			d.player = raw.Player
		}
		return false
	case lineEncounterEnd:
		d.log.Encounter.End = raw.T
		d.log.Ended = true
		return true
	}

	ev, ok := raw.event()
	if !ok {
		d.log.Skipped++
		return false
	}
	if d.player != "" && ev.SourceID != "" && ev.SourceID != d.player {
		return false
	}
	d.log.Events = append(d.log.Events, ev)
	return false
}

// Log returns the decoded log. When no encounter_end line was seen, End is
// set to the last event timestamp and Ended stays false.
func (d *Decoder) Log() *Log {
	out := d.log
	if !out.Ended && len(out.Events) > 0 {
		out.Encounter.End = out.Events[len(out.Events)-1].Timestamp
	}
	if out.Encounter.ID == "" {
		out.Encounter.ID = strings.TrimSuffix(filepath.Base(out.Source), ".jsonl")
	}
	return &out
}

func (r rawLine) event() (Event, bool) {
	kind := Kind(r.Type)
	if !kind.Valid() {
		return Event{}, false
	}

	ev := Event{
		Kind:      kind,
		Timestamp: r.T,
		SourceID:  r.Source,
		AbilityID: r.Ability,
	}

	switch kind {
	case KindCast:
		if r.Ability == 0 {
			return Event{}, false
		}
	case KindBuffApplied, KindBuffRemoved:
		if r.Buff == 0 {
			return Event{}, false
		}
		ev.BuffID = r.Buff
	case KindDamage:
		ev.Amount = r.Amount
	case KindResourceChange:
		if r.Resource == "" {
			return Event{}, false
		}
		ev.ResourceType = r.Resource
		ev.Delta = r.Delta
	}
	return ev, true
}

// Decode reads a whole JSONL stream.
func Decode(r io.Reader, source, player string) (*Log, error) {
	dec := NewDecoder(source, player)

	scanner := bufio.NewScanner(r)
	// Increase buffer for long lines (up to 10MB).
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		if dec.Feed(scanner.Bytes()) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return dec.Log(), nil
}

// ParseFile decodes one JSONL encounter file.
func ParseFile(path, player string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, path, player)
}

// SortEvents orders events by timestamp, keeping the relative order of
// events that share a timestamp.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}
