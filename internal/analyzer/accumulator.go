package analyzer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/blackwell-systems/combatlens/internal/combatlog"
)

// ErrEncounterEnded is returned by Ingest once End has been called.
var ErrEncounterEnded = errors.New("encounter already ended")

// Accumulator folds one encounter's event stream into buff intervals,
// resource ledgers and per-ability cast and damage lists. It is owned by a
// single analysis pass and must not be shared between encounters.
type Accumulator struct {
	ctx   EncounterContext
	ended bool
	now   int64
	count int
	err   error

	open           map[int]int64
	closed         map[int][]Interval
	orphanRemovals int

	casts           map[int][]int64
	damage          []DamageInstance
	damageByAbility map[int]int64
	totalDamage     int64

	models    map[string]ResourceModel
	resources map[string]*ResourceLedger
}

// NewAccumulator starts accumulating an encounter that began at fightStart.
// Resource types without a model are tracked unclamped.
func NewAccumulator(fightStart int64, resources ...ResourceModel) *Accumulator {
	a := &Accumulator{
		ctx:             EncounterContext{FightStart: fightStart, FightEnd: fightStart},
		now:             fightStart,
		open:            make(map[int]int64),
		closed:          make(map[int][]Interval),
		casts:           make(map[int][]int64),
		damageByAbility: make(map[int]int64),
		models:          make(map[string]ResourceModel),
		resources:       make(map[string]*ResourceLedger),
	}
	for _, m := range resources {
		a.models[m.Type] = m
		model := m
		a.resources[m.Type] = newLedger(m.Type, &model)
	}
	return a
}

// Ingest folds one event into the accumulated state. Events must arrive in
// non-decreasing timestamp order; the first out-of-order event returns an
// *OrderingViolationError and every later call returns the same error.
func (a *Accumulator) Ingest(e combatlog.Event) error {
	if a.err != nil {
		return a.err
	}
	if a.ended {
		return ErrEncounterEnded
	}
	if a.count > 0 && e.Timestamp < a.now {
		a.err = &OrderingViolationError{Index: a.count, Last: a.now, Got: e.Timestamp}
		return a.err
	}
	a.now = e.Timestamp
	a.count++

	switch e.Kind {
	case combatlog.KindBuffApplied:
		// Re-application of an already active buff keeps the first start.
		// Buffs applied before the pull start at FightStart.
		if _, active := a.open[e.BuffID]; !active {
			a.open[e.BuffID] = max(e.Timestamp, a.ctx.FightStart)
		}
	case combatlog.KindBuffRemoved:
		start, active := a.open[e.BuffID]
		if !active {
			a.orphanRemovals++
			return nil
		}
		delete(a.open, e.BuffID)
		if e.Timestamp < start {
			// Fell off before the pull.
			return nil
		}
		a.closed[e.BuffID] = append(a.closed[e.BuffID], Interval{Start: start, End: e.Timestamp})
	case combatlog.KindCast:
		a.casts[e.AbilityID] = append(a.casts[e.AbilityID], e.Timestamp)
	case combatlog.KindDamage:
		a.damage = append(a.damage, DamageInstance{
			Timestamp: e.Timestamp,
			AbilityID: e.AbilityID,
			Amount:    e.Amount,
		})
		a.damageByAbility[e.AbilityID] += e.Amount
		a.totalDamage += e.Amount
	case combatlog.KindResourceChange:
		ledger, ok := a.resources[e.ResourceType]
		var model *ResourceModel
		if m, hasModel := a.models[e.ResourceType]; hasModel {
			model = &m
		}
		if !ok {
			ledger = newLedger(e.ResourceType, model)
			a.resources[e.ResourceType] = ledger
		}
		ledger.apply(e.Delta, model)
	}
	return nil
}

// End fixes the fight end. Buffs still active are closed at fightEnd so
// their partial uptime is kept. Calling End again with the same value is a
// no-op.
func (a *Accumulator) End(fightEnd int64) error {
	if a.err != nil {
		return a.err
	}
	if a.ended {
		if fightEnd == a.ctx.FightEnd {
			return nil
		}
		return fmt.Errorf("%w at %dms, cannot end again at %dms", ErrEncounterEnded, a.ctx.FightEnd, fightEnd)
	}
	if a.count > 0 && fightEnd < a.now {
		a.err = &OrderingViolationError{Index: a.count, Last: a.now, Got: fightEnd}
		return a.err
	}
	if fightEnd < a.ctx.FightStart {
		return fmt.Errorf("fight end %dms precedes fight start %dms", fightEnd, a.ctx.FightStart)
	}

	for _, buffID := range sortedKeys(a.open) {
		a.closed[buffID] = append(a.closed[buffID], Interval{Start: a.open[buffID], End: fightEnd})
		delete(a.open, buffID)
	}

	a.ctx = NewEncounterContext(a.ctx.FightStart, fightEnd)
	a.ended = true
	return nil
}

// horizon is the timestamp open intervals are measured up to.
func (a *Accumulator) horizon() int64 {
	if a.ended {
		return a.ctx.FightEnd
	}
	return a.now
}

// Context returns the encounter bounds. Before End, FightEnd and DurationMs
// describe the elapsed part of the fight.
func (a *Accumulator) Context() EncounterContext {
	if a.ended {
		return a.ctx
	}
	return NewEncounterContext(a.ctx.FightStart, a.now)
}

// Ended reports whether End has been called successfully.
func (a *Accumulator) Ended() bool { return a.ended }

// Err returns the ordering violation that stopped accumulation, if any.
func (a *Accumulator) Err() error { return a.err }

// Now returns the timestamp of the last ingested event.
func (a *Accumulator) Now() int64 { return a.now }

// Ingested returns the number of accepted events.
func (a *Accumulator) Ingested() int { return a.count }

// OrphanRemovals counts buff removals that had no matching application.
func (a *Accumulator) OrphanRemovals() int { return a.orphanRemovals }

// Intervals returns the buff's intervals in time order. An interval still
// open is returned closed at the query horizon with Open set.
func (a *Accumulator) Intervals(buffID int) []Interval {
	closed := a.closed[buffID]
	out := make([]Interval, len(closed), len(closed)+1)
	copy(out, closed)
	if start, active := a.open[buffID]; active {
		end := a.horizon()
		if end < start {
			end = start
		}
		out = append(out, Interval{Start: start, End: end, Open: true})
	}
	return out
}

// UptimeOf returns the total time the buff was active, never more than the
// elapsed encounter duration.
func (a *Accumulator) UptimeOf(buffID int) int64 {
	var total int64
	for _, iv := range a.Intervals(buffID) {
		total += iv.Duration()
	}
	if limit := a.Context().DurationMs; total > limit {
		total = limit
	}
	return total
}

// BuffIDs returns every buff that has been seen, sorted.
func (a *Accumulator) BuffIDs() []int {
	seen := make(map[int]struct{}, len(a.closed)+len(a.open))
	for id := range a.closed {
		seen[id] = struct{}{}
	}
	for id := range a.open {
		seen[id] = struct{}{}
	}
	return sortedKeys(seen)
}

// Casts returns the cast timestamps of an ability in time order.
func (a *Accumulator) Casts(abilityID int) []int64 {
	out := make([]int64, len(a.casts[abilityID]))
	copy(out, a.casts[abilityID])
	return out
}

// CastCount returns how often the ability was cast.
func (a *Accumulator) CastCount(abilityID int) int {
	return len(a.casts[abilityID])
}

// Damage returns every damage instance in time order.
func (a *Accumulator) Damage() []DamageInstance {
	out := make([]DamageInstance, len(a.damage))
	copy(out, a.damage)
	return out
}

// TotalDamage returns the sum of all damage instances.
func (a *Accumulator) TotalDamage() int64 { return a.totalDamage }

// DamageByAbility returns the damage dealt by one ability.
func (a *Accumulator) DamageByAbility(abilityID int) int64 {
	return a.damageByAbility[abilityID]
}

// Resource returns the ledger for a resource type.
func (a *Accumulator) Resource(resourceType string) (ResourceLedger, bool) {
	l, ok := a.resources[resourceType]
	if !ok {
		return ResourceLedger{Type: resourceType}, false
	}
	return *l, true
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
