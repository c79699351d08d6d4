package analyzer

import "sort"

// Attribution queries answer "how much happened while a buff was up". They
// hold no state and only read the accumulator. Interval bounds are
// inclusive on both ends, and an event is counted at most once per query
// even when two intervals share a boundary. Separate queries for different
// buffs may count the same event.

// DamageWhile sums the damage dealt while buffID was active.
func DamageWhile(acc *Accumulator, buffID int) int64 {
	return damageWithin(acc.damage, acc.Intervals(buffID), anyAbility)
}

// AbilityDamageWhile sums one ability's damage while buffID was active.
func AbilityDamageWhile(acc *Accumulator, buffID, abilityID int) int64 {
	return damageWithin(acc.damage, acc.Intervals(buffID), abilityID)
}

// CastsWhile counts casts of abilityID while buffID was active.
func CastsWhile(acc *Accumulator, buffID, abilityID int) int {
	return countWithin(acc.casts[abilityID], acc.Intervals(buffID))
}

// DamageDuring sums the damage inside a single interval.
func DamageDuring(acc *Accumulator, iv Interval) int64 {
	var total int64
	i := sort.Search(len(acc.damage), func(i int) bool { return acc.damage[i].Timestamp >= iv.Start })
	for ; i < len(acc.damage) && acc.damage[i].Timestamp <= iv.End; i++ {
		total += acc.damage[i].Amount
	}
	return total
}

// CastsDuring counts casts of abilityID inside a single interval.
func CastsDuring(acc *Accumulator, iv Interval, abilityID int) int {
	ts := acc.casts[abilityID]
	lo := sort.Search(len(ts), func(i int) bool { return ts[i] >= iv.Start })
	hi := sort.Search(len(ts), func(i int) bool { return ts[i] > iv.End })
	return hi - lo
}

// WindowBreakdown reports casts of abilityID and total damage for each
// interval of buffID, in time order.
func WindowBreakdown(acc *Accumulator, buffID, abilityID int) []WindowStat {
	intervals := acc.Intervals(buffID)
	stats := make([]WindowStat, 0, len(intervals))
	for _, iv := range intervals {
		stats = append(stats, WindowStat{
			Interval: iv,
			Casts:    CastsDuring(acc, iv, abilityID),
			Damage:   DamageDuring(acc, iv),
		})
	}
	return stats
}

// anyAbility disables the ability filter in damageWithin.
const anyAbility = -1

// damageWithin walks time-ordered damage and intervals together.
func damageWithin(damage []DamageInstance, intervals []Interval, abilityID int) int64 {
	var total int64
	j := 0
	for _, d := range damage {
		for j < len(intervals) && intervals[j].End < d.Timestamp {
			j++
		}
		if j == len(intervals) {
			break
		}
		if intervals[j].Start > d.Timestamp {
			continue
		}
		if abilityID != anyAbility && d.AbilityID != abilityID {
			continue
		}
		total += d.Amount
	}
	return total
}

// countWithin counts time-ordered timestamps that fall in any interval.
func countWithin(timestamps []int64, intervals []Interval) int {
	count := 0
	j := 0
	for _, ts := range timestamps {
		for j < len(intervals) && intervals[j].End < ts {
			j++
		}
		if j == len(intervals) {
			break
		}
		if intervals[j].Start <= ts {
			count++
		}
	}
	return count
}
