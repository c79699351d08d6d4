package analyzer

import "testing"

func TestDamageWhile_BoundaryInclusive(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		applied(1000, buffDance),
		hit(1000, spellEvis, 1), // at start
		hit(2000, spellEvis, 10),
		hit(4000, spellEvis, 100), // at end
		removed(4000, buffDance),
		hit(4001, spellEvis, 1000), // just outside
	)

	if got := DamageWhile(acc, buffDance); got != 111 {
		t.Errorf("DamageWhile = %d, want 111", got)
	}
}

func TestDamageWhile_SharedBoundaryCountedOncePerQuery(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		applied(1000, buffDance),
		removed(4000, buffDance),
		hit(4000, spellEvis, 500),
		applied(4000, buffDance),
		removed(9000, buffDance),
	)

	intervals := acc.Intervals(buffDance)
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(intervals))
	}

	// Each interval queried separately includes the boundary hit.
	for i, iv := range intervals {
		if got := DamageDuring(acc, iv); got != 500 {
			t.Errorf("DamageDuring(interval %d) = %d, want 500", i, got)
		}
	}

	// The buff-level query counts it once.
	if got := DamageWhile(acc, buffDance); got != 500 {
		t.Errorf("DamageWhile = %d, want 500", got)
	}
}

func TestDamageWhile_OverlappingBuffsAttributeIndependently(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		applied(0, buffBlades),
		applied(1000, buffDance),
		hit(1500, spellEvis, 300),
		removed(2000, buffDance),
		hit(2500, spellEvis, 50),
		removed(3000, buffBlades),
	)

	if got := DamageWhile(acc, buffDance); got != 300 {
		t.Errorf("DamageWhile(dance) = %d, want 300", got)
	}
	if got := DamageWhile(acc, buffBlades); got != 350 {
		t.Errorf("DamageWhile(blades) = %d, want 350", got)
	}
}

func TestDamageWhile_OpenIntervalUsesHorizon(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		applied(1000, buffDance),
		hit(1500, spellEvis, 20),
		hit(2500, spellEvis, 30),
	)

	if got := DamageWhile(acc, buffDance); got != 50 {
		t.Errorf("DamageWhile with open interval = %d, want 50", got)
	}
}

func TestAbilityDamageWhile(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		applied(1000, buffDance),
		hit(1100, spellEvis, 700),
		hit(1200, 53, 90),
		removed(2000, buffDance),
		hit(2100, spellEvis, 5000),
	)

	if got := AbilityDamageWhile(acc, buffDance, spellEvis); got != 700 {
		t.Errorf("AbilityDamageWhile = %d, want 700", got)
	}
}

func TestCastsWhile(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		cast(500, spellEvis),
		applied(1000, buffDance),
		cast(1000, spellEvis),
		cast(3000, spellEvis),
		removed(5000, buffDance),
		cast(5000, 53),
		cast(6000, spellEvis),
		applied(10000, buffDance),
		cast(12000, spellEvis),
		removed(14000, buffDance),
	)

	if got := CastsWhile(acc, buffDance, spellEvis); got != 3 {
		t.Errorf("CastsWhile = %d, want 3", got)
	}
	if got := CastsWhile(acc, buffDance, 53); got != 1 {
		t.Errorf("CastsWhile(other ability at end boundary) = %d, want 1", got)
	}
	if got := CastsWhile(acc, buffBlades, spellEvis); got != 0 {
		t.Errorf("CastsWhile(unknown buff) = %d, want 0", got)
	}
}

func TestWindowBreakdown(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc,
		applied(1000, buffDance),
		cast(1200, spellEvis),
		hit(1200, spellEvis, 100),
		cast(3000, spellEvis),
		hit(3000, spellEvis, 120),
		removed(5000, buffDance),
		applied(20000, buffDance),
		cast(21000, spellEvis),
		hit(21000, spellEvis, 90),
		removed(25000, buffDance),
	)

	stats := WindowBreakdown(acc, buffDance, spellEvis)
	if len(stats) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(stats))
	}
	if stats[0].Casts != 2 || stats[0].Damage != 220 {
		t.Errorf("window 0 = %+v, want 2 casts / 220 damage", stats[0])
	}
	if stats[1].Casts != 1 || stats[1].Damage != 90 {
		t.Errorf("window 1 = %+v, want 1 cast / 90 damage", stats[1])
	}
}

func TestCastsDuring_EmptyInterval(t *testing.T) {
	acc := NewAccumulator(0)
	ingestAll(t, acc, cast(100, spellEvis), cast(200, spellEvis))

	if got := CastsDuring(acc, Interval{Start: 150, End: 150}, spellEvis); got != 0 {
		t.Errorf("CastsDuring = %d, want 0", got)
	}
	if got := CastsDuring(acc, Interval{Start: 200, End: 200}, spellEvis); got != 1 {
		t.Errorf("CastsDuring zero-length at cast = %d, want 1", got)
	}
}
