package analyzer

// MaxPossibleCasts returns how many times an ability could have been cast in
// durationMs. Single-charge abilities divide the available time by the
// cooldown. Abilities with more charges start with a full bank, so the
// extra charges add MaxCharges-1 casts on top of one recharge per cooldown.
func MaxPossibleCasts(model AbilityUsageModel, durationMs int64) int {
	if model.CooldownMs <= 0 {
		return 0
	}
	available := durationMs - model.FirstAvailableMs
	if available <= 0 {
		return 0
	}

	casts := int(available / model.CooldownMs)
	if model.MaxCharges > 1 {
		casts += model.MaxCharges - 1
	}
	return casts
}

// Evaluate compares casts against the maximum the encounter allowed.
func Evaluate(model AbilityUsageModel, ctx EncounterContext, casts int) EfficiencyResult {
	maxCasts := MaxPossibleCasts(model, ctx.DurationMs)
	ratio := Ratio(float64(casts), float64(maxCasts))

	return EfficiencyResult{
		AbilityID:             model.AbilityID,
		Name:                  model.Name,
		Casts:                 casts,
		MaxPossibleCasts:      maxCasts,
		Ratio:                 ratio,
		RecommendedEfficiency: model.RecommendedEfficiency,
		CanBeImproved:         ratio < model.RecommendedEfficiency && !model.NoSuggestion,
	}
}

// EvaluateAll evaluates every model against the accumulated casts, keeping
// the order of models.
func EvaluateAll(models []AbilityUsageModel, acc *Accumulator) []EfficiencyResult {
	ctx := acc.Context()
	results := make([]EfficiencyResult, 0, len(models))
	for _, m := range models {
		results = append(results, Evaluate(m, ctx, acc.CastCount(m.AbilityID)))
	}
	return results
}
