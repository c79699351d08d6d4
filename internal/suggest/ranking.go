package suggest

import "sort"

// BySeverity returns a copy of issues ordered from most to least severe.
// Issues of equal severity keep their evaluation order.
func BySeverity(issues []Issue) []Issue {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	return sorted
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, is := range issues {
		counts[is.Severity]++
	}
	return counts
}
