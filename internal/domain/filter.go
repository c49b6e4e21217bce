package domain

import "slices"

// ExcludeAndSort drops every record whose ID equals excludeID and orders the
// rest by origin time. The sort is stable, so records sharing an origin time
// keep their decode order. The input slice is not modified.
func ExcludeAndSort(records []EventRecord, excludeID string) []EventRecord {
	out := make([]EventRecord, 0, len(records))
	for _, r := range records {
		if r.ID == excludeID {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b EventRecord) int {
		return a.OriginTime.Compare(b.OriginTime)
	})
	return out
}

// FilterByMagnitude keeps records at or above the completeness magnitude mc.
func FilterByMagnitude(records []EventRecord, mc float64) []EventRecord {
	out := make([]EventRecord, 0, len(records))
	for _, r := range records {
		if r.Magnitude >= mc {
			out = append(out, r)
		}
	}
	return out
}

// CountAtOrAbove counts records with magnitude >= each threshold. The result
// is index-aligned with thresholds.
func CountAtOrAbove(records []EventRecord, thresholds []float64) []int {
	counts := make([]int, len(thresholds))
	for _, r := range records {
		for i, m := range thresholds {
			if r.Magnitude >= m {
				counts[i]++
			}
		}
	}
	return counts
}
