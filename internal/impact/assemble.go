package impact

import (
	"sort"
	"time"
)

// Assemble packages scored entries and recommendations into an immutable
// report. Entries are sorted by descending score, ties broken by depth
// then asset id, so identical inputs always assemble identically.
func Assemble(analysisID string, target Target, opts Options, entries []Entry, recs []Recommendation, truncated, incomplete bool, now time.Time) *Report {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if sorted[i].Depth != sorted[j].Depth {
			return sorted[i].Depth < sorted[j].Depth
		}
		return sorted[i].AssetID < sorted[j].AssetID
	})

	var cats Categories
	stats := Statistics{TotalComponents: len(sorted)}
	for _, e := range sorted {
		if e.Depth == 1 {
			stats.DirectDependents++
		}
		switch e.Severity {
		case SeverityCritical:
			cats.Critical = append(cats.Critical, e.AssetID)
			stats.HighImpactComponents++
		case SeverityHigh:
			cats.High = append(cats.High, e.AssetID)
			stats.HighImpactComponents++
		case SeverityMedium:
			cats.Medium = append(cats.Medium, e.AssetID)
			stats.MediumImpactComponents++
		default:
			cats.Low = append(cats.Low, e.AssetID)
			stats.LowImpactComponents++
		}
	}

	return &Report{
		AnalysisID:      analysisID,
		Target:          target,
		Config:          opts,
		Affected:        sorted,
		Categories:      cats,
		Recommendations: recs,
		Statistics:      stats,
		Timestamp:       now.UTC(),
		Truncated:       truncated,
		Incomplete:      incomplete,
	}
}
