package impact

import "fmt"

// maxSamplePaths bounds the example paths attached to a recommendation.
const maxSamplePaths = 5

// Recommend produces deterministic, advisory guidance from scored
// entries. No learned model: the same entries always produce the same
// recommendations in the same order.
func Recommend(target Target, opts Options, entries []Entry) []Recommendation {
	var recs []Recommendation

	if len(entries) == 0 {
		recs = append(recs, Recommendation{
			Priority: SeverityLow,
			Action:   "safe to proceed",
			Detail: fmt.Sprintf("no components reference %s; the change carries no detected risk",
				target.Path),
		})
	}

	critical := filterBySeverity(entries, SeverityCritical)
	if len(critical) > 0 {
		recs = append(recs, Recommendation{
			Priority: SeverityCritical,
			Action:   "review critical dependents before changing",
			Detail: fmt.Sprintf("%d component(s) are critically impacted; update them in the same change or stage the modification",
				len(critical)),
			SamplePaths: samplePaths(critical),
			Blocking:    true,
		})
	}

	high := filterBySeverity(entries, SeverityHigh)
	if len(high) > 0 {
		recs = append(recs, Recommendation{
			Priority: SeverityHigh,
			Action:   "verify high-impact dependents",
			Detail: fmt.Sprintf("%d component(s) are highly impacted; confirm their behavior after the change",
				len(high)),
			SamplePaths: samplePaths(high),
			Blocking:    true,
		})
	}

	// Removal plans a migration regardless of the score distribution,
	// even when nothing currently depends on the target.
	if opts.Modification == ModRemove {
		recs = append(recs, Recommendation{
			Priority: SeverityHigh,
			Action:   "plan a migration before removal",
			Detail: fmt.Sprintf("removing %s requires migrating every dependent to a replacement first",
				target.Path),
			Blocking: true,
		})
	}

	if opts.Modification == ModRefactor && len(entries) > 0 {
		recs = append(recs, Recommendation{
			Priority: SeverityMedium,
			Action:   "coordinate interface changes",
			Detail:   "refactoring may change the referencing contract; notify owners of dependent components",
			Blocking: false,
		})
	}

	if len(entries) > 5 {
		recs = append(recs, Recommendation{
			Priority: SeverityMedium,
			Action:   "run a full regression pass",
			Detail: fmt.Sprintf("%d components are affected; spot-checking is insufficient at this blast radius",
				len(entries)),
			Blocking: false,
		})
	}

	return recs
}

func filterBySeverity(entries []Entry, s Severity) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

func samplePaths(entries []Entry) []string {
	n := len(entries)
	if n > maxSamplePaths {
		n = maxSamplePaths
	}
	paths := make([]string, 0, n)
	for _, e := range entries[:n] {
		paths = append(paths, e.AssetID)
	}
	return paths
}
