// Package impact implements blast-radius analysis: bounded propagation
// over the reverse reference graph, multi-factor severity scoring, and
// rule-based recommendations.
package impact

import (
	"time"

	"github.com/dbsmedya/blastradius/internal/asset"
)

// DepthMode names a traversal-depth budget.
type DepthMode string

const (
	DepthShallow DepthMode = "shallow"
	DepthMedium  DepthMode = "medium"
	DepthDeep    DepthMode = "deep"
)

// Hops returns the hop budget for the mode. Unknown modes get the medium
// budget.
func (m DepthMode) Hops() int {
	switch m {
	case DepthShallow:
		return 2
	case DepthMedium:
		return 4
	case DepthDeep:
		return 8
	default:
		return 4
	}
}

// Modification is the kind of change being analyzed.
type Modification string

const (
	ModModify    Modification = "modify"
	ModRefactor  Modification = "refactor"
	ModDeprecate Modification = "deprecate"
	ModRemove    Modification = "remove"
)

// Severity tiers. Thresholds are contiguous and exhaustive: critical >=9,
// high [7,9), medium [4,7), low <4.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ClassifySeverity maps a score in [0,10] to its severity tier.
func ClassifySeverity(score float64) Severity {
	switch {
	case score >= 9:
		return SeverityCritical
	case score >= 7:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Target identifies the asset whose modification is being analyzed.
type Target struct {
	Path string     `json:"path"`
	Type asset.Type `json:"type"`
}

// Options controls one analysis call.
type Options struct {
	Depth           DepthMode    `json:"depth"`
	Modification    Modification `json:"modificationType"`
	IncludeTests    bool         `json:"includeTests"`
	ExcludeExternal bool         `json:"excludeExternal"`
	MaxAffected     int          `json:"maxAffected"`
}

// Affected is one node reached by propagation before scoring.
type Affected struct {
	AssetID string        `json:"assetId"`
	Kind    asset.RefKind `json:"referenceKind"`
	Depth   int           `json:"depth"`
}

// Entry is one scored affected component.
type Entry struct {
	AssetID       string             `json:"assetId"`
	Kind          asset.RefKind      `json:"referenceKind"`
	Depth         int                `json:"depth"`
	Factors       map[string]float64 `json:"factorBreakdown"`
	Score         float64            `json:"score"`
	Severity      Severity           `json:"severity"`
	PrimaryReason string             `json:"primaryReason"`
}

// Recommendation is one advisory output. Recommendations never touch the
// corpus; they are text for a human or a gating collaborator.
type Recommendation struct {
	Priority    Severity `json:"priority"`
	Action      string   `json:"action"`
	Detail      string   `json:"detail"`
	SamplePaths []string `json:"samplePaths,omitempty"`
	Blocking    bool     `json:"blocking"`
}

// Categories buckets affected asset ids by severity tier. Buckets are
// mutually exclusive and exhaustive over the affected set.
type Categories struct {
	Critical []string `json:"critical"`
	High     []string `json:"high"`
	Medium   []string `json:"medium"`
	Low      []string `json:"low"`
}

// Statistics summarizes one analysis.
type Statistics struct {
	TotalComponents        int `json:"totalComponents"`
	DirectDependents       int `json:"directDependents"`
	HighImpactComponents   int `json:"highImpactComponents"`
	MediumImpactComponents int `json:"mediumImpactComponents"`
	LowImpactComponents    int `json:"lowImpactComponents"`
}

// Report is the immutable analysis result. Once assembled it is cached by
// AnalysisID and never mutated.
type Report struct {
	AnalysisID      string           `json:"analysisId"`
	Target          Target           `json:"targetComponent"`
	Config          Options          `json:"analysisConfig"`
	Affected        []Entry          `json:"affectedComponents"`
	Categories      Categories       `json:"impactCategories"`
	Recommendations []Recommendation `json:"recommendations"`
	Statistics      Statistics       `json:"statistics"`
	Timestamp       time.Time        `json:"analysisTimestamp"`
	Truncated       bool             `json:"truncated"`
	Incomplete      bool             `json:"incomplete"`
}
