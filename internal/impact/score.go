package impact

import (
	"fmt"
	"math"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/graph"
)

// maxFactorSum is the normalization ceiling: dependency-type 3 +
// criticality 3 + modification-risk 4 + depth decay 2 + usage 3.
const maxFactorSum = 15

// factorContext carries everything a factor handler may inspect.
type factorContext struct {
	kind           asset.RefKind
	targetType     asset.Type
	modification   Modification
	depth          int
	dependentCount int
}

// factor is one registered scoring handler. Registry order is the fixed
// tie-break priority for primaryReason selection.
type factor struct {
	name   string
	eval   func(factorContext) float64
	reason func(factorContext) string
}

// Scorer converts propagation output into scored entries through an
// explicit factor registry populated once at construction.
type Scorer struct {
	g       *graph.Graph
	factors []factor
}

// NewScorer creates a scorer bound to a graph snapshot (used for usage
// frequency lookups).
func NewScorer(g *graph.Graph) *Scorer {
	return &Scorer{
		g: g,
		factors: []factor{
			{
				name: "modification-risk",
				eval: func(c factorContext) float64 { return modificationRisk(c.modification) },
				reason: func(c factorContext) string {
					return fmt.Sprintf("high-risk modification type (%s)", c.modification)
				},
			},
			{
				name: "criticality",
				eval: func(c factorContext) float64 { return criticality(c.targetType) },
				reason: func(c factorContext) string {
					return fmt.Sprintf("target is a %s asset shared across the corpus", c.targetType)
				},
			},
			{
				name: "dependency-type",
				eval: func(c factorContext) float64 { return dependencyWeight(c.kind) },
				reason: func(c factorContext) string {
					return fmt.Sprintf("strong %s dependency on the target", c.kind)
				},
			},
			{
				name: "usage-frequency",
				eval: func(c factorContext) float64 {
					return math.Min(3, float64(c.dependentCount)/5)
				},
				reason: func(c factorContext) string {
					return fmt.Sprintf("widely referenced component (%d dependents)", c.dependentCount)
				},
			},
			{
				name: "depth-decay",
				eval: func(c factorContext) float64 {
					return math.Max(0, float64(3-c.depth))
				},
				reason: func(c factorContext) string {
					return fmt.Sprintf("close to the modified asset (depth %d)", c.depth)
				},
			},
		},
	}
}

// Score converts propagated nodes into scored entries. target describes
// the asset being modified; its type drives the criticality factor.
func (s *Scorer) Score(target Target, opts Options, affected []Affected) []Entry {
	entries := make([]Entry, 0, len(affected))
	for _, a := range affected {
		entries = append(entries, s.scoreOne(target, opts, a))
	}
	return entries
}

func (s *Scorer) scoreOne(target Target, opts Options, a Affected) Entry {
	c := factorContext{
		kind:           a.Kind,
		targetType:     target.Type,
		modification:   opts.Modification,
		depth:          a.Depth,
		dependentCount: s.g.InDegree(a.AssetID),
	}

	breakdown := make(map[string]float64, len(s.factors))
	sum := 0.0
	primary := s.factors[0]
	best := math.Inf(-1)
	for _, f := range s.factors {
		v := f.eval(c)
		breakdown[f.name] = v
		sum += v
		// Strictly greater keeps ties on the earlier (higher priority)
		// factor: modification-risk > criticality > dependency-type >
		// usage-frequency.
		if v > best {
			best = v
			primary = f
		}
	}

	score := math.Round(sum / maxFactorSum * 10)
	score = math.Max(0, math.Min(10, score))

	return Entry{
		AssetID:       a.AssetID,
		Kind:          a.Kind,
		Depth:         a.Depth,
		Factors:       breakdown,
		Score:         score,
		Severity:      ClassifySeverity(score),
		PrimaryReason: primary.reason(c),
	}
}

// dependencyWeight scores how the dependent references the target.
func dependencyWeight(kind asset.RefKind) float64 {
	switch kind {
	case asset.RefInternal:
		return 3
	case asset.RefFramework:
		return 2
	case asset.RefSoftText:
		return 1
	default:
		return 1
	}
}

// criticality scores the target asset's structural role: shared
// infrastructure (configs, templates) ranks above composites (workflows),
// which rank above leaf assets (agents, commands).
func criticality(t asset.Type) float64 {
	switch t {
	case asset.TypeConfig, asset.TypeTemplate:
		return 3
	case asset.TypeWorkflow:
		return 2
	case asset.TypeAgent, asset.TypeCommand:
		return 1.5
	default:
		return 1
	}
}

// modificationRisk scores the kind of change being made.
func modificationRisk(m Modification) float64 {
	switch m {
	case ModRemove:
		return 4
	case ModDeprecate:
		return 3
	case ModRefactor:
		return 2
	default:
		return 1
	}
}
