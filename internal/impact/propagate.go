package impact

import (
	"container/list"
	"context"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/graph"
)

// DefaultMaxAffected caps traversal on pathological or dense graphs.
const DefaultMaxAffected = 1000

// Propagator performs bounded breadth-first traversal over the reverse
// graph. Each call owns its own visited set and queue, so concurrent
// analyses against the same immutable graph snapshot need no locking.
type Propagator struct {
	g *graph.Graph
}

// NewPropagator creates a propagator over a materialized graph snapshot.
func NewPropagator(g *graph.Graph) *Propagator {
	return &Propagator{g: g}
}

type queueItem struct {
	id    string
	kind  asset.RefKind
	depth int
}

// Propagate walks dependents of targetID up to the option's hop budget.
// BFS order guarantees the recorded depth is the true shortest distance.
// The returned truncated flag is set when the node cap halts traversal
// early; incomplete is set when the context is cancelled mid-walk.
// Neither condition is an error.
func (p *Propagator) Propagate(ctx context.Context, targetID string, opts Options) (affected []Affected, truncated, incomplete bool) {
	maxDepth := opts.Depth.Hops()
	maxNodes := opts.MaxAffected
	if maxNodes <= 0 {
		maxNodes = DefaultMaxAffected
	}

	// The target is pre-marked visited so it can never appear in its own
	// affected set, even through a reference cycle.
	visited := map[string]bool{targetID: true}
	queue := list.New()

	for _, dep := range p.g.DirectDependents(targetID) {
		if visited[dep.SourceID] {
			continue
		}
		visited[dep.SourceID] = true
		queue.PushBack(queueItem{id: dep.SourceID, kind: dep.Kind, depth: 1})
	}

	for queue.Len() > 0 {
		select {
		case <-ctx.Done():
			return affected, truncated, true
		default:
		}

		front := queue.Front()
		queue.Remove(front)
		item := front.Value.(queueItem)

		if p.skip(item, opts) {
			continue
		}
		if len(affected) >= maxNodes {
			return affected, true, incomplete
		}
		affected = append(affected, Affected{AssetID: item.id, Kind: item.kind, Depth: item.depth})

		if item.depth >= maxDepth {
			continue
		}
		for _, dep := range p.g.DirectDependents(item.id) {
			if visited[dep.SourceID] {
				continue
			}
			visited[dep.SourceID] = true
			queue.PushBack(queueItem{id: dep.SourceID, kind: dep.Kind, depth: item.depth + 1})
		}
	}

	return affected, truncated, incomplete
}

// skip filters entries excluded by the analysis options. Skipped nodes
// are not expanded either: impact does not flow through assets the caller
// asked to ignore.
func (p *Propagator) skip(item queueItem, opts Options) bool {
	if !opts.IncludeTests && asset.IsTestAsset(item.id) {
		return true
	}
	if opts.ExcludeExternal && item.kind == asset.RefExternal {
		return true
	}
	return false
}
