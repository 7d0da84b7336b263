// Package graph provides the reference dependency graph for blastradius.
//
// The graph holds a forward mapping (asset -> outgoing references) and a
// reverse mapping (target key -> dependents). Both use insertion-ordered
// maps so identical corpora always produce identical iteration order,
// which keeps analysis output idempotent.
package graph

import (
	"sort"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/blastradius/internal/asset"
)

// Dependent is one incoming edge in the reverse graph: an asset that
// references the key it is stored under, plus how it references it.
type Dependent struct {
	SourceID string        `json:"sourceId"`
	Kind     asset.RefKind `json:"kind"`
}

// Graph is the materialized dependency structure for one corpus snapshot.
// Reads are safe concurrently once the graph is built; mutation
// (ReplaceAsset, RemoveAsset) must be externally serialized.
type Graph struct {
	nodes   *orderedmap.OrderedMap[string, *asset.Node]
	reverse *orderedmap.OrderedMap[string, []Dependent]

	// bare maps bare asset names to the ids carrying them. Soft-text
	// references resolve through this index.
	bare map[string][]string

	extensions []string
}

// New creates an empty graph. extensions are the file extensions tried
// when resolving extension-less reference targets.
func New(extensions []string) *Graph {
	return &Graph{
		nodes:      orderedmap.NewOrderedMap[string, *asset.Node](),
		reverse:    orderedmap.NewOrderedMap[string, []Dependent](),
		bare:       make(map[string][]string),
		extensions: extensions,
	}
}

// Clone returns an independent copy of the graph. Nodes are shared (they
// are replaced wholesale, never mutated in place); the reverse-graph
// slices and bare-name index are copied so mutating the clone leaves the
// original snapshot untouched.
func (g *Graph) Clone() *Graph {
	c := New(g.extensions)
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		c.nodes.Set(el.Key, el.Value)
	}
	for el := g.reverse.Front(); el != nil; el = el.Next() {
		deps := make([]Dependent, len(el.Value))
		copy(deps, el.Value)
		c.reverse.Set(el.Key, deps)
	}
	for name, ids := range g.bare {
		c.bare[name] = append([]string(nil), ids...)
	}
	return c
}

// AddNode registers an asset node. References are indexed into the
// reverse graph as part of the same step.
func (g *Graph) AddNode(n *asset.Node) {
	if n == nil || n.ID == "" {
		return
	}
	if _, exists := g.nodes.Get(n.ID); exists {
		g.removeReverseEdges(n.ID)
	} else {
		name := asset.BareName(n.ID)
		g.bare[name] = append(g.bare[name], n.ID)
	}
	g.nodes.Set(n.ID, n)
	g.addReverseEdges(n)
}

// ReplaceAsset atomically swaps one asset's outgoing edges: the old
// contributions are removed from the reverse graph before the new ones
// are inserted. Used for incremental updates on corpus change.
func (g *Graph) ReplaceAsset(n *asset.Node) {
	g.AddNode(n)
}

// RemoveAsset drops an asset and its reverse-graph contributions.
// Dependents of the removed asset keep their edges; the key simply stops
// resolving to a node.
func (g *Graph) RemoveAsset(id string) {
	n, exists := g.nodes.Get(id)
	if !exists {
		return
	}
	g.removeReverseEdges(id)
	g.nodes.Delete(id)

	name := asset.BareName(n.ID)
	ids := g.bare[name]
	for i, candidate := range ids {
		if candidate == id {
			g.bare[name] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(g.bare[name]) == 0 {
		delete(g.bare, name)
	}
}

// addReverseEdges indexes n's references under their resolved keys.
func (g *Graph) addReverseEdges(n *asset.Node) {
	for _, ref := range n.References {
		key := g.reverseKey(ref)
		deps, _ := g.reverse.Get(key)
		deps = append(deps, Dependent{SourceID: n.ID, Kind: ref.Kind})
		g.reverse.Set(key, deps)
	}
}

// removeReverseEdges removes every edge contributed by sourceID.
func (g *Graph) removeReverseEdges(sourceID string) {
	n, exists := g.nodes.Get(sourceID)
	if !exists {
		return
	}
	for _, ref := range n.References {
		key := g.reverseKey(ref)
		deps, ok := g.reverse.Get(key)
		if !ok {
			continue
		}
		kept := deps[:0]
		for _, d := range deps {
			if d.SourceID != sourceID {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			g.reverse.Delete(key)
		} else {
			g.reverse.Set(key, kept)
		}
	}
}

// reverseKey maps a reference to its reverse-graph key: the resolved
// asset id for path-like references, the bare name for soft-text, and
// the raw target for external references.
func (g *Graph) reverseKey(ref asset.Reference) string {
	switch ref.Kind {
	case asset.RefSoftText, asset.RefExternal:
		return ref.TargetID
	default:
		return g.ResolveTarget(ref.TargetID)
	}
}

// ResolveTarget maps a reference target to a known asset id where
// possible: exact match first, then with each configured extension
// appended. Unresolvable targets are returned unchanged.
func (g *Graph) ResolveTarget(target string) string {
	target = asset.NormalizeID(target)
	if _, ok := g.nodes.Get(target); ok {
		return target
	}
	for _, ext := range g.extensions {
		candidate := target + ext
		if _, ok := g.nodes.Get(candidate); ok {
			return candidate
		}
	}
	return target
}

// Has reports whether id is a known asset. Part of the extractor's
// corpus lookup.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes.Get(id)
	return ok
}

// ResolveBare resolves a bare name to a unique asset id. Ambiguous names
// (shared by several assets) do not resolve; the soft-text heuristic is
// imprecise enough without cross-linking same-named assets.
func (g *Graph) ResolveBare(name string) (string, bool) {
	ids := g.bare[name]
	if len(ids) != 1 {
		return "", false
	}
	return ids[0], true
}

// Node returns the node for id, or nil if absent.
func (g *Graph) Node(id string) *asset.Node {
	n, _ := g.nodes.Get(id)
	return n
}

// Dependents returns the direct dependents recorded under key, in
// insertion order.
func (g *Graph) Dependents(key string) []Dependent {
	deps, _ := g.reverse.Get(key)
	return deps
}

// DirectDependents unions the path-keyed reverse lookup with the
// soft-text (bare name) lookup for a target asset. Duplicate sources keep
// their first (higher-confidence) occurrence.
func (g *Graph) DirectDependents(targetID string) []Dependent {
	var out []Dependent
	seen := make(map[string]bool)
	for _, d := range g.Dependents(targetID) {
		if d.SourceID == targetID || seen[d.SourceID] {
			continue
		}
		seen[d.SourceID] = true
		out = append(out, d)
	}
	for _, d := range g.Dependents(asset.BareName(targetID)) {
		if d.SourceID == targetID || seen[d.SourceID] {
			continue
		}
		seen[d.SourceID] = true
		out = append(out, d)
	}
	return out
}

// InDegree returns the number of direct dependents of an asset, counting
// soft-text mentions.
func (g *Graph) InDegree(targetID string) int {
	return len(g.DirectDependents(targetID))
}

// NodeCount returns the number of assets in the graph.
func (g *Graph) NodeCount() int {
	return g.nodes.Len()
}

// EdgeCount returns the total number of references across all assets.
func (g *Graph) EdgeCount() int {
	count := 0
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		count += len(el.Value.References)
	}
	return count
}

// AllNodes returns every asset id in insertion order.
func (g *Graph) AllNodes() []string {
	ids := make([]string, 0, g.nodes.Len())
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key)
	}
	return ids
}

// MostReferenced returns up to limit asset ids sorted by descending
// in-degree, ties broken by id. Used by the scan command's summary.
func (g *Graph) MostReferenced(limit int) []string {
	ids := g.AllNodes()
	type ranked struct {
		id     string
		degree int
	}
	rankedIDs := make([]ranked, 0, len(ids))
	for _, id := range ids {
		rankedIDs = append(rankedIDs, ranked{id: id, degree: g.InDegree(id)})
	}
	sort.Slice(rankedIDs, func(i, j int) bool {
		if rankedIDs[i].degree != rankedIDs[j].degree {
			return rankedIDs[i].degree > rankedIDs[j].degree
		}
		return rankedIDs[i].id < rankedIDs[j].id
	})
	if limit > len(rankedIDs) {
		limit = len(rankedIDs)
	}
	out := make([]string, 0, limit)
	for _, r := range rankedIDs[:limit] {
		out = append(out, r.id)
	}
	return out
}
