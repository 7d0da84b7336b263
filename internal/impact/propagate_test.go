package impact

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/graph"
)

func newGraph() *graph.Graph {
	return graph.New([]string{".md", ".yaml"})
}

func addAsset(g *graph.Graph, id string, targets ...string) {
	refs := make([]asset.Reference, 0, len(targets))
	for _, target := range targets {
		refs = append(refs, asset.Reference{TargetID: target, Kind: asset.RefInternal})
	}
	g.AddNode(&asset.Node{ID: id, Type: asset.TypeAgent, References: refs})
}

func defaultOpts(depth DepthMode) Options {
	return Options{Depth: depth, Modification: ModModify}
}

// chainGraph builds target <- d1 <- d2 <- ... <- dN.
func chainGraph(n int) *graph.Graph {
	g := newGraph()
	addAsset(g, "agents/target.md")
	prev := "agents/target.md"
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("agents/dep-%d.md", i)
		addAsset(g, id, prev)
		prev = id
	}
	return g
}

func TestPropagateRecordsShortestDepth(t *testing.T) {
	g := chainGraph(3)
	p := NewPropagator(g)

	affected, truncated, incomplete := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthDeep))
	assert.False(t, truncated)
	assert.False(t, incomplete)

	require.Len(t, affected, 3)
	for i, a := range affected {
		assert.Equal(t, fmt.Sprintf("agents/dep-%d.md", i+1), a.AssetID)
		assert.Equal(t, i+1, a.Depth)
	}
}

func TestPropagateDepthModesBoundTraversal(t *testing.T) {
	g := chainGraph(10)
	p := NewPropagator(g)

	shallow, _, _ := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthShallow))
	medium, _, _ := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthMedium))
	deep, _, _ := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthDeep))

	assert.Len(t, shallow, 2)
	assert.Len(t, medium, 4)
	assert.Len(t, deep, 8)
}

func TestPropagateMonotonicity(t *testing.T) {
	g := chainGraph(10)
	p := NewPropagator(g)

	shallow, _, _ := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthShallow))
	medium, _, _ := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthMedium))
	deep, _, _ := p.Propagate(context.Background(), "agents/target.md", defaultOpts(DepthDeep))

	assert.Subset(t, ids(medium), ids(shallow), "shallow must be a subset of medium")
	assert.Subset(t, ids(deep), ids(medium), "medium must be a subset of deep")
}

func TestPropagateSelfExclusion(t *testing.T) {
	g := newGraph()
	addAsset(g, "agents/a.md", "agents/a.md") // self-reference
	addAsset(g, "agents/b.md", "agents/a.md")
	p := NewPropagator(g)

	affected, _, _ := p.Propagate(context.Background(), "agents/a.md", defaultOpts(DepthDeep))

	assert.NotContains(t, ids(affected), "agents/a.md")
	assert.Equal(t, []string{"agents/b.md"}, ids(affected))
}

func TestPropagateCycleTerminates(t *testing.T) {
	g := newGraph()
	addAsset(g, "agents/a.md", "agents/b.md")
	addAsset(g, "agents/b.md", "agents/a.md")
	p := NewPropagator(g)

	affected, truncated, _ := p.Propagate(context.Background(), "agents/a.md", defaultOpts(DepthDeep))
	assert.False(t, truncated)

	// b depends on a, so b is affected exactly once; a never appears.
	require.Len(t, affected, 1)
	assert.Equal(t, "agents/b.md", affected[0].AssetID)
	assert.Equal(t, 1, affected[0].Depth)
}

func TestPropagateNoDependents(t *testing.T) {
	g := newGraph()
	addAsset(g, "agents/island.md")
	p := NewPropagator(g)

	affected, truncated, incomplete := p.Propagate(context.Background(), "agents/island.md", defaultOpts(DepthDeep))

	assert.Empty(t, affected)
	assert.False(t, truncated)
	assert.False(t, incomplete)
}

func TestPropagateNodeCapTruncates(t *testing.T) {
	g := newGraph()
	addAsset(g, "agents/hub.md")
	// 1200 dependents exceed the default 1000-node cap.
	for i := 0; i < 1200; i++ {
		addAsset(g, fmt.Sprintf("agents/dense-%04d.md", i), "agents/hub.md")
	}
	p := NewPropagator(g)

	affected, truncated, incomplete := p.Propagate(context.Background(), "agents/hub.md", defaultOpts(DepthDeep))

	assert.True(t, truncated, "exceeding the cap must set the truncated flag, not error")
	assert.False(t, incomplete)
	assert.LessOrEqual(t, len(affected), DefaultMaxAffected)
}

func TestPropagateCustomCap(t *testing.T) {
	g := chainGraph(8)
	p := NewPropagator(g)

	opts := defaultOpts(DepthDeep)
	opts.MaxAffected = 3
	affected, truncated, _ := p.Propagate(context.Background(), "agents/target.md", opts)

	assert.True(t, truncated)
	assert.Len(t, affected, 3)
}

func TestPropagateCancellation(t *testing.T) {
	g := chainGraph(5)
	p := NewPropagator(g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	affected, _, incomplete := p.Propagate(ctx, "agents/target.md", defaultOpts(DepthDeep))

	assert.True(t, incomplete, "cancellation yields a partial result, not an error")
	assert.Empty(t, affected)
}

func TestPropagateExcludesTestAssets(t *testing.T) {
	g := newGraph()
	addAsset(g, "agents/target.md")
	addAsset(g, "agents/real.md", "agents/target.md")
	addAsset(g, "agents/helper_test.md", "agents/target.md")
	p := NewPropagator(g)

	opts := defaultOpts(DepthDeep)
	affected, _, _ := p.Propagate(context.Background(), "agents/target.md", opts)
	assert.Equal(t, []string{"agents/real.md"}, ids(affected))

	opts.IncludeTests = true
	affected, _, _ = p.Propagate(context.Background(), "agents/target.md", opts)
	assert.ElementsMatch(t, []string{"agents/real.md", "agents/helper_test.md"}, ids(affected))
}

func TestPropagateExcludesExternalKind(t *testing.T) {
	g := newGraph()
	addAsset(g, "agents/target.md")
	g.AddNode(&asset.Node{ID: "agents/ext.md", Type: asset.TypeAgent,
		References: []asset.Reference{{TargetID: "agents/target.md", Kind: asset.RefExternal}}})
	p := NewPropagator(g)

	opts := defaultOpts(DepthDeep)
	opts.ExcludeExternal = true
	affected, _, _ := p.Propagate(context.Background(), "agents/target.md", opts)
	assert.Empty(t, affected)

	opts.ExcludeExternal = false
	affected, _, _ = p.Propagate(context.Background(), "agents/target.md", opts)
	assert.Len(t, affected, 1)
}

func ids(affected []Affected) []string {
	out := make([]string, 0, len(affected))
	for _, a := range affected {
		out = append(out, a.AssetID)
	}
	return out
}
