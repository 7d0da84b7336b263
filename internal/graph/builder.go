package graph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/corpus"
	"github.com/dbsmedya/blastradius/internal/extract"
	"github.com/dbsmedya/blastradius/internal/logger"
)

// Builder aggregates per-asset references into a dependency graph.
type Builder struct {
	typeDirs   []string
	extensions []string
	stoplist   []string
	workers    int
	log        *logger.Logger
}

// NewBuilder creates a graph builder. typeDirs are the configured
// asset-type directory names, extensions the resolvable file extensions,
// and workers the extraction parallelism.
func NewBuilder(typeDirs, extensions, stoplist []string, workers int, log *logger.Logger) *Builder {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Builder{
		typeDirs:   typeDirs,
		extensions: extensions,
		stoplist:   stoplist,
		workers:    workers,
		log:        log,
	}
}

// Build constructs forward and reverse graphs from a corpus snapshot.
// Extraction runs in parallel across workers; each asset's reference list
// is computed in isolation and merged afterward, so the result is
// idempotent for an unchanged corpus.
func (b *Builder) Build(ctx context.Context, assets []corpus.RawAsset) (*Graph, error) {
	g := New(b.extensions)

	// Phase 1: index every node so bare-name and path resolution see the
	// whole corpus before any classification happens.
	for i := range assets {
		g.AddNode(&asset.Node{
			ID:          assets[i].ID,
			Type:        assets[i].Type,
			Fingerprint: asset.Fingerprint(assets[i].Content),
		})
	}

	extractor := extract.New(g, b.typeDirs, b.stoplist)

	// Phase 2: extract references in parallel. Results land in a
	// per-asset slot; no shared mutable state inside the workers.
	refs := make([][]asset.Reference, len(assets))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)
	for i := range assets {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			refs[i] = extractor.Extract(assets[i].ID, assets[i].Type, assets[i].Content)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Phase 3: merge sequentially in scan order so reverse-graph
	// insertion order is deterministic.
	for i := range assets {
		n := g.Node(assets[i].ID)
		n.References = refs[i]
		g.ReplaceAsset(n)
	}

	b.log.Debugw("graph built",
		"assets", g.NodeCount(),
		"references", g.EdgeCount(),
	)
	return g, nil
}

// Rebuild re-extracts a single asset and atomically swaps its edges into
// an existing graph. Used by the corpus watcher for incremental updates.
func (b *Builder) Rebuild(g *Graph, raw corpus.RawAsset) {
	extractor := extract.New(g, b.typeDirs, b.stoplist)
	n := &asset.Node{
		ID:          raw.ID,
		Type:        raw.Type,
		Fingerprint: asset.Fingerprint(raw.Content),
		References:  extractor.Extract(raw.ID, raw.Type, raw.Content),
	}
	g.ReplaceAsset(n)
}
