// Package engine wires the corpus scanner, graph builder, and impact
// analysis into one component with an explicit lifecycle: constructed at
// startup, graph built on demand, caches invalidated on corpus change,
// discarded at shutdown.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/config"
	"github.com/dbsmedya/blastradius/internal/corpus"
	"github.com/dbsmedya/blastradius/internal/graph"
	"github.com/dbsmedya/blastradius/internal/impact"
	"github.com/dbsmedya/blastradius/internal/logger"
)

// HistorySink records completed reports outside the analysis hot path.
// Recording failures are logged, never fatal.
type HistorySink interface {
	Record(ctx context.Context, report *impact.Report) error
}

// Engine is the impact-analysis entry point. One engine serves many
// concurrent analyses against the same immutable graph snapshot.
type Engine struct {
	cfg     *config.Config
	log     *logger.Logger
	scanner *corpus.Scanner
	builder *graph.Builder
	history HistorySink

	mu    sync.RWMutex
	graph *graph.Graph

	// cache is append-only per analysisId; cached reports are immutable.
	cache *lru.Cache[string, *impact.Report]
}

// Option customizes engine construction.
type Option func(*Engine)

// WithFs injects the filesystem used for corpus scanning. Tests pass an
// afero.MemMapFs.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.scanner = corpus.NewScanner(fs, e.cfg.Corpus, e.log)
	}
}

// WithHistory attaches an analysis-history sink.
func WithHistory(h HistorySink) Option {
	return func(e *Engine) { e.history = h }
}

// New creates an Engine from configuration.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.NewDefault()
	}

	cacheSize := cfg.Analysis.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, *impact.Report](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	typeDirs := make([]string, 0, len(cfg.Corpus.Types))
	for _, dir := range cfg.Corpus.Types {
		typeDirs = append(typeDirs, dir)
	}

	e := &Engine{
		cfg:     cfg,
		log:     log,
		scanner: corpus.NewScanner(afero.NewOsFs(), cfg.Corpus, log),
		builder: graph.NewBuilder(typeDirs, cfg.Corpus.Extensions, cfg.Analysis.Stoplist,
			cfg.Analysis.Workers, log),
		cache: cache,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// BuildGraph scans the corpus and materializes a fresh graph snapshot.
// The only fatal condition is an inaccessible corpus root.
func (e *Engine) BuildGraph(ctx context.Context) error {
	assets, err := e.scanner.Scan()
	if err != nil {
		return err
	}
	g, err := e.builder.Build(ctx, assets)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.graph = g
	e.mu.Unlock()

	e.log.Infow("dependency graph built", "assets", g.NodeCount(), "references", g.EdgeCount())
	return nil
}

// Graph returns the current snapshot, building it first if needed.
func (e *Engine) Graph(ctx context.Context) (*graph.Graph, error) {
	e.mu.RLock()
	g := e.graph
	e.mu.RUnlock()
	if g != nil {
		return g, nil
	}
	if err := e.BuildGraph(ctx); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph, nil
}

// Analyze resolves the blast radius of modifying target. Traversal owns a
// private visited set, so any number of analyses may run concurrently
// against one snapshot. Cancellation yields a partial report flagged
// incomplete rather than an error.
func (e *Engine) Analyze(ctx context.Context, target impact.Target, opts impact.Options) (*impact.Report, error) {
	g, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}

	// Callers pass paths as typed; graph keys are normalized ids.
	target.Path = asset.NormalizeID(target.Path)
	if target.Type == "" {
		target.Type = e.scanner.TypeOf(target.Path)
	}
	if opts.MaxAffected <= 0 {
		opts.MaxAffected = e.cfg.Analysis.MaxAffected
	}
	if opts.Depth == "" {
		opts.Depth = impact.DepthMode(e.cfg.Analysis.Depth)
	}

	analysisID := newAnalysisID()
	log := e.log.WithAnalysis(analysisID).WithAsset(target.Path)
	log.Debugw("starting impact analysis", "modification", opts.Modification, "depth", opts.Depth)

	affected, truncated, incomplete := impact.NewPropagator(g).Propagate(ctx, target.Path, opts)
	entries := impact.NewScorer(g).Score(target, opts, affected)
	recs := impact.Recommend(target, opts, entries)
	report := impact.Assemble(analysisID, target, opts, entries, recs, truncated, incomplete, time.Now())

	e.cache.Add(analysisID, report)

	if e.history != nil {
		if err := e.history.Record(ctx, report); err != nil {
			log.Warnw("failed to record analysis history", "error", err)
		}
	}

	log.Infow("impact analysis complete",
		"affected", report.Statistics.TotalComponents,
		"truncated", report.Truncated,
	)
	return report, nil
}

// CachedReport returns a previously assembled report by analysis id.
func (e *Engine) CachedReport(analysisID string) (*impact.Report, bool) {
	return e.cache.Get(analysisID)
}

// Invalidate applies a corpus-change notification copy-on-write: each
// changed asset's edges are replaced (or removed when the file is gone)
// on a private copy of the graph, which is then swapped in as the new
// snapshot. In-flight analyses keep reading the old snapshot unlocked.
// Every cached report is discarded since any of them may now be stale.
func (e *Engine) Invalidate(paths []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil {
		return
	}
	g := e.graph.Clone()
	for _, p := range paths {
		raw, err := e.scanner.Load(p)
		if err != nil {
			e.log.Debugw("asset unreadable on change, removing from graph", "asset", p)
			g.RemoveAsset(p)
			continue
		}
		e.builder.Rebuild(g, raw)
	}
	e.graph = g
	e.cache.Purge()
}

// Close releases engine resources.
func (e *Engine) Close() error {
	e.cache.Purge()
	return e.log.Sync()
}

// newAnalysisID builds a time-derived identifier. The uuid fragment keeps
// concurrent analyses within the same millisecond distinct.
func newAnalysisID() string {
	return fmt.Sprintf("impact-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
