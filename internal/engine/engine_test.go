package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/config"
	"github.com/dbsmedya/blastradius/internal/corpus"
	"github.com/dbsmedya/blastradius/internal/impact"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Corpus.Root = "/corpus"
	cfg.Logging.Level = "error"
	return cfg
}

func newTestEngine(t *testing.T, files map[string]string) (*Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus", 0755))
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}

	eng, err := New(testConfig(), nil, WithFs(fs))
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng, fs
}

func scenarioFiles() map[string]string {
	return map[string]string{
		"/corpus/agents/core-util.md":         "Shared helper routines.",
		"/corpus/agents/agent-x.md":           "Uses ./core-util.md for helpers.",
		"/corpus/workflows/workflow-y.yaml":   "$ref: ../agents/agent-x.md",
		"/corpus/agents/island.md":            "References nothing and nothing references it.",
	}
}

func removeOpts() impact.Options {
	return impact.Options{Depth: impact.DepthDeep, Modification: impact.ModRemove}
}

func TestAnalyzeRemoveScenario(t *testing.T) {
	eng, _ := newTestEngine(t, scenarioFiles())

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)

	require.Len(t, report.Affected, 2)

	byID := make(map[string]impact.Entry)
	for _, e := range report.Affected {
		byID[e.AssetID] = e
	}
	x, ok := byID["agents/agent-x.md"]
	require.True(t, ok)
	assert.Equal(t, 1, x.Depth)
	assert.Equal(t, asset.RefInternal, x.Kind)

	y, ok := byID["workflows/workflow-y.yaml"]
	require.True(t, ok)
	assert.Equal(t, 2, y.Depth)

	assert.Less(t, y.Score, x.Score)
	assert.Equal(t, asset.TypeAgent, report.Target.Type, "type derived from the target's directory")
	assert.False(t, report.Truncated)
	assert.False(t, report.Incomplete)
}

func TestAnalyzeNormalizesTargetPath(t *testing.T) {
	eng, _ := newTestEngine(t, scenarioFiles())

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "./agents/core-util.md"}, removeOpts())
	require.NoError(t, err)

	assert.Equal(t, "agents/core-util.md", report.Target.Path)
	assert.Equal(t, asset.TypeAgent, report.Target.Type)
	assert.Len(t, report.Affected, 2)
}

func TestAnalyzeZeroDependents(t *testing.T) {
	eng, _ := newTestEngine(t, scenarioFiles())

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/island.md"}, removeOpts())
	require.NoError(t, err)

	assert.Empty(t, report.Affected)
	assert.Empty(t, report.Categories.Critical)
	assert.Empty(t, report.Categories.High)
	assert.Empty(t, report.Categories.Medium)
	assert.Empty(t, report.Categories.Low)
	assert.Equal(t, 0, report.Statistics.TotalComponents)

	found := false
	for _, r := range report.Recommendations {
		if r.Action == "safe to proceed" {
			found = true
		}
	}
	assert.True(t, found, "zero dependents must produce a safe-to-proceed recommendation")
}

func TestAnalyzeIdempotent(t *testing.T) {
	eng, _ := newTestEngine(t, scenarioFiles())

	first, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)
	second, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)

	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)
	assert.Equal(t, first.Affected, second.Affected,
		"identical corpus and options must produce identical ordering and scores")
	assert.Equal(t, first.Statistics, second.Statistics)
}

func TestAnalysisIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newAnalysisID()
		assert.False(t, seen[id], "duplicate analysis id %s", id)
		seen[id] = true
	}
}

func TestCachedReport(t *testing.T) {
	eng, _ := newTestEngine(t, scenarioFiles())

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)

	cached, ok := eng.CachedReport(report.AnalysisID)
	require.True(t, ok)
	assert.Same(t, report, cached)

	_, ok = eng.CachedReport("impact-0-missing")
	assert.False(t, ok)
}

func TestInvalidateAppliesIncrementalUpdate(t *testing.T) {
	eng, fs := newTestEngine(t, scenarioFiles())

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)
	require.Len(t, report.Affected, 2)

	// agent-x stops referencing core-util.
	require.NoError(t, afero.WriteFile(fs,
		"/corpus/agents/agent-x.md", []byte("Standalone now."), 0644))
	eng.Invalidate([]string{"agents/agent-x.md"})

	_, ok := eng.CachedReport(report.AnalysisID)
	assert.False(t, ok, "invalidation must purge cached reports")

	fresh, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)
	assert.Empty(t, fresh.Affected)
}

func TestInvalidateRemovesDeletedAssets(t *testing.T) {
	eng, fs := newTestEngine(t, scenarioFiles())

	_, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)

	require.NoError(t, fs.Remove("/corpus/agents/agent-x.md"))
	eng.Invalidate([]string{"agents/agent-x.md"})

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)
	assert.Empty(t, report.Affected)
}

func TestAnalyzeCorpusUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.Corpus.Root = "/nonexistent"
	eng, err := New(cfg, nil, WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Analyze(context.Background(),
		impact.Target{Path: "agents/x.md"}, removeOpts())
	assert.ErrorIs(t, err, corpus.ErrCorpusUnavailable)
}

func TestConcurrentAnalyses(t *testing.T) {
	files := scenarioFiles()
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("/corpus/agents/extra-%02d.md", i)] = "Uses ./core-util.md too."
	}
	eng, _ := newTestEngine(t, files)
	require.NoError(t, eng.BuildGraph(context.Background()))

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := eng.Analyze(context.Background(),
				impact.Target{Path: "agents/core-util.md"}, removeOpts())
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}

func TestAnalyzeConcurrentWithInvalidate(t *testing.T) {
	// Invalidation swaps in a fresh snapshot; analyses already traversing
	// the old one must never observe the mutation. Run under -race.
	eng, fs := newTestEngine(t, scenarioFiles())
	require.NoError(t, eng.BuildGraph(context.Background()))

	contents := []string{
		"Uses ./core-util.md for helpers.",
		"Standalone now.",
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			assert.NoError(t, afero.WriteFile(fs,
				"/corpus/agents/agent-x.md", []byte(contents[i%2]), 0644))
			eng.Invalidate([]string{"agents/agent-x.md"})
		}
	}()

	for i := 0; i < 200; i++ {
		report, err := eng.Analyze(context.Background(),
			impact.Target{Path: "agents/core-util.md"}, removeOpts())
		require.NoError(t, err)
		// Either snapshot is valid; the affected set just differs.
		assert.LessOrEqual(t, len(report.Affected), 2)
	}
	<-done
}

type recordingSink struct {
	recorded []*impact.Report
}

func (r *recordingSink) Record(_ context.Context, report *impact.Report) error {
	r.recorded = append(r.recorded, report)
	return nil
}

func TestHistorySinkReceivesReports(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/corpus", 0755))
	for path, content := range scenarioFiles() {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}

	sink := &recordingSink{}
	eng, err := New(testConfig(), nil, WithFs(fs), WithHistory(sink))
	require.NoError(t, err)
	defer eng.Close()

	report, err := eng.Analyze(context.Background(),
		impact.Target{Path: "agents/core-util.md"}, removeOpts())
	require.NoError(t, err)

	require.Len(t, sink.recorded, 1)
	assert.Equal(t, report.AnalysisID, sink.recorded[0].AnalysisID)
}
