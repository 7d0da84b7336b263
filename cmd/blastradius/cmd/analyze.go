package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/config"
	"github.com/dbsmedya/blastradius/internal/engine"
	"github.com/dbsmedya/blastradius/internal/history"
	"github.com/dbsmedya/blastradius/internal/impact"
	"github.com/dbsmedya/blastradius/internal/logger"
	"github.com/dbsmedya/blastradius/internal/render"
)

var (
	analyzeTarget       string
	analyzeType         string
	analyzeModification string
	analyzeIncludeTests bool
	analyzeNoExternal   bool
	analyzeFormat       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Resolve the blast radius of modifying an asset",
	Long: `Analyze builds the reference graph, walks the reverse graph from the
target asset, and reports every transitively affected component with a
severity score and recommendations.

The traversal is bounded: depth is limited by the depth mode (shallow=2,
medium=4, deep=8 hops) and a node cap truncates pathological graphs.

Example:
  blastradius analyze --config blastradius.yaml \
    --target agents/core-util.md --modification remove --depth deep`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTarget, "target", "t", "",
		"Corpus-relative path of the asset to analyze (required)")
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "",
		"Asset type of the target (derived from its directory if omitted)")
	analyzeCmd.Flags().StringVarP(&analyzeModification, "modification", "m", "modify",
		"Kind of change (modify, refactor, deprecate, remove)")
	analyzeCmd.Flags().BoolVar(&analyzeIncludeTests, "include-tests", false,
		"Include test assets in the affected set")
	analyzeCmd.Flags().BoolVar(&analyzeNoExternal, "exclude-external", false,
		"Exclude external references from the affected set")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table",
		"Output format (table, json)")
	analyzeCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	switch impact.Modification(analyzeModification) {
	case impact.ModModify, impact.ModRefactor, impact.ModDeprecate, impact.ModRemove:
	default:
		return fmt.Errorf("invalid modification type %q", analyzeModification)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []engine.Option{}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History)
		if err != nil {
			// History is an audit trail, not a prerequisite.
			log.Warnw("history store unavailable, continuing without it", "error", err)
		} else {
			defer store.Close()
			if err := store.EnsureSchema(ctx); err != nil {
				log.Warnw("failed to ensure history schema", "error", err)
			} else {
				opts = append(opts, engine.WithHistory(store))
			}
		}
	}

	eng, err := engine.New(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	report, err := eng.Analyze(ctx,
		impact.Target{Path: analyzeTarget, Type: parseAssetType(analyzeType)},
		impact.Options{
			Depth:           impact.DepthMode(cfg.Analysis.Depth),
			Modification:    impact.Modification(analyzeModification),
			IncludeTests:    analyzeIncludeTests || cfg.Analysis.IncludeTests,
			ExcludeExternal: analyzeNoExternal || cfg.Analysis.ExcludeExternal,
			MaxAffected:     cfg.Analysis.MaxAffected,
		})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeFormat == "json" {
		enc := json.NewEncoder(outputWriter)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	render.Report(outputWriter, report)
	return nil
}

// parseAssetType converts the --type flag, leaving it empty so the engine
// derives the type from the target's directory.
func parseAssetType(s string) asset.Type {
	if s == "" {
		return ""
	}
	return asset.Type(s)
}

// loadConfig loads the config file, applies CLI overrides, validates, and
// builds the logger. Shared by every command.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(logLevel, logFormat, depthFlag, maxAffected, workers)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}
