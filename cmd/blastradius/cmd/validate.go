package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/blastradius/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and corpus layout",
	Long: `Validate checks the configuration file and the corpus layout.

Checks performed:
  - Configuration syntax and required fields
  - Depth mode, worker count, and node cap sanity
  - Stoplist presence (soft-text matching floods without one)
  - Existence of the corpus root and type directories

Example:
  blastradius validate --config blastradius.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(logLevel, logFormat, depthFlag, maxAffected, workers)

	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(outputWriter, "Configuration: OK")

	if _, err := os.Stat(cfg.Corpus.Root); err != nil {
		return fmt.Errorf("corpus root %q is not accessible: %w", cfg.Corpus.Root, err)
	}
	fmt.Fprintf(outputWriter, "Corpus root:   %s\n", cfg.Corpus.Root)

	// Missing directories are not an error at analysis time, but the
	// validate command surfaces them so typos are caught early.
	for t, dir := range cfg.Corpus.Types {
		full := filepath.Join(cfg.Corpus.Root, dir)
		if _, err := os.Stat(full); err != nil {
			fmt.Fprintf(outputWriter, "  warning: %s directory %q not found (treated as empty)\n", t, dir)
			continue
		}
		fmt.Fprintf(outputWriter, "  %-10s %s\n", t, full)
	}

	return nil
}
