package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/blastradius/internal/engine"
)

var scanTop int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Build the reference graph and print corpus statistics",
	Long: `Scan discovers every asset under the configured type directories,
extracts references, and prints a summary of the resulting graph:
asset and reference counts plus the most-referenced assets.

Example:
  blastradius scan --config blastradius.yaml --top 10`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTop, "top", 10,
		"Number of most-referenced assets to list")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	g, err := eng.Graph(context.Background())
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	fmt.Fprintf(outputWriter, "Corpus: %s\n", cfg.Corpus.Root)
	fmt.Fprintf(outputWriter, "  assets:     %d\n", g.NodeCount())
	fmt.Fprintf(outputWriter, "  references: %d\n", g.EdgeCount())
	fmt.Fprintln(outputWriter)

	top := g.MostReferenced(scanTop)
	if len(top) == 0 {
		fmt.Fprintln(outputWriter, "No assets found.")
		return nil
	}
	fmt.Fprintln(outputWriter, "Most referenced assets:")
	for _, id := range top {
		fmt.Fprintf(outputWriter, "  %4d  %s\n", g.InDegree(id), id)
	}
	return nil
}
