package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/blastradius/internal/engine"
	"github.com/dbsmedya/blastradius/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the corpus and keep the reference graph current",
	Long: `Watch builds the reference graph, then observes the corpus type
directories for changes. Changed assets have their edges atomically
replaced in the graph and all cached analyses are invalidated.

Stop with Ctrl-C.

Example:
  blastradius watch --config blastradius.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.BuildGraph(ctx); err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	fmt.Fprintln(outputWriter, "Graph built; watching for corpus changes...")

	w := watch.New(cfg.Corpus, log, 0, func(paths []string) {
		eng.Invalidate(paths)
		fmt.Fprintf(outputWriter, "Updated %d asset(s); caches invalidated\n", len(paths))
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
