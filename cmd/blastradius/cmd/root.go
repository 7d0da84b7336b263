package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	depthFlag   string
	maxAffected int
	workers     int
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var rootCmd = &cobra.Command{
	Use:   "blastradius",
	Short: "Modification impact analysis for declarative asset corpora",
	Long: `blastradius resolves the blast radius of changing a declarative asset
(agent, workflow, command, template, config) inside a corpus.

It builds a reference graph from the corpus, walks the reverse graph from
the target, scores every transitively affected component, and produces
actionable recommendations.

The engine never modifies the corpus and never executes any asset; it is
a best-effort static analysis.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "blastradius.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Analysis overrides
	rootCmd.PersistentFlags().StringVar(&depthFlag, "depth", "",
		"Override traversal depth (shallow, medium, deep)")
	rootCmd.PersistentFlags().IntVar(&maxAffected, "max-affected", 0,
		"Override the affected-node safety cap")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override extraction worker count")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}
