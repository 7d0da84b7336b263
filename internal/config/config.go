// Package config provides configuration structures and loading for blastradius.
package config

// Config represents the complete application configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus" mapstructure:"corpus"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// CorpusConfig describes where the asset corpus lives and how asset types
// map onto directories under the corpus root.
type CorpusConfig struct {
	Root       string            `yaml:"root" mapstructure:"root"`
	Types      map[string]string `yaml:"types" mapstructure:"types"`           // asset type -> directory
	Extensions []string          `yaml:"extensions" mapstructure:"extensions"` // scanned file extensions
}

// AnalysisConfig holds traversal and scoring settings.
type AnalysisConfig struct {
	Depth           string   `yaml:"depth" mapstructure:"depth"` // shallow, medium, deep
	MaxAffected     int      `yaml:"max_affected" mapstructure:"max_affected"`
	IncludeTests    bool     `yaml:"include_tests" mapstructure:"include_tests"`
	ExcludeExternal bool     `yaml:"exclude_external" mapstructure:"exclude_external"`
	Workers         int      `yaml:"workers" mapstructure:"workers"`
	Stoplist        []string `yaml:"stoplist" mapstructure:"stoplist"`
	CacheSize       int      `yaml:"cache_size" mapstructure:"cache_size"`
}

// HistoryConfig configures the optional MySQL analysis-history sink.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN     string `yaml:"dsn" mapstructure:"dsn"`
	Table   string `yaml:"table" mapstructure:"table"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultStoplist contains reserved words that are never treated as
// soft-text asset references even when they match a known bare name.
var DefaultStoplist = []string{
	"test", "main", "index", "config", "common", "utils", "base",
	"core", "default", "example", "template", "readme", "true", "false",
	"null", "name", "type", "value", "data", "file", "path",
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Root: ".",
			Types: map[string]string{
				"agent":    "agents",
				"workflow": "workflows",
				"command":  "commands",
				"template": "templates",
				"config":   "configs",
			},
			Extensions: []string{".md", ".yaml", ".yml", ".json", ".txt"},
		},
		Analysis: AnalysisConfig{
			Depth:       "medium",
			MaxAffected: 1000,
			Workers:     8,
			Stoplist:    DefaultStoplist,
			CacheSize:   256,
		},
		History: HistoryConfig{
			Enabled: false,
			Table:   "analysis_history",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, depth string, maxAffected, workers int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if depth != "" {
		c.Analysis.Depth = depth
	}
	if maxAffected > 0 {
		c.Analysis.MaxAffected = maxAffected
	}
	if workers > 0 {
		c.Analysis.Workers = workers
	}
}
