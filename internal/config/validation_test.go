package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOK(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "empty corpus root",
			mutate:  func(c *Config) { c.Corpus.Root = "" },
			wantMsg: "corpus.root",
		},
		{
			name:    "no type mappings",
			mutate:  func(c *Config) { c.Corpus.Types = nil },
			wantMsg: "corpus.types",
		},
		{
			name:    "empty type directory",
			mutate:  func(c *Config) { c.Corpus.Types["agent"] = "" },
			wantMsg: "corpus.types.agent",
		},
		{
			name:    "invalid depth",
			mutate:  func(c *Config) { c.Analysis.Depth = "bottomless" },
			wantMsg: "analysis.depth",
		},
		{
			name:    "zero node cap",
			mutate:  func(c *Config) { c.Analysis.MaxAffected = 0 },
			wantMsg: "analysis.max_affected",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Analysis.Workers = -1 },
			wantMsg: "analysis.workers",
		},
		{
			name:    "empty stoplist",
			mutate:  func(c *Config) { c.Analysis.Stoplist = nil },
			wantMsg: "analysis.stoplist",
		},
		{
			name: "history enabled without dsn",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.DSN = ""
			},
			wantMsg: "history.dsn",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Corpus.Root = ""
	cfg.Analysis.Depth = "nope"
	cfg.Analysis.Workers = 0

	err := cfg.Validate()
	assert.Error(t, err)

	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
	assert.Equal(t, 3, strings.Count(err.Error(), "\n  - "), "one bullet per error")
}
