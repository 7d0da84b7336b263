package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

var validDepths = map[string]bool{"shallow": true, "medium": true, "deep": true}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if c.Corpus.Root == "" {
		errors = append(errors, ValidationError{"corpus.root", "corpus root is required"})
	}
	if len(c.Corpus.Types) == 0 {
		errors = append(errors, ValidationError{"corpus.types", "at least one asset type mapping is required"})
	}
	for typ, dir := range c.Corpus.Types {
		if dir == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("corpus.types.%s", typ),
				Message: "directory must not be empty",
			})
		}
	}

	if !validDepths[c.Analysis.Depth] {
		errors = append(errors, ValidationError{
			Field:   "analysis.depth",
			Message: fmt.Sprintf("invalid depth %q (must be shallow, medium, or deep)", c.Analysis.Depth),
		})
	}
	if c.Analysis.MaxAffected <= 0 {
		errors = append(errors, ValidationError{"analysis.max_affected", "must be greater than zero"})
	}
	if c.Analysis.Workers <= 0 {
		errors = append(errors, ValidationError{"analysis.workers", "must be greater than zero"})
	}
	if len(c.Analysis.Stoplist) == 0 {
		errors = append(errors, ValidationError{"analysis.stoplist", "stoplist must not be empty (soft-text matching would flood)"})
	}

	if c.History.Enabled {
		if c.History.DSN == "" {
			errors = append(errors, ValidationError{"history.dsn", "DSN is required when history is enabled"})
		}
		if c.History.Table == "" {
			errors = append(errors, ValidationError{"history.table", "table name is required when history is enabled"})
		}
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json or text)", c.Logging.Format),
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
