package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded configuration. Load calls it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must be set")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}
	if c.Reader.SentencesPerPage <= 0 {
		return fmt.Errorf("reader.sentences_per_page must be > 0 (got %d)", c.Reader.SentencesPerPage)
	}
	if c.Reader.ComposeWindow < 2 {
		return fmt.Errorf("reader.compose_window must be >= 2 (got %d)", c.Reader.ComposeWindow)
	}
	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

func (c *ImportConfig) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be > 0 (got %d)", c.MaxBodyBytes)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be > 0 (got %v)", c.FetchTimeout)
	}
	return nil
}
