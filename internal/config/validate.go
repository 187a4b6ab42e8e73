package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/davetashner/drydock/internal/output"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.MinLines < 0 {
		errs = append(errs, fmt.Sprintf("min_lines: must be non-negative, got %d", cfg.MinLines))
	}
	if cfg.ScoreExponent < 0 {
		errs = append(errs, fmt.Sprintf("score_exponent: must be positive, got %g", cfg.ScoreExponent))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Sprintf("workers: must be non-negative, got %d", cfg.Workers))
	}
	if cfg.EnrichWorkers < 0 {
		errs = append(errs, fmt.Sprintf("enrich_workers: must be non-negative, got %d", cfg.EnrichWorkers))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port: must be between 1 and 65535, got %d", cfg.Port))
	}
	if cfg.Format != "" {
		if _, err := output.GetFormatter(cfg.Format); err != nil {
			errs = append(errs, fmt.Sprintf("format: %v", err))
		}
	}
	for i, p := range cfg.Ignore {
		if !doublestar.ValidatePattern(strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")) {
			errs = append(errs, fmt.Sprintf("ignore[%d]: invalid pattern %q", i, p))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
