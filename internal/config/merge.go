package config

import (
	"path/filepath"
	"strings"
)

// Settings are the effective options of one command invocation.
type Settings struct {
	MinLines      int
	Ignore        []string
	Whitelist     string
	ScoreExponent float64
	Workers       int
	// Enrich is nil when neither the flag nor the file set it.
	Enrich        *bool
	EnrichWorkers int
	Output        string
	Format        string
	Port          int
	FailOnLeaks   bool
}

// Merge combines file-based config with CLI-provided settings.
// CLI values take precedence; zero-value CLI fields fall through to file
// config, then to defaults. Ignore patterns from both are kept, file first.
func Merge(fileCfg *Config, cli Settings) Settings {
	result := cli
	if fileCfg == nil {
		fileCfg = &Config{}
	}

	if result.MinLines == 0 {
		result.MinLines = fileCfg.MinLines
	}
	if len(fileCfg.Ignore) > 0 {
		result.Ignore = append(append([]string{}, fileCfg.Ignore...), cli.Ignore...)
	}
	if result.Whitelist == "" {
		result.Whitelist = fileCfg.Whitelist
	}
	if result.ScoreExponent == 0 {
		result.ScoreExponent = fileCfg.ScoreExponent
	}
	if result.Workers == 0 {
		result.Workers = fileCfg.Workers
	}
	if result.Enrich == nil {
		result.Enrich = fileCfg.Enrich
	}
	if result.EnrichWorkers == 0 {
		result.EnrichWorkers = fileCfg.EnrichWorkers
	}
	if result.Output == "" {
		result.Output = fileCfg.Output
	}
	if result.Format == "" {
		result.Format = fileCfg.Format
	}
	if result.Port == 0 {
		result.Port = fileCfg.Port
	}
	if !result.FailOnLeaks && fileCfg.FailOnLeaks != nil && *fileCfg.FailOnLeaks {
		result.FailOnLeaks = true
	}

	return result.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.ScoreExponent == 0 {
		s.ScoreExponent = DefaultScoreExponent
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.Format == "" {
		s.Format = DefaultFormat
	}
	if s.Enrich == nil {
		enrich := true
		s.Enrich = &enrich
	}
	return s
}

// EnrichEnabled reports whether git metadata should be attached.
func (s Settings) EnrichEnabled() bool {
	return s.Enrich == nil || *s.Enrich
}

// ScanIgnore returns the ignore patterns for a scan rooted at base. The
// report file named by Output and its ".tmp" sibling are appended when they
// live under base, so earlier reports are never scanned.
func (s Settings) ScanIgnore(base string) []string {
	ignore := append([]string{}, s.Ignore...)
	out := s.Output
	if out == "" {
		return ignore
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(base, out)
	}
	rel, err := filepath.Rel(base, out)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ignore
	}
	rel = "/" + filepath.ToSlash(rel)
	return append(ignore, rel, rel+".tmp")
}
