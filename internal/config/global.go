package config

import (
	"os"
	"path/filepath"
)

// GlobalConfigDir returns the directory for global drydock configuration.
// It uses $XDG_CONFIG_HOME/drydock if set, otherwise ~/.config/drydock.
func GlobalConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "drydock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "drydock")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// LoadGlobal loads the global config file.
// If the file does not exist, it returns a zero-value Config and nil error.
func LoadGlobal() (*Config, error) {
	return loadFile(GlobalConfigPath())
}

// LoadEffective loads the global config and overlays the one in dir.
// Fields set in dir win; ignore lists are concatenated.
func LoadEffective(dir string) (*Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return nil, err
	}
	local, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return Overlay(global, local), nil
}

// Overlay returns base with every field set in top replacing it.
func Overlay(base, top *Config) *Config {
	out := *base
	if top.MinLines != 0 {
		out.MinLines = top.MinLines
	}
	if len(top.Ignore) > 0 {
		out.Ignore = append(append([]string{}, base.Ignore...), top.Ignore...)
	}
	if top.Whitelist != "" {
		out.Whitelist = top.Whitelist
	}
	if top.ScoreExponent != 0 {
		out.ScoreExponent = top.ScoreExponent
	}
	if top.Workers != 0 {
		out.Workers = top.Workers
	}
	if top.Enrich != nil {
		out.Enrich = top.Enrich
	}
	if top.EnrichWorkers != 0 {
		out.EnrichWorkers = top.EnrichWorkers
	}
	if top.Output != "" {
		out.Output = top.Output
	}
	if top.Format != "" {
		out.Format = top.Format
	}
	if top.Port != 0 {
		out.Port = top.Port
	}
	if top.FailOnLeaks != nil {
		out.FailOnLeaks = top.FailOnLeaks
	}
	return &out
}
