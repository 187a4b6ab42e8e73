// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package config handles .drydock.yaml configuration files.
package config

// Config represents the contents of a .drydock.yaml file. Zero values mean
// "not set" and fall through to flags or defaults.
type Config struct {
	MinLines      int      `yaml:"min_lines,omitempty"`
	Ignore        []string `yaml:"ignore,omitempty"`
	Whitelist     string   `yaml:"whitelist,omitempty"`
	ScoreExponent float64  `yaml:"score_exponent,omitempty"`
	Workers       int      `yaml:"workers,omitempty"`
	Enrich        *bool    `yaml:"enrich,omitempty"`
	EnrichWorkers int      `yaml:"enrich_workers,omitempty"`
	Output        string   `yaml:"output,omitempty"`
	Format        string   `yaml:"format,omitempty"`
	Port          int      `yaml:"port,omitempty"`
	FailOnLeaks   *bool    `yaml:"fail_on_leaks,omitempty"`
}

// FileName is the expected config file name in the working directory.
const FileName = ".drydock.yaml"

// Defaults applied after merging.
const (
	DefaultScoreExponent = 1.5
	DefaultPort          = 3000
	DefaultOutput        = "drydock-report.json"
	DefaultFormat        = "text"
)
