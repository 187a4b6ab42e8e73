package main

import (
	"path/filepath"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/davetashner/drydock/internal/config"
	"github.com/davetashner/drydock/internal/scan"
	"github.com/davetashner/drydock/internal/whitelist"
)

// scanFlags are the flags shared by scan and serve.
type scanFlags struct {
	base          string
	minLines      int
	ignore        []string
	ignoreFile    string
	whitelist     string
	workers       int
	enrichWorkers int
	noEnrich      bool
	scoreExponent float64
	output        string
	port          int
}

// register adds the shared flags to fs.
func (f *scanFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.base, "base", "C", "", "directory paths and project identifiers are relative to (default: current directory)")
	fs.IntVar(&f.minLines, "min-lines", 0, "skip files shorter than this many lines")
	fs.StringSliceVarP(&f.ignore, "ignore", "i", nil, "glob patterns to ignore, added to the defaults (repeatable)")
	fs.StringVar(&f.ignoreFile, "ignore-file", "", "ignore pattern file (default: .drydockignore in the base directory)")
	fs.StringVarP(&f.whitelist, "whitelist", "w", "", "whitelist of accepted fingerprints (default: .drydockwhitelist in the base directory)")
	fs.IntVar(&f.workers, "workers", 0, "files normalized concurrently (default: number of CPUs)")
	fs.IntVar(&f.enrichWorkers, "enrich-workers", 0, "concurrent git lookups (default: 8)")
	fs.BoolVar(&f.noEnrich, "no-enrich", false, "skip git author/date lookups for duplicated files")
	fs.Float64Var(&f.scoreExponent, "score-exponent", 0, "weight of spread in the leak score (default: 1.5)")
	fs.StringVarP(&f.output, "output", "o", "", "report JSON file (default: "+config.DefaultOutput+")")
	fs.IntVar(&f.port, "port", 0, "dashboard port (default: 3000)")
}

// settings converts the flags into CLI settings for config.Merge.
func (f *scanFlags) settings() config.Settings {
	s := config.Settings{
		MinLines:      f.minLines,
		Ignore:        f.ignore,
		Whitelist:     f.whitelist,
		ScoreExponent: f.scoreExponent,
		Workers:       f.workers,
		EnrichWorkers: f.enrichWorkers,
		Output:        f.output,
		Port:          f.port,
	}
	if f.noEnrich {
		off := false
		s.Enrich = &off
	}
	return s
}

// resolveBase resolves the base directory flag into an absolute directory.
func resolveBase(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := cmdFS.Abs(dir)
	if err != nil {
		return "", exitError(ExitInvalidArgs, "drydock: cannot resolve path %q (%v)", dir, err)
	}
	info, err := cmdFS.Stat(abs)
	if err != nil {
		return "", exitError(ExitInvalidArgs, "drydock: path %q does not exist (check the path and try again)", dir)
	}
	if !info.IsDir() {
		return "", exitError(ExitInvalidArgs, "drydock: %q is not a directory", dir)
	}
	return abs, nil
}

// loadSettings merges the config files found for base with cli. Flag values
// and config files are validated with the same rules.
func loadSettings(base string, cli config.Settings) (config.Settings, error) {
	fileCfg, err := config.LoadEffective(base)
	if err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "drydock: failed to load %s (%v)", config.FileName, err)
	}
	if err := config.Validate(fileCfg); err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "drydock: %v", err)
	}
	flagCfg := &config.Config{
		MinLines:      cli.MinLines,
		Ignore:        cli.Ignore,
		ScoreExponent: cli.ScoreExponent,
		Workers:       cli.Workers,
		EnrichWorkers: cli.EnrichWorkers,
		Format:        cli.Format,
		Port:          cli.Port,
	}
	if err := config.Validate(flagCfg); err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "drydock: invalid flags: %v", err)
	}
	return config.Merge(fileCfg, cli), nil
}

// loadWhitelist loads the whitelist named in settings, relative to base.
func loadWhitelist(base string, s config.Settings) (*whitelist.Whitelist, error) {
	path := s.Whitelist
	if path != "" {
		path = inBase(base, path)
	}
	wl, err := whitelist.LoadDefault(base, path)
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "drydock: %v", err)
	}
	return wl, nil
}

// scanOptions builds scanner options from merged settings.
func scanOptions(base string, s config.Settings, wl *whitelist.Whitelist, ignoreFile string) scan.Options {
	workers := s.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if ignoreFile != "" {
		ignoreFile = inBase(base, ignoreFile)
	}
	return scan.Options{
		MinLines:      s.MinLines,
		Workers:       workers,
		Whitelist:     wl,
		Enrich:        s.EnrichEnabled(),
		EnrichWorkers: s.EnrichWorkers,
		ScoreExponent: s.ScoreExponent,
		BaseDir:       base,
		Ignore:        s.ScanIgnore(base),
		IgnoreFile:    ignoreFile,
	}
}

// inBase anchors a relative path at base.
func inBase(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
