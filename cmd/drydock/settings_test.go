package main

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/config"
)

func TestScanFlags_Settings(t *testing.T) {
	var f scanFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{
		"--min-lines", "4", "-i", "gen/**", "-i", "*.pb.go", "--no-enrich",
		"--score-exponent", "2", "--workers", "3", "-o", "r.json", "--port", "8080",
	}))

	s := f.settings()
	assert.Equal(t, 4, s.MinLines)
	assert.Equal(t, []string{"gen/**", "*.pb.go"}, s.Ignore)
	require.NotNil(t, s.Enrich)
	assert.False(t, *s.Enrich)
	assert.InDelta(t, 2.0, s.ScoreExponent, 1e-9)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, "r.json", s.Output)
	assert.Equal(t, 8080, s.Port)
}

func TestScanFlags_EnrichUnsetByDefault(t *testing.T) {
	var f scanFlags
	assert.Nil(t, f.settings().Enrich)
}

func TestLoadSettings_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, config.FileName, "min_lines: 3\nport: 4000\nignore: [vendor/**]\n")

	s, err := loadSettings(dir, config.Settings{MinLines: 8, Ignore: []string{"gen/**"}})
	require.NoError(t, err)
	assert.Equal(t, 8, s.MinLines)
	assert.Equal(t, 4000, s.Port)
	assert.ElementsMatch(t, []string{"vendor/**", "gen/**"}, s.Ignore)
	assert.Equal(t, config.DefaultOutput, s.Output)
}

func TestLoadSettings_InvalidFlags(t *testing.T) {
	_, err := loadSettings(t.TempDir(), config.Settings{Port: 70000})
	ece := requireExitCode(t, err, ExitInvalidArgs)
	assert.Contains(t, ece.msg, "invalid flags")
}

func TestScanOptions(t *testing.T) {
	base := t.TempDir()
	s := config.Settings{Output: "reports/out.json", Ignore: []string{"gen/**"}}

	opts := scanOptions(base, s, nil, ".myignore")
	assert.Equal(t, runtime.GOMAXPROCS(0), opts.Workers)
	assert.Equal(t, filepath.Join(base, ".myignore"), opts.IgnoreFile)
	assert.Equal(t, []string{"gen/**", "/reports/out.json", "/reports/out.json.tmp"}, opts.Ignore)
	assert.Equal(t, base, opts.BaseDir)
	assert.Equal(t, []string{"gen/**"}, s.Ignore, "settings are not modified")
}

func TestScanOptions_OutputOutsideBase(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(t.TempDir(), "r.json")

	opts := scanOptions(base, config.Settings{Output: out, Workers: 2}, nil, "")
	assert.Empty(t, opts.Ignore)
	assert.Equal(t, 2, opts.Workers)
	assert.Empty(t, opts.IgnoreFile)
}

func TestLoadWhitelist(t *testing.T) {
	base := t.TempDir()
	wl, err := loadWhitelist(base, config.Settings{Whitelist: "nope.txt"})
	require.NoError(t, err)
	assert.Equal(t, 0, wl.Len(), "missing whitelist is empty")

	hash := strings.Repeat("ab", 32)
	writeTestFile(t, base, ".drydockwhitelist", hash+" shared logger\n")
	wl, err = loadWhitelist(base, config.Settings{})
	require.NoError(t, err)
	assert.True(t, wl.Contains(hash))
}

func TestInBase(t *testing.T) {
	assert.Equal(t, filepath.Join("/b", "x.json"), inBase("/b", "x.json"))
	assert.Equal(t, "/abs/x.json", inBase("/b", "/abs/x.json"))
}
