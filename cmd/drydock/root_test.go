// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHelp(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "cross-project leakage")
	for _, sub := range []string{"scan", "serve", "trend", "config", "mcp", "version"} {
		assert.Contains(t, stdout, sub)
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "quiet", "no-color", "log-format"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "global flag --%s not registered", name)
		})
	}

	v := rootCmd.PersistentFlags().ShorthandLookup("v")
	require.NotNil(t, v)
	assert.Equal(t, "verbose", v.Name)
	q := rootCmd.PersistentFlags().ShorthandLookup("q")
	require.NotNil(t, q)
	assert.Equal(t, "quiet", q.Name)
}

func TestLogFormat_Invalid(t *testing.T) {
	_, _, err := execute(t, "--log-format", "xml", "version")
	ece := requireExitCode(t, err, ExitInvalidArgs)
	assert.Contains(t, ece.msg, "unknown log format")
}

func TestLogFormat_JSON(t *testing.T) {
	dir := leakyTree(t)
	_, stderr, err := execute(t, "--log-format", "json", "scan", "-C", dir, "--no-enrich", "--no-progress")
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		assert.True(t, strings.HasPrefix(line, "{"), "not a JSON log line: %s", line)
	}
	assert.Equal(t, 1, strings.Count(stderr, `"msg":"scan complete"`), "scan completion logged once")
}

func TestVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", Version)
}

func TestVersionSubcommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "drydock dev\n", stdout)
}

func TestMCPCmd_HasServe(t *testing.T) {
	var names []string
	for _, c := range mcpCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"serve"}, names)
}

func TestExitError_DefaultMessages(t *testing.T) {
	assert.Equal(t, "drydock: cross-project leakage found", exitError(ExitLeaksFound, "").Error())
	assert.Equal(t, "drydock: no report produced", exitError(ExitTotalFailure, "").Error())
	assert.Equal(t, "drydock: error", exitError(ExitInvalidArgs, "").Error())
	assert.Equal(t, 3, exitError(ExitTotalFailure, "x").ExitCode())
}
