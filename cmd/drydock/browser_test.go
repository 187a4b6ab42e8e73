package main

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/testable"
)

func mockBrowser(t *testing.T, m *testable.MockCommandExecutor) {
	t.Helper()
	orig := browserExec
	browserExec = m
	t.Cleanup(func() { browserExec = orig })
}

func TestOpenBrowser(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mock commands need sh")
	}
	m := &testable.MockCommandExecutor{}
	mockBrowser(t, m)

	require.NoError(t, openBrowser(context.Background(), "http://localhost:3000"))

	want := "xdg-open http://localhost:3000"
	if runtime.GOOS == "darwin" {
		want = "open http://localhost:3000"
	}
	assert.Equal(t, []string{want}, m.Calls)
}

func TestOpenBrowser_NoOpener(t *testing.T) {
	m := &testable.MockCommandExecutor{LookPathErr: errors.New("not found")}
	mockBrowser(t, m)

	err := openBrowser(context.Background(), "http://localhost:3000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no URL opener")
	assert.Empty(t, m.Calls)
}

func TestOpenBrowser_SurvivesCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mock commands need sh")
	}
	m := &testable.MockCommandExecutor{}
	mockBrowser(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, openBrowser(ctx, "http://localhost:3000"))
}
