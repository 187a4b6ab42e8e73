package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/davetashner/drydock/internal/testable"
)

// browserExec launches the system URL opener. Override in tests.
var browserExec testable.CommandExecutor = testable.DefaultExecutor()

// openBrowser asks the operating system to open url. It does not wait for
// the browser.
func openBrowser(ctx context.Context, url string) error {
	name, args := "xdg-open", []string{url}
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", url}
	}
	if _, err := browserExec.LookPath(name); err != nil {
		return fmt.Errorf("no URL opener %q on PATH", name)
	}
	cmd := browserExec.CommandContext(context.WithoutCancel(ctx), name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait() //nolint:errcheck // reap only
	return nil
}
