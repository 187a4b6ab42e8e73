// Package log configures structured logging for drydock using log/slog.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Log formats accepted by SetupWriter.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Level maps the verbosity flags to a slog level:
//
//   - quiet mode:   only WARN and ERROR messages
//   - normal mode:  INFO and above
//   - verbose mode: DEBUG and above
//
// Quiet wins when both are set.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Setup configures the default slog logger based on verbosity flags.
// Output is written to stderr using slog.TextHandler.
func Setup(verbose, quiet bool) {
	_ = SetupWriter(os.Stderr, FormatText, verbose, quiet)
}

// SetupWriter configures the default slog logger to write to w in the
// given format. An empty format selects text.
func SetupWriter(w io.Writer, format string, verbose, quiet bool) error {
	opts := &slog.HandlerOptions{Level: Level(verbose, quiet)}

	var handler slog.Handler
	switch format {
	case "", FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q (available: %s, %s)", format, FormatText, FormatJSON)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
