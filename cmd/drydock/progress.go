package main

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// progress draws a file progress bar while a scan runs.
type progress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// newProgress returns nil unless enabled and w is a terminal, so piped
// output and CI logs stay clean.
func newProgress(w io.Writer, enabled bool) *progress {
	if !enabled || !isTerminal(w) {
		return nil
	}
	return &progress{w: w}
}

// Update is a scan.Options.Progress callback. Calls are serialized by the
// scanner.
func (p *progress) Update(done, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

// Finish clears the bar. Safe on a nil progress.
func (p *progress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// callback returns the scan callback, or nil when progress is disabled.
func (p *progress) callback() func(done, total int) {
	if p == nil {
		return nil
	}
	return p.Update
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int
}
