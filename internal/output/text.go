package output

import (
	"io"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/report"
)

func init() {
	RegisterFormatter(NewTextFormatter())
}

// TextFormatter writes the terminal summary.
type TextFormatter struct {
	// Limit caps the rows per table. Zero uses report.DefaultLimit.
	Limit int
}

// Compile-time interface check.
var _ Formatter = (*TextFormatter)(nil)

// NewTextFormatter returns a new TextFormatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Name returns the format name.
func (f *TextFormatter) Name() string { return "text" }

// Format writes the summary of r to w.
func (f *TextFormatter) Format(r *clone.Report, w io.Writer) error {
	return report.Summary(w, r, f.Limit)
}
