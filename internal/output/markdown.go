package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/davetashner/drydock/internal/clone"
)

func init() {
	RegisterFormatter(NewMarkdownFormatter())
}

// MarkdownFormatter writes the report as a Markdown document suitable for a
// pull request comment.
type MarkdownFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*MarkdownFormatter)(nil)

// NewMarkdownFormatter returns a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Name returns the format name.
func (m *MarkdownFormatter) Name() string {
	return "markdown"
}

// Format writes r as Markdown.
//
// The output includes:
//   - A title heading and a summary line with counts and total scores
//   - A cross-project leakage table followed by per-leak file listings
//   - An internal duplicates table
func (m *MarkdownFormatter) Format(r *clone.Report, w io.Writer) error {
	r = orEmpty(r)

	if err := writeHeader(w, r); err != nil {
		return err
	}
	if len(r.CrossProjectLeakage) == 0 && len(r.InternalDuplicates) == 0 {
		if _, err := fmt.Fprintf(w, "No duplicated code found.\n"); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		return nil
	}
	if err := writeLeakSection(w, r.CrossProjectLeakage); err != nil {
		return err
	}
	return writeDuplicateSection(w, r.InternalDuplicates)
}

// writeHeader writes the Markdown title and summary line.
func writeHeader(w io.Writer, r *clone.Report) error {
	if _, err := fmt.Fprintf(w, "# Drydock Scan Results\n\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	_, err := fmt.Fprintf(w, "**Cross-project leaks:** %d (score %.2f) | **Internal duplicates:** %d (score %.2f)\n\n",
		len(r.CrossProjectLeakage), r.TotalLeakageScore(),
		len(r.InternalDuplicates), r.TotalDuplicateScore())
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func writeLeakSection(w io.Writer, leaks []clone.CrossProjectLeakage) error {
	if len(leaks) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Cross-project leakage (%d)\n\n", len(leaks))
	b.WriteString("| Score | Lines | Frequency | Spread | Projects | Hash |\n")
	b.WriteString("|------:|------:|----------:|-------:|----------|------|\n")
	for _, l := range leaks {
		fmt.Fprintf(&b, "| %.2f | %d | %d | %d | %s | `%s` |\n",
			l.Score, l.Lines, l.Frequency, l.Spread, escapeCell(strings.Join(l.Projects, ", ")), shortHash(l.Hash))
	}
	b.WriteString("\n")

	for _, l := range leaks {
		fmt.Fprintf(&b, "### `%s`\n\n", shortHash(l.Hash))
		for _, o := range l.Occurrences {
			fmt.Fprintf(&b, "- **%s** `%s`", o.Project, o.File)
			if o.Author != "" || o.Date != "" {
				fmt.Fprintf(&b, " (%s)", strings.TrimSpace(o.Author+" "+o.Date))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write leakage section: %w", err)
	}
	return nil
}

func writeDuplicateSection(w io.Writer, dups []clone.InternalDuplicate) error {
	if len(dups) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Internal duplicates (%d)\n\n", len(dups))
	b.WriteString("| Score | Lines | Frequency | Project | Files | Hash |\n")
	b.WriteString("|------:|------:|----------:|---------|-------|------|\n")
	for _, d := range dups {
		fmt.Fprintf(&b, "| %.2f | %d | %d | %s | %s | `%s` |\n",
			d.Score, d.Lines, d.Frequency, escapeCell(d.Project), escapeCell(strings.Join(d.Occurrences, "<br>")), shortHash(d.Hash))
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write duplicates section: %w", err)
	}
	return nil
}

// escapeCell keeps pipes in values from splitting a table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
