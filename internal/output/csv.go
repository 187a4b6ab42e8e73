package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/davetashner/drydock/internal/clone"
)

func init() {
	RegisterFormatter(NewCSVFormatter())
}

// Finding kinds as they appear in flat outputs.
const (
	KindLeak      = "cross-project-leakage"
	KindDuplicate = "internal-duplicate"
)

var csvHeader = []string{
	"kind", "hash", "project", "file", "author", "date",
	"lines", "frequency", "spread", "score",
}

// CSVFormatter writes one row per occurrence: leaks first, then internal
// duplicates, each in report order.
type CSVFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*CSVFormatter)(nil)

// NewCSVFormatter returns a new CSVFormatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string { return "csv" }

// Format writes r as CSV with a header row.
func (f *CSVFormatter) Format(r *clone.Report, w io.Writer) error {
	r = orEmpty(r)
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	for _, l := range r.CrossProjectLeakage {
		for _, o := range l.Occurrences {
			row := []string{
				KindLeak, l.Hash, o.Project, o.File, o.Author, o.Date,
				strconv.Itoa(l.Lines), strconv.Itoa(l.Frequency),
				strconv.Itoa(l.Spread), formatScore(l.Score),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}
	for _, d := range r.InternalDuplicates {
		for _, file := range d.Occurrences {
			row := []string{
				KindDuplicate, d.Hash, d.Project, file, "", "",
				strconv.Itoa(d.Lines), strconv.Itoa(d.Frequency),
				"1", formatScore(d.Score),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', 2, 64)
}
