package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/davetashner/drydock/internal/clone"
)

func init() {
	RegisterFormatter(NewJUnitFormatter())
}

// JUnitFormatter writes a JUnit XML document for CI systems. Every finding
// is a test case; cross-project leaks are failures, internal duplicates
// pass with their locations in system-out.
type JUnitFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*JUnitFormatter)(nil)

// NewJUnitFormatter returns a new JUnitFormatter.
func NewJUnitFormatter() *JUnitFormatter {
	return &JUnitFormatter{}
}

// Name returns the format name.
func (f *JUnitFormatter) Name() string { return "junit" }

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// Format writes r as JUnit XML.
func (f *JUnitFormatter) Format(r *clone.Report, w io.Writer) error {
	r = orEmpty(r)

	leaks := junitSuite{Name: KindLeak}
	for _, l := range r.CrossProjectLeakage {
		var body strings.Builder
		for _, o := range l.Occurrences {
			fmt.Fprintf(&body, "%s: %s\n", o.Project, o.File)
		}
		leaks.Cases = append(leaks.Cases, junitCase{
			Name:      l.Hash,
			ClassName: strings.Join(l.Projects, ","),
			Failure: &junitFailure{
				Message: fmt.Sprintf("%d lines shared by %d projects (score %.2f)", l.Lines, l.Spread, l.Score),
				Type:    KindLeak,
				Body:    body.String(),
			},
		})
	}
	leaks.Tests = len(leaks.Cases)
	leaks.Failures = len(leaks.Cases)

	dups := junitSuite{Name: KindDuplicate}
	for _, d := range r.InternalDuplicates {
		dups.Cases = append(dups.Cases, junitCase{
			Name:      d.Hash,
			ClassName: d.Project,
			SystemOut: strings.Join(d.Occurrences, "\n"),
		})
	}
	dups.Tests = len(dups.Cases)

	doc := junitSuites{
		Name:     "drydock",
		Tests:    leaks.Tests + dups.Tests,
		Failures: leaks.Failures,
		Suites:   []junitSuite{leaks, dups},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write junit: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal junit: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write junit: %w", err)
	}
	return nil
}
