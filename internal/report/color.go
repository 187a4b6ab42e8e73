package report

import (
	"fmt"

	"github.com/fatih/color"
)

// Shared color printers for the terminal summary.
var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorCyan   = color.New(color.FgCyan)
	colorBold   = color.New(color.Bold)
)

// SectionTitle renders a bold section title.
func SectionTitle(title string) string {
	return colorBold.Sprint(title)
}

// ColorDirection colors trend direction labels.
func ColorDirection(val string) string {
	switch val {
	case "improving":
		return colorGreen.Sprint(val)
	case "degrading":
		return colorRed.Sprint(val)
	default:
		return val
	}
}

// ColorSpread colors a project spread: two projects is a warning, more is red.
func ColorSpread(val string) string {
	switch val {
	case "", "0", "1":
		return val
	case "2":
		return colorYellow.Sprint(val)
	default:
		return colorRed.Sprint(val)
	}
}

// ColorProject highlights a project identifier.
func ColorProject(val string) string {
	return colorCyan.Sprint(val)
}

// colorCount colors a count of findings: 0 is green, >0 is yellow.
func colorCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n == 0 {
		return colorGreen.Sprint(s)
	}
	return colorYellow.Sprint(s)
}

// colorDelta colors a score change: a drop is green, a rise is red.
func colorDelta(d float64) string {
	s := fmt.Sprintf("%+.1f", d)
	switch {
	case d < 0:
		return colorGreen.Sprint(s)
	case d > 0:
		return colorRed.Sprint(s)
	default:
		return s
	}
}
