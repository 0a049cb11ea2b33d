// Package report renders power curves for human consumption: a markdown
// table for terminals and commit-able docs, and an HTML rendering of the
// same markdown for the API.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"powersim/domain/power"
)

// Markdown renders one run as a markdown document
func Markdown(run power.Run) string {
	var b strings.Builder

	title := run.Name
	if title == "" {
		title = "Power sweep"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Run: `%s`\n", run.ID)
	fmt.Fprintf(&b, "- Design: %s\n", run.Design)
	fmt.Fprintf(&b, "- Test: %s\n", run.Test)
	fmt.Fprintf(&b, "- Alpha: %g, Replications: %d, Seed: %d\n\n", run.Curve.Alpha, run.Replications, run.Seed)

	b.WriteString("| Size | Power | Valid reps | Excluded |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, p := range run.Curve.Points {
		powerCell := "n/a"
		if p.Defined() {
			powerCell = fmt.Sprintf("%.3f", p.Power)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", p.Size.Key(), powerCell, p.Replications, p.Excluded)
	}

	if size, err := run.Curve.MinimumSize(0.8); err == nil {
		fmt.Fprintf(&b, "\nSmallest size reaching 80%% power: **%s**\n", size.Key())
	} else {
		b.WriteString("\nNo swept size reaches 80% power.\n")
	}
	return b.String()
}

// HTML renders the markdown report as a standalone HTML fragment
func HTML(run power.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(run)), p, renderer)
}
