// Package brief renders a stored envelope as a one-page markdown brief.
package brief

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rfp-brief/backend/internal/storage/models"
)

const (
	noTitle   = "(No title)"
	itemLimit = 12
)

func Render(env *models.Envelope) string {
	var b strings.Builder

	title := strings.TrimSpace(env.Facts.Title)
	if title == "" {
		title = noTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	facts := env.Facts
	rows := [][]string{
		{"Field", "Value"},
		{"Solicitation ID", facts.SolicitationID},
		{"Buyer", facts.Buyer},
		{"Closing date", facts.ClosingDate},
		{"Contact email", facts.Contact.Email},
		{"Contact phone", facts.Contact.Phone},
		{"Currency", facts.Budget.Currency},
		{"Keywords", strings.Join(facts.Keywords, ", ")},
		{"Fit score", fmt.Sprintf("%d/100", env.Summary.FitScore.Score)},
	}
	if env.Meta.Pages != nil {
		rows = append(rows, []string{"Pages", fmt.Sprintf("%d", *env.Meta.Pages)})
	}
	for _, line := range table(rows) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n## Summary\n\n%s\n", env.Summary.Executive)
	fmt.Fprintf(&b, "\n## Why it matters\n\n%s\n", env.Summary.WhyItMatters)

	bullets(&b, "Highlights", env.Summary.Highlights)
	bullets(&b, "Deliverables", env.Requirements.Deliverables)
	bullets(&b, "Mandatory requirements", env.Requirements.MandatoryRequirements)
	bullets(&b, "Rated criteria", env.Requirements.RatedCriteria)
	bullets(&b, "Submission instructions", env.Requirements.SubmissionInstructions)

	return b.String()
}

func bullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", label)
	for i, item := range items {
		if i == itemLimit {
			break
		}
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// table lays out rows as a pipe table padded to display width; the first
// row is the header.
func table(rows [][]string) []string {
	widths := make([]int, 2)
	for _, row := range rows {
		for i := range row {
			row[i] = escapeCell(row[i])
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for r, row := range rows {
		lines = append(lines, tableRow(row, widths))
		if r == 0 {
			sep := make([]string, len(widths))
			for i, w := range widths {
				sep[i] = strings.Repeat("-", w)
			}
			lines = append(lines, tableRow(sep, widths))
		}
	}
	return lines
}

func tableRow(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
