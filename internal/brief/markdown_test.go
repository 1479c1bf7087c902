package brief

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/internal/storage/models"
)

func envelope(text string) *models.Envelope {
	res := extraction.NewExtractor(extraction.DefaultConfig()).Extract(text, extraction.Options{})
	return models.NewEnvelope(models.Meta{ID: "abc"}, res)
}

func TestRender_Notice(t *testing.T) {
	env := envelope("Request for Proposal\n" +
		"Buyer: City of Example\n" +
		"Closing Date: 2025-06-01\n" +
		"Mandatory Requirements\n" +
		"- Must have insurance\n" +
		"- Must have 5 years experience\n" +
		"Contact: jane@example.com")

	md := Render(env)

	assert.Equal(t, true, strings.HasPrefix(md, "# Request for Proposal\n\n"))
	assert.Equal(t, true, strings.Contains(md, "| Buyer           | City of Example"))
	assert.Equal(t, true, strings.Contains(md, "| Closing date    | 2025-06-01"))
	assert.Equal(t, true, strings.Contains(md, "## Mandatory requirements\n\n- Must have insurance\n- Must have 5 years experience\n"))
	assert.Equal(t, false, strings.Contains(md, "## Deliverables"))
	assert.Equal(t, false, strings.Contains(md, "| Pages"))
}

func TestRender_EmptyTitle(t *testing.T) {
	md := Render(envelope(""))

	assert.Equal(t, true, strings.HasPrefix(md, "# (No title)\n"))
	assert.Equal(t, true, strings.Contains(md, extraction.NoSummaryPlaceholder))
	assert.Equal(t, true, strings.Contains(md, "| Fit score       | 50/100"))
}

func TestRender_CapsBullets(t *testing.T) {
	env := envelope("")
	for i := 1; i <= 15; i++ {
		env.Summary.Highlights = append(env.Summary.Highlights, fmt.Sprintf("Sentence %d.", i))
	}

	md := Render(env)

	assert.Equal(t, true, strings.Contains(md, "- Sentence 12."))
	assert.Equal(t, false, strings.Contains(md, "- Sentence 13."))
}

func TestTable_AlignsWideRunes(t *testing.T) {
	lines := table([][]string{
		{"Field", "Value"},
		{"Buyer", "東京都"},
		{"ID", "a|b"},
	})

	assert.Equal(t, []string{
		"| Field | Value  |",
		"| ----- | ------ |",
		"| Buyer | 東京都 |",
		"| ID    | a\\|b   |",
	}, lines)
}

func TestRender_Pages(t *testing.T) {
	env := envelope("Tender")
	n := 7
	env.Meta.Pages = &n

	assert.Equal(t, true, strings.Contains(Render(env), "| Pages           | 7"))
}
