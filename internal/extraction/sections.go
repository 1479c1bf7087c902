package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type SectionName string

const (
	SectionDeliverables SectionName = "deliverables"
	SectionMandatory    SectionName = "mandatory_requirements"
	SectionRated        SectionName = "rated_criteria"
	SectionSubmission   SectionName = "submission_instructions"
)

// SectionSpec names a section and the heading labels (regex fragments) that
// open it.
type SectionSpec struct {
	Name   SectionName
	Labels []string
}

var DefaultSections = []SectionSpec{
	{Name: SectionDeliverables, Labels: []string{`deliverables?`, `scope of work`, `tasks?`}},
	{Name: SectionMandatory, Labels: []string{`mandatory requirements?`, `minimum requirements?`, `must`}},
	{Name: SectionRated, Labels: []string{`rated criteria`, `evaluation criteria`, `point-rated`}},
	{Name: SectionSubmission, Labels: []string{`submission instructions?`, `how to submit`, `proposal submission`, `closing location`}},
}

var listItemPattern = regexp.MustCompile(`^\s*(?:[-*•]\s+|\d+\.\s+)(.+)$`)

type Sections struct {
	Deliverables []string
	Mandatory    []string
	Rated        []string
	Submission   []string
}

type SectionCollector struct {
	limit    int
	headings map[SectionName]*regexp.Regexp
}

func NewSectionCollector(cfg Config, specs []SectionSpec) *SectionCollector {
	headings := make(map[SectionName]*regexp.Regexp, len(specs))
	for _, spec := range specs {
		headings[spec.Name] = regexp.MustCompile(`(?i)^(?:` + strings.Join(spec.Labels, "|") + `)\b`)
	}
	return &SectionCollector{limit: cfg.SectionItemLimit, headings: headings}
}

func (c *SectionCollector) CollectAll(src SourceText) Sections {
	return Sections{
		Deliverables: c.Collect(src, SectionDeliverables),
		Mandatory:    c.Collect(src, SectionMandatory),
		Rated:        c.Collect(src, SectionRated),
		Submission:   c.Collect(src, SectionSubmission),
	}
}

// Collect finds the first line opening the named section and returns the
// list items below it, stopping at the next heading-looking line. Prose
// under the heading is ignored.
func (c *SectionCollector) Collect(src SourceText, name SectionName) []string {
	heading, ok := c.headings[name]
	if !ok {
		return []string{}
	}

	lines := strings.Split(src.Raw, "\n")
	start := -1
	for i, line := range lines {
		if heading.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return []string{}
	}

	items := []string{}
	for _, line := range lines[start+1:] {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			if startsHeading(line) {
				break
			}
			continue
		}
		item := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(item) <= 3 {
			continue
		}
		items = append(items, item)
		if len(items) == c.limit {
			break
		}
	}
	return items
}

// startsHeading reports whether a non-list line begins flush left.
func startsHeading(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return line != "" && !unicode.IsSpace(r)
}
