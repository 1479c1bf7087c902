package extraction

import (
	"regexp"
	"strings"
)

type Field string

const (
	FieldTitle          Field = "title"
	FieldBuyer          Field = "buyer"
	FieldSolicitationID Field = "solicitation_id"
	FieldClosingDate    Field = "closing_date"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
)

type Scope int

const (
	// ScopeText runs the pattern once over the whole document.
	ScopeText Scope = iota
	// ScopeLines runs the pattern over each normalized line, up to a limit.
	ScopeLines
)

// FieldRule pairs a label pattern with a value pattern. The value is captured
// from the first match in scan order; Accept can reject a candidate so the
// scan continues.
type FieldRule struct {
	Field  Field
	Scope  Scope
	Lines  int
	Label  string
	Value  string
	Accept func(string) bool
}

const dateShapes = `\d{4}[-/]\d{1,2}[-/]\d{1,2}` +
	`|\d{1,2}\s+[A-Za-z]+\s+\d{4}` +
	`|[A-Za-z]+\s+\d{1,2},\s*\d{4}`

// FieldRules is the ordered rule table. Order here is evaluation order and
// each field takes the first rule match.
func FieldRules(cfg Config) []FieldRule {
	return []FieldRule{
		{
			Field: FieldTitle,
			Scope: ScopeLines,
			Lines: cfg.TitleScanLines,
			Label: `^`,
			Value: `(?i:request for|rfp|rfq|tender|standing offer).*`,
		},
		{
			Field: FieldBuyer,
			Scope: ScopeLines,
			Lines: cfg.BuyerScanLines,
			Label: `(?i:buyer|purchasing|procurement|organization|department)\s*[:\-]\s*`,
			Value: `.+`,
		},
		{
			Field: FieldSolicitationID,
			Scope: ScopeText,
			Label: `(?i:solicitation|tender|rfp|rfq|itt|reference)\s*(?i:no\.?|#|id)?\s*[:\-]?\s*`,
			Value: `[A-Z0-9\-_/]{4,}`,
		},
		{
			Field: FieldClosingDate,
			Scope: ScopeText,
			Label: `(?i:closing|due|submission)\s*(?i:date|deadline)[^\S\r\n]*[:\-]?\s*`,
			Value: dateShapes,
		},
		{
			Field: FieldEmail,
			Scope: ScopeText,
			Value: `(?i:[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,})`,
		},
		{
			Field:  FieldPhone,
			Scope:  ScopeText,
			Value:  `\+?\d[\d\-(). \t]{5,}\d`,
			Accept: phoneLike,
		},
	}
}

type compiledRule struct {
	FieldRule
	re *regexp.Regexp
}

func compileRules(rules []FieldRule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re := regexp.MustCompile(r.Label + `(?P<value>` + r.Value + `)`)
		compiled = append(compiled, compiledRule{FieldRule: r, re: re})
	}
	return compiled
}

func (r compiledRule) find(src SourceText) string {
	if r.Scope == ScopeLines {
		for _, line := range headLines(src.Lines, r.Lines) {
			if v, ok := r.match(line); ok {
				return v
			}
		}
		return ""
	}
	v, _ := r.match(src.Raw)
	return v
}

func (r compiledRule) match(s string) (string, bool) {
	idx := r.re.SubexpIndex("value")
	if r.Accept == nil {
		m := r.re.FindStringSubmatch(s)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[idx]), true
	}
	for _, m := range r.re.FindAllStringSubmatch(s, -1) {
		v := strings.TrimSpace(m[idx])
		if r.Accept(v) {
			return v, true
		}
	}
	return "", false
}

var isoDatePattern = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`)

// phoneLike accepts candidates carrying at least seven digits that are not
// bare ISO dates.
func phoneLike(s string) bool {
	digits := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 7 && !isoDatePattern.MatchString(s)
}

type Fields struct {
	Title          string
	Buyer          string
	SolicitationID string
	ClosingDate    string
	Contact        Contact
	Budget         Budget
}

type FieldExtractor struct {
	rules []compiledRule
}

func NewFieldExtractor(cfg Config) *FieldExtractor {
	return &FieldExtractor{rules: compileRules(FieldRules(cfg))}
}

// Extract evaluates every rule independently. A rule without a match leaves
// its field empty; the title falls back to the first non-empty line.
func (e *FieldExtractor) Extract(src SourceText) Fields {
	values := make(map[Field]string, len(e.rules))
	for _, r := range e.rules {
		if values[r.Field] != "" {
			continue
		}
		values[r.Field] = r.find(src)
	}

	title := values[FieldTitle]
	if title == "" && len(src.Lines) > 0 {
		title = src.Lines[0]
	}

	return Fields{
		Title:          title,
		Buyer:          values[FieldBuyer],
		SolicitationID: values[FieldSolicitationID],
		ClosingDate:    values[FieldClosingDate],
		Contact: Contact{
			Email: values[FieldEmail],
			Phone: values[FieldPhone],
		},
		Budget: Budget{Currency: detectCurrency(src.Raw)},
	}
}

func detectCurrency(text string) string {
	switch {
	case strings.Contains(text, "CAD"), strings.Contains(text, "C$"), strings.Contains(text, "Canadian"):
		return CurrencyCAD
	case strings.Contains(text, "USD"):
		return CurrencyUSD
	default:
		return CurrencyCAD
	}
}
