package extraction

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	NoSummaryPlaceholder = "No summary extracted from the document."
	WhyItMattersFallback = "Standard public solicitation; evaluate scope, dates, and mandatory items."
	FitScoreRationale    = "Heuristic score based on content signals; adjust with client context."

	baseFitScore = 50
	ellipsis     = "…"
)

// Strategy selects how sentences are picked for a summary list.
type Strategy string

const (
	// StrategyLead takes the first sentences in document order.
	StrategyLead Strategy = "lead"
	// StrategyFrequency scores sentences by summed term frequency, keeps the
	// best ones and returns them in document order.
	StrategyFrequency Strategy = "frequency"
)

func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyLead:
		return StrategyLead, true
	case StrategyFrequency:
		return StrategyFrequency, true
	}
	return "", false
}

type signal struct {
	pattern  *regexp.Regexp
	sentence string
}

// Checklist order is output order.
var whyItMattersSignals = []signal{
	{regexp.MustCompile(`(?i)standing offer|supply arrangement|multi-?year`), "Potential for multi-year revenue via standing offer/supply arrangement."},
	{regexp.MustCompile(`(?i)options? to extend|extension`), "Includes options to extend the term."},
	{regexp.MustCompile(`(?i)mandatory|must`), "Contains strict mandatory requirements; screen carefully."},
	{regexp.MustCompile(`(?i)indigenous|aboriginal|set-?aside`), "May include Indigenous procurement considerations."},
	{regexp.MustCompile(`(?i)bond|security|insurance`), "Financial security/insurance requirements likely apply."},
}

type scoreRule struct {
	pattern *regexp.Regexp
	delta   int
}

var fitScoreRules = []scoreRule{
	{regexp.MustCompile(`(?i)services?`), 10},
	{regexp.MustCompile(`(?i)maintenance|support|rentals?`), 10},
	{regexp.MustCompile(`(?i)training|implementation`), 5},
	{regexp.MustCompile(`(?i)mandatory`), -5},
	{regexp.MustCompile(`(?i)experience\s+in`), -5},
	{regexp.MustCompile(`(?i)security\s+clearance|reliability|criminal`), -10},
}

// A boundary is terminal punctuation followed by whitespace and a capital or
// an opening parenthesis, or a blank line.
var sentenceBoundary = regexp.MustCompile(`[.?!]\s+[A-Z(]|\n{2,}`)

type Summarizer struct {
	cfg    *Config
	ranker *KeywordRanker
}

func NewSummarizer(cfg *Config, ranker *KeywordRanker) *Summarizer {
	return &Summarizer{cfg: cfg, ranker: ranker}
}

func (s *Summarizer) Summarize(src SourceText) SummaryVerdict {
	return SummaryVerdict{
		Executive:    s.Executive(src),
		WhyItMatters: WhyItMatters(src.Raw),
		FitScore:     ScoreFit(src.Raw),
		Highlights:   []string{},
	}
}

func (s *Summarizer) Executive(src SourceText) string {
	lead := s.Sentences(src, StrategyLead, s.cfg.ExecutiveSentences)
	if len(lead) == 0 {
		return NoSummaryPlaceholder
	}
	return shorten(strings.Join(lead, " "), s.cfg.ExecutiveMaxChars)
}

// Sentences returns up to n sentences chosen by strategy, always in document
// order. Unknown strategies yield no sentences.
func (s *Summarizer) Sentences(src SourceText, strategy Strategy, n int) []string {
	sentences := SplitSentences(src.Raw)
	switch strategy {
	case StrategyLead:
		if n < len(sentences) {
			sentences = sentences[:n]
		}
		return sentences
	case StrategyFrequency:
		return s.topSentences(src.Raw, sentences, n)
	}
	return []string{}
}

func (s *Summarizer) topSentences(text string, sentences []string, n int) []string {
	freq := s.ranker.frequencies(text)

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		total := 0
		for _, t := range s.ranker.terms(sentence) {
			total += freq[t]
		}
		ranked[i] = scored{index: i, score: total}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].index < ranked[j].index
	})

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = sentences[r.index]
	}
	return out
}

// SplitSentences splits trimmed text at sentence boundaries and drops empty
// pieces.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	var out []string
	push := func(piece string) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}

	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		if text[loc[0]] == '\n' {
			push(text[start:loc[0]])
			start = loc[1]
			continue
		}
		// keep the punctuation, leave the capital for the next sentence
		push(text[start : loc[0]+1])
		start = loc[1] - 1
	}
	push(text[start:])

	if out == nil {
		return []string{}
	}
	return out
}

func WhyItMatters(text string) string {
	var parts []string
	for _, sig := range whyItMattersSignals {
		if sig.pattern.MatchString(text) {
			parts = append(parts, sig.sentence)
		}
	}
	if len(parts) == 0 {
		return WhyItMattersFallback
	}
	return strings.Join(parts, " ")
}

func ScoreFit(text string) FitScore {
	score := baseFitScore
	for _, rule := range fitScoreRules {
		if rule.pattern.MatchString(text) {
			score += rule.delta
		}
	}
	return FitScore{Score: clamp(score, 0, 100), Rationale: FitScoreRationale}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// shorten collapses whitespace and, when the result exceeds limit runes,
// keeps whole words and appends an ellipsis within the limit.
func shorten(text string, limit int) string {
	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	if utf8.RuneCountInString(joined) <= limit {
		return joined
	}

	budget := limit - utf8.RuneCountInString(ellipsis)
	var b strings.Builder
	used := 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if used > 0 {
			n++
		}
		if used+n > budget {
			break
		}
		if used > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		used += n
	}
	if used == 0 {
		// a single word longer than the budget is cut mid-word
		return string([]rune(joined)[:budget]) + ellipsis
	}
	return b.String() + ellipsis
}
