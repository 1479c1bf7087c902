package extraction

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

type Keyword struct {
	Term  string
	Count int
}

type KeywordRanker struct {
	stopwords map[string]struct{}
}

func NewKeywordRanker(cfg Config) *KeywordRanker {
	stop := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &KeywordRanker{stopwords: stop}
}

// terms returns the case-folded alphabetic words of at least three letters
// that are not stopwords. Words mixing letters with digits or underscores
// are dropped whole.
func (r *KeywordRanker) terms(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) < 3 || !isAlpha(w) {
			continue
		}
		if _, stop := r.stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (r *KeywordRanker) frequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, t := range r.terms(text) {
		freq[t]++
	}
	return freq
}

// Rank orders terms by descending count, then ascending term.
func (r *KeywordRanker) Rank(src SourceText) []Keyword {
	freq := r.frequencies(src.Raw)
	ranked := make([]Keyword, 0, len(freq))
	for term, count := range freq {
		ranked = append(ranked, Keyword{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	return ranked
}

func (r *KeywordRanker) Top(src SourceText, k int) []string {
	ranked := r.Rank(src)
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	out := make([]string, len(ranked))
	for i, kw := range ranked {
		out[i] = kw.Term
	}
	return out
}

func isAlpha(w string) bool {
	for _, c := range w {
		if !unicode.IsLetter(c) && !unicode.Is(unicode.M, c) {
			return false
		}
	}
	return true
}
