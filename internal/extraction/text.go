package extraction

import "strings"

// SourceText is the normalized form of one document. Raw keeps the original
// line structure (CRLF folded to LF); Lines holds the trimmed non-empty lines.
type SourceText struct {
	Raw   string
	Lines []string
}

func Normalize(raw string) SourceText {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := make([]string, 0, strings.Count(raw, "\n")+1)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return SourceText{Raw: raw, Lines: lines}
}

func (s SourceText) Empty() bool {
	return len(s.Lines) == 0
}

// WordCount counts whitespace separated tokens.
func (s SourceText) WordCount() int {
	return len(strings.Fields(s.Raw))
}

func headLines(lines []string, n int) []string {
	if n < len(lines) {
		return lines[:n]
	}
	return lines
}
