package extraction

// Config holds the tunables shared by every component of the extractor.
// It is built once at startup and must not be mutated after NewExtractor.
type Config struct {
	KeywordLimit       int
	SectionItemLimit   int
	TitleScanLines     int
	BuyerScanLines     int
	ExecutiveSentences int
	ExecutiveMaxChars  int
	HighlightSentences int
	Stopwords          []string
}

func DefaultConfig() Config {
	return Config{
		KeywordLimit:       12,
		SectionItemLimit:   12,
		TitleScanLines:     30,
		BuyerScanLines:     120,
		ExecutiveSentences: 6,
		ExecutiveMaxChars:  800,
		HighlightSentences: 6,
		Stopwords:          defaultStopwords,
	}
}

// withDefaults fills zero values so a partially populated Config from the
// application layer still behaves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.KeywordLimit <= 0 {
		c.KeywordLimit = d.KeywordLimit
	}
	if c.SectionItemLimit <= 0 {
		c.SectionItemLimit = d.SectionItemLimit
	}
	if c.TitleScanLines <= 0 {
		c.TitleScanLines = d.TitleScanLines
	}
	if c.BuyerScanLines <= 0 {
		c.BuyerScanLines = d.BuyerScanLines
	}
	if c.ExecutiveSentences <= 0 {
		c.ExecutiveSentences = d.ExecutiveSentences
	}
	if c.ExecutiveMaxChars <= 0 {
		c.ExecutiveMaxChars = d.ExecutiveMaxChars
	}
	if c.HighlightSentences <= 0 {
		c.HighlightSentences = d.HighlightSentences
	}
	if len(c.Stopwords) == 0 {
		c.Stopwords = d.Stopwords
	}
	return c
}

var defaultStopwords = []string{
	"the", "and", "for", "with", "this", "that", "from", "are", "was", "were",
	"will", "would", "shall", "into", "upon", "about", "your", "have", "not",
	"you", "our", "any", "all", "per", "his", "her", "its", "may", "can", "as",
	"is", "on", "to", "of", "in", "by", "or", "an", "be", "it", "a",
}
