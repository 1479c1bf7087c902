// Package extraction turns plain-text procurement documents into a
// SolicitationRecord and a heuristic SummaryVerdict.
//
// Every function in this package is a pure function of its input text. An
// Extractor holds only compiled patterns and configuration, so a single
// instance can be shared across goroutines without locking.
package extraction

type Options struct {
	// Highlights selects the strategy for SummaryVerdict.Highlights. Empty
	// leaves the list empty.
	Highlights Strategy
}

type Extractor struct {
	cfg        Config
	fields     *FieldExtractor
	sections   *SectionCollector
	keywords   *KeywordRanker
	summarizer *Summarizer
}

func NewExtractor(cfg Config) *Extractor {
	cfg = cfg.withDefaults()
	e := &Extractor{cfg: cfg}
	e.fields = NewFieldExtractor(cfg)
	e.sections = NewSectionCollector(cfg, DefaultSections)
	e.keywords = NewKeywordRanker(cfg)
	e.summarizer = NewSummarizer(&e.cfg, e.keywords)
	return e
}

func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract runs every component over text. It accepts any string, including
// the empty one, and never fails.
func (e *Extractor) Extract(text string, opts Options) Result {
	src := Normalize(text)

	record := Assemble(
		e.fields.Extract(src),
		e.keywords.Top(src, e.cfg.KeywordLimit),
		e.sections.CollectAll(src),
	)

	verdict := e.summarizer.Summarize(src)
	if opts.Highlights != "" {
		verdict.Highlights = e.summarizer.Sentences(src, opts.Highlights, e.cfg.HighlightSentences)
	}

	return Result{Record: record, Summary: verdict}
}
