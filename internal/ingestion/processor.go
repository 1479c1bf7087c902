package ingestion

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/internal/metrics"
	"github.com/rfp-brief/backend/internal/storage"
	"github.com/rfp-brief/backend/internal/storage/models"
	"github.com/rfp-brief/backend/pkg/logger"
	"github.com/rfp-brief/backend/pkg/utils"
)

var (
	ErrEmptyDocument          = errors.New("empty upload")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrDocumentTooLarge       = errors.New("document too large")
	ErrBatchTooLarge          = errors.New("too many documents in batch")
)

const (
	SourceTypeText = "text"
	SourceTypeHTML = "html"

	language = "en"
)

// Cache stores extraction results by content hash and highlight strategy.
type Cache interface {
	GetSummary(ctx context.Context, contentHash string, strategy extraction.Strategy) (extraction.Result, bool, error)
	SetSummary(ctx context.Context, contentHash string, strategy extraction.Strategy, res extraction.Result, ttl time.Duration) error
}

// Document is one upload before decoding. ContentType is a media type,
// parameters allowed.
type Document struct {
	Body        []byte
	ContentType string
	Source      string
	Pages       *int
}

type Options struct {
	CacheTTL         time.Duration
	MaxDocumentBytes int
	MaxBatch         int
	BatchConcurrency int
}

type Processor struct {
	extractor *extraction.Extractor
	store     storage.Store
	cache     Cache
	opts      Options
	now       func() time.Time
}

// NewProcessor wires the extraction core to persistence. cache may be nil.
func NewProcessor(extractor *extraction.Extractor, store storage.Store, cache Cache, opts Options) *Processor {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = 20 << 20
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 20
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 4
	}

	return &Processor{
		extractor: extractor,
		store:     store,
		cache:     cache,
		opts:      opts,
		now:       time.Now,
	}
}

func (p *Processor) MaxBatch() int {
	return p.opts.MaxBatch
}

// Decode turns an upload into plain text and reports its source type.
func (p *Processor) Decode(doc Document) (string, string, error) {
	if len(doc.Body) == 0 {
		return "", "", ErrEmptyDocument
	}
	if len(doc.Body) > p.opts.MaxDocumentBytes {
		return "", "", ErrDocumentTooLarge
	}

	mediaType := "text/plain"
	if doc.ContentType != "" {
		mt, _, err := mime.ParseMediaType(doc.ContentType)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, doc.ContentType)
		}
		mediaType = mt
	}

	raw := strings.ToValidUTF8(string(doc.Body), "�")

	switch mediaType {
	case "text/plain", "text/markdown":
		return raw, SourceTypeText, nil
	case "text/html", "application/xhtml+xml":
		text, err := HTMLToText(raw)
		if err != nil {
			return "", "", err
		}
		return text, SourceTypeHTML, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}
}

// Process decodes, extracts, persists and returns the envelope for one document.
func (p *Processor) Process(ctx context.Context, doc Document, strategy extraction.Strategy) (*models.Envelope, error) {
	text, sourceType, err := p.Decode(doc)
	if err != nil {
		rejected(err)
		return nil, err
	}

	contentHash := utils.HashString(text)
	res := p.extract(ctx, text, contentHash, strategy)

	meta := models.Meta{
		ID:          uuid.NewString(),
		Source:      doc.Source,
		SourceType:  sourceType,
		ProcessedAt: p.now().UTC(),
		Language:    language,
		Pages:       doc.Pages,
		WordCount:   extraction.Normalize(text).WordCount(),
		ContentHash: contentHash,
	}
	env := models.NewEnvelope(meta, res)

	if err := p.store.InsertSolicitation(ctx, models.SolicitationFromEnvelope(env)); err != nil {
		return nil, fmt.Errorf("failed to store solicitation: %w", err)
	}

	observe(sourceType, res)

	logger.Info("Document summarized",
		zap.String("id", meta.ID),
		zap.String("source", meta.Source),
		zap.String("title", res.Record.Facts.Title),
		zap.Int("fit_score", res.Summary.FitScore.Score),
		zap.Int("word_count", meta.WordCount),
	)

	return env, nil
}

// ProcessBatch processes docs with bounded concurrency. Results keep the
// order of docs; the first failure cancels the rest.
func (p *Processor) ProcessBatch(ctx context.Context, docs []Document, strategy extraction.Strategy) ([]*models.Envelope, error) {
	if len(docs) > p.opts.MaxBatch {
		metrics.RequestsRejected.WithLabelValues("batch_too_large").Inc()
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(docs), p.opts.MaxBatch)
	}

	results := make([]*models.Envelope, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.BatchConcurrency)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			env, err := p.Process(gctx, doc, strategy)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = env
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Batch summarized", zap.Int("documents", len(docs)))
	return results, nil
}

func (p *Processor) extract(ctx context.Context, text, contentHash string, strategy extraction.Strategy) extraction.Result {
	if p.cache != nil {
		res, hit, err := p.cache.GetSummary(ctx, contentHash, strategy)
		if err != nil {
			logger.Warn("Summary cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.Inc()
			return res
		}
		metrics.CacheMisses.Inc()
	}

	start := time.Now()
	res := p.extractor.Extract(text, extraction.Options{Highlights: strategy})
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())

	if p.cache != nil {
		if err := p.cache.SetSummary(ctx, contentHash, strategy, res, p.opts.CacheTTL); err != nil {
			logger.Warn("Failed to cache summary", zap.Error(err))
		}
	}

	return res
}

func observe(sourceType string, res extraction.Result) {
	metrics.DocumentsProcessed.WithLabelValues(sourceType).Inc()
	metrics.FitScore.Observe(float64(res.Summary.FitScore.Score))

	req := res.Record.Requirements
	metrics.SectionItems.WithLabelValues(string(extraction.SectionDeliverables)).Observe(float64(len(req.Deliverables)))
	metrics.SectionItems.WithLabelValues(string(extraction.SectionMandatory)).Observe(float64(len(req.MandatoryRequirements)))
	metrics.SectionItems.WithLabelValues(string(extraction.SectionRated)).Observe(float64(len(req.RatedCriteria)))
	metrics.SectionItems.WithLabelValues(string(extraction.SectionSubmission)).Observe(float64(len(req.SubmissionInstructions)))

	facts := res.Record.Facts
	for field, value := range map[string]string{
		"title":           facts.Title,
		"buyer":           facts.Buyer,
		"solicitation_id": facts.SolicitationID,
		"closing_date":    facts.ClosingDate,
		"contact_email":   facts.Contact.Email,
		"contact_phone":   facts.Contact.Phone,
	} {
		if value == "" {
			metrics.EmptyFields.WithLabelValues(field).Inc()
		}
	}
}

func rejected(err error) {
	switch {
	case errors.Is(err, ErrEmptyDocument):
		metrics.RequestsRejected.WithLabelValues("empty").Inc()
	case errors.Is(err, ErrDocumentTooLarge):
		metrics.RequestsRejected.WithLabelValues("too_large").Inc()
	case errors.Is(err, ErrUnsupportedContentType):
		metrics.RequestsRejected.WithLabelValues("unsupported_type").Inc()
	default:
		metrics.RequestsRejected.WithLabelValues("undecodable").Inc()
	}
}
