package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/internal/ingestion"
	"github.com/rfp-brief/backend/internal/storage/models"
	"github.com/rfp-brief/backend/pkg/logger"
)

// Fetcher downloads a notice submitted by URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (ingestion.Document, error)
}

type SummarizeHandler struct {
	processor *ingestion.Processor
	fetcher   Fetcher
}

// NewSummarizeHandler builds the handler. A nil fetcher disables the url
// input.
func NewSummarizeHandler(processor *ingestion.Processor, fetcher Fetcher) *SummarizeHandler {
	return &SummarizeHandler{
		processor: processor,
		fetcher:   fetcher,
	}
}

type documentRequest struct {
	Text   string `json:"text"`
	HTML   string `json:"html"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Pages  *int   `json:"pages"`
}

func (d documentRequest) document() ingestion.Document {
	if d.HTML != "" {
		return ingestion.Document{Body: []byte(d.HTML), ContentType: fiber.MIMETextHTML, Source: d.Source, Pages: d.Pages}
	}
	return ingestion.Document{Body: []byte(d.Text), ContentType: fiber.MIMETextPlain, Source: d.Source, Pages: d.Pages}
}

type summarizeRequest struct {
	documentRequest
	Highlights string `json:"highlights"`
}

type batchRequest struct {
	Documents  []documentRequest `json:"documents"`
	Highlights string            `json:"highlights"`
}

type batchResponse struct {
	Results []*models.Envelope `json:"results"`
}

// Summarize accepts a raw text/plain or text/html body, a JSON document or a
// multipart upload in the "file" field.
func (h *SummarizeHandler) Summarize(c *fiber.Ctx) error {
	highlights := c.Query("highlights")

	var doc ingestion.Document
	mediaType, _, _ := mime.ParseMediaType(c.Get(fiber.HeaderContentType))

	switch mediaType {
	case fiber.MIMEApplicationJSON:
		var req summarizeRequest
		if err := c.BodyParser(&req); err != nil {
			logger.Error("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if highlights == "" {
			highlights = req.Highlights
		}
		if req.Text == "" && req.HTML == "" && req.URL != "" {
			fetched, err := h.fetch(c, req.URL, req.Source, req.Pages)
			if err != nil || fetched == nil {
				return err
			}
			doc = *fetched
		} else {
			doc = req.document()
		}
	case fiber.MIMEMultipartForm:
		if _, err := c.FormFile("file"); err != nil && c.FormValue("url") != "" {
			fetched, err := h.fetch(c, c.FormValue("url"), "", nil)
			if err != nil || fetched == nil {
				return err
			}
			doc = *fetched
			break
		}
		var err error
		doc, err = documentFromUpload(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	default:
		doc = ingestion.Document{
			Body:        append([]byte(nil), c.Body()...),
			ContentType: c.Get(fiber.HeaderContentType),
			Source:      c.Query("source"),
		}
		if p := c.Query("pages"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "pages must be a non-negative integer",
				})
			}
			doc.Pages = &n
		}
	}

	strategy, ok := parseHighlights(highlights)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "highlights must be one of: lead, frequency",
		})
	}

	env, err := h.processor.Process(c.UserContext(), doc, strategy)
	if err != nil {
		return processError(c, err)
	}

	return c.JSON(env)
}

// SummarizeBatch processes every document in the request and returns the
// envelopes in request order.
func (h *SummarizeHandler) SummarizeBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Documents) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "documents is required",
		})
	}

	if len(req.Documents) > h.processor.MaxBatch() {
		return processError(c, fmt.Errorf("%w: %d > %d", ingestion.ErrBatchTooLarge, len(req.Documents), h.processor.MaxBatch()))
	}

	highlights := c.Query("highlights")
	if highlights == "" {
		highlights = req.Highlights
	}
	strategy, ok := parseHighlights(highlights)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "highlights must be one of: lead, frequency",
		})
	}

	docs := make([]ingestion.Document, len(req.Documents))
	for i, d := range req.Documents {
		if d.Text == "" && d.HTML == "" && d.URL != "" {
			fetched, err := h.fetch(c, d.URL, d.Source, d.Pages)
			if err != nil || fetched == nil {
				return err
			}
			docs[i] = *fetched
			continue
		}
		docs[i] = d.document()
	}

	results, err := h.processor.ProcessBatch(c.UserContext(), docs, strategy)
	if err != nil {
		return processError(c, err)
	}

	return c.JSON(batchResponse{Results: results})
}

// fetch downloads a URL document. A nil document with a nil error means the
// error response has been written.
func (h *SummarizeHandler) fetch(c *fiber.Ctx, rawURL, source string, pages *int) (*ingestion.Document, error) {
	if h.fetcher == nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url input is disabled",
		})
	}

	doc, err := h.fetcher.Fetch(c.UserContext(), rawURL)
	if err != nil {
		if errors.Is(err, ingestion.ErrDocumentTooLarge) {
			return nil, processError(c, err)
		}
		logger.Warn("Failed to fetch document", zap.String("url", rawURL), zap.Error(err))
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if source != "" {
		doc.Source = source
	}
	doc.Pages = pages
	return &doc, nil
}

func documentFromUpload(c *fiber.Ctx) (ingestion.Document, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return ingestion.Document{}, errors.New("file field is required")
	}

	f, err := fh.Open()
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("could not read upload")
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("could not read upload")
	}

	doc := ingestion.Document{
		Body:        body,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Source:      fh.Filename,
	}

	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".html", ".htm":
		doc.ContentType = fiber.MIMETextHTML
	case ".txt", ".md", "":
		if doc.ContentType == "" || doc.ContentType == fiber.MIMEOctetStream {
			doc.ContentType = fiber.MIMETextPlain
		}
	}

	if p := c.FormValue("pages"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return ingestion.Document{}, errors.New("pages must be a non-negative integer")
		}
		doc.Pages = &n
	}

	return doc, nil
}

func parseHighlights(s string) (extraction.Strategy, bool) {
	if s == "" {
		return "", true
	}
	return extraction.ParseStrategy(s)
}

func processError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ingestion.ErrEmptyDocument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty upload"})
	case errors.Is(err, ingestion.ErrDocumentTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "document too large"})
	case errors.Is(err, ingestion.ErrUnsupportedContentType):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "unsupported content type"})
	case errors.Is(err, ingestion.ErrBatchTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Error("Failed to summarize document", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to summarize document",
	})
}
