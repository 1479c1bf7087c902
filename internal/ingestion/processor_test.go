package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/internal/storage/models"
)

const notice = "Request for Proposal\n" +
	"Buyer: City of Example\n" +
	"Closing Date: 2025-06-01\n" +
	"Mandatory Requirements\n" +
	"- Must have insurance\n" +
	"- Must have 5 years experience\n" +
	"Contact: jane@example.com"

type fakeStore struct {
	mu      sync.Mutex
	rows    []*models.Solicitation
	failErr error
}

func (s *fakeStore) InsertSolicitation(_ context.Context, sol *models.Solicitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.rows = append(s.rows, sol)
	return nil
}

func (s *fakeStore) GetSolicitation(_ context.Context, id string) (*models.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			return r.Envelope, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStore) ListSolicitations(_ context.Context, limit int) ([]models.SolicitationSummary, error) {
	return []models.SolicitationSummary{}, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }
func (s *fakeStore) Close() error               { return nil }

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]extraction.Result
	gets    int
	sets    int
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]extraction.Result{}}
}

func (c *fakeCache) GetSummary(_ context.Context, hash string, strategy extraction.Strategy) (extraction.Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return extraction.Result{}, false, c.getErr
	}
	res, ok := c.entries[hash+":"+string(strategy)]
	return res, ok, nil
}

func (c *fakeCache) SetSummary(_ context.Context, hash string, strategy extraction.Strategy, res extraction.Result, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[hash+":"+string(strategy)] = res
	return nil
}

func newTestProcessor(store *fakeStore, cache Cache) *Processor {
	p := NewProcessor(extraction.NewExtractor(extraction.DefaultConfig()), store, cache, Options{
		MaxDocumentBytes: 4096,
		MaxBatch:         3,
		BatchConcurrency: 2,
	})
	p.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func pages(n int) *int { return &n }

func TestProcess_PlainText(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(store, nil)

	env, err := p.Process(context.Background(), Document{
		Body:        []byte(notice),
		ContentType: "text/plain; charset=utf-8",
		Source:      "notice.txt",
		Pages:       pages(3),
	}, "")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Request for Proposal", env.Facts.Title)
	assert.Equal(t, "City of Example", env.Facts.Buyer)
	assert.Equal(t, "2025-06-01", env.Facts.ClosingDate)
	assert.Equal(t, []string{"Must have insurance", "Must have 5 years experience"}, env.Requirements.MandatoryRequirements)

	assert.Equal(t, 36, len(env.Meta.ID))
	assert.Equal(t, "notice.txt", env.Meta.Source)
	assert.Equal(t, SourceTypeText, env.Meta.SourceType)
	assert.Equal(t, "en", env.Meta.Language)
	assert.Equal(t, 3, *env.Meta.Pages)
	assert.Equal(t, len(strings.Fields(notice)), env.Meta.WordCount)
	assert.Equal(t, 64, len(env.Meta.ContentHash))
	assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), env.Meta.ProcessedAt)

	assert.Equal(t, 1, len(store.rows))
	assert.Equal(t, env.Meta.ID, store.rows[0].ID)
	assert.Equal(t, "Request for Proposal", store.rows[0].Title)
}

func TestProcess_HTML(t *testing.T) {
	p := newTestProcessor(&fakeStore{}, nil)

	html := "<h1>Request for Proposal</h1><p>Buyer: City of Example</p>" +
		"<h2>Mandatory Requirements</h2><ul><li>Must have insurance</li><li>Must have 5 years experience</li></ul>"

	env, err := p.Process(context.Background(), Document{Body: []byte(html), ContentType: "text/html"}, "")

	assert.Equal(t, nil, err)
	assert.Equal(t, SourceTypeHTML, env.Meta.SourceType)
	assert.Equal(t, "City of Example", env.Facts.Buyer)
	assert.Equal(t, []string{"Must have insurance", "Must have 5 years experience"}, env.Requirements.MandatoryRequirements)
}

func TestProcess_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{name: "empty", doc: Document{Body: nil}, want: ErrEmptyDocument},
		{name: "too large", doc: Document{Body: []byte(strings.Repeat("a", 4097))}, want: ErrDocumentTooLarge},
		{name: "pdf", doc: Document{Body: []byte("%PDF-1.7"), ContentType: "application/pdf"}, want: ErrUnsupportedContentType},
		{name: "malformed type", doc: Document{Body: []byte("x"), ContentType: "text/"}, want: ErrUnsupportedContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			p := newTestProcessor(store, nil)

			env, err := p.Process(context.Background(), tt.doc, "")

			assert.Equal(t, true, errors.Is(err, tt.want))
			assert.Equal(t, true, env == nil)
			assert.Equal(t, 0, len(store.rows))
		})
	}
}

func TestProcess_WhitespaceOnlyIsNotRejected(t *testing.T) {
	p := newTestProcessor(&fakeStore{}, nil)

	env, err := p.Process(context.Background(), Document{Body: []byte(" \n\t ")}, "")

	assert.Equal(t, nil, err)
	assert.Equal(t, extraction.NoSummaryPlaceholder, env.Summary.Executive)
	assert.Equal(t, 50, env.Summary.FitScore.Score)
}

func TestProcess_StoreFailure(t *testing.T) {
	p := newTestProcessor(&fakeStore{failErr: errors.New("disk full")}, nil)

	env, err := p.Process(context.Background(), Document{Body: []byte(notice)}, "")

	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, env == nil)
}

func TestProcess_UsesCache(t *testing.T) {
	cache := newFakeCache()
	store := &fakeStore{}
	p := newTestProcessor(store, cache)
	ctx := context.Background()

	first, err := p.Process(ctx, Document{Body: []byte(notice)}, extraction.StrategyLead)
	assert.Equal(t, nil, err)
	second, err := p.Process(ctx, Document{Body: []byte(notice)}, extraction.StrategyLead)
	assert.Equal(t, nil, err)

	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
	assert.NotEqual(t, first.Meta.ID, second.Meta.ID)
	assert.Equal(t, first.Facts, second.Facts)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, 2, len(store.rows))

	_, err = p.Process(ctx, Document{Body: []byte(notice)}, extraction.StrategyFrequency)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, cache.sets)
}

func TestProcess_CacheErrorsAreIgnored(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	p := newTestProcessor(&fakeStore{}, cache)

	env, err := p.Process(context.Background(), Document{Body: []byte(notice)}, "")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Request for Proposal", env.Facts.Title)
}

func TestProcess_Highlights(t *testing.T) {
	p := newTestProcessor(&fakeStore{}, nil)
	text := "The city seeks services. Maintenance is required. Training is optional."

	none, err := p.Process(context.Background(), Document{Body: []byte(text)}, "")
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(none.Summary.Highlights))

	lead, err := p.Process(context.Background(), Document{Body: []byte(text)}, extraction.StrategyLead)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(lead.Summary.Highlights))
	assert.Equal(t, "The city seeks services.", lead.Summary.Highlights[0])
}

func TestProcessBatch_PreservesOrder(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(store, nil)

	docs := make([]Document, 3)
	for i := range docs {
		docs[i] = Document{Body: []byte(fmt.Sprintf("Request for Proposal %d\nBuyer: Agency %d", i, i))}
	}

	envs, err := p.ProcessBatch(context.Background(), docs, "")

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(envs))
	for i, env := range envs {
		assert.Equal(t, fmt.Sprintf("Request for Proposal %d", i), env.Facts.Title)
		assert.Equal(t, fmt.Sprintf("Agency %d", i), env.Facts.Buyer)
	}
	assert.Equal(t, 3, len(store.rows))
}

func TestProcessBatch_TooLarge(t *testing.T) {
	p := newTestProcessor(&fakeStore{}, nil)

	_, err := p.ProcessBatch(context.Background(), make([]Document, 4), "")

	assert.Equal(t, true, errors.Is(err, ErrBatchTooLarge))
}

func TestProcessBatch_FailureNamesDocument(t *testing.T) {
	p := newTestProcessor(&fakeStore{}, nil)

	docs := []Document{{Body: []byte(notice)}, {Body: nil}}
	envs, err := p.ProcessBatch(context.Background(), docs, "")

	assert.Equal(t, true, errors.Is(err, ErrEmptyDocument))
	assert.Equal(t, true, strings.Contains(err.Error(), "document 1"))
	assert.Equal(t, true, envs == nil)
}

func TestProcessBatch_Empty(t *testing.T) {
	p := newTestProcessor(&fakeStore{}, nil)

	envs, err := p.ProcessBatch(context.Background(), nil, "")

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(envs))
}
