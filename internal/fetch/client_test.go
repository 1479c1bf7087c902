package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/rfp-brief/backend/internal/ingestion"
)

func newTestClient(maxBytes int) *Client {
	c := NewClient(time.Second, maxBytes)
	c.retry.InitialDelay = time.Millisecond
	c.retry.MaxDelay = time.Millisecond
	return c
}

func TestFetch_HTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<h1>Request for Proposal</h1>"))
	}))
	defer srv.Close()

	doc, err := newTestClient(1024).Fetch(context.Background(), srv.URL+"/notice")

	assert.Equal(t, nil, err)
	assert.Equal(t, "<h1>Request for Proposal</h1>", string(doc.Body))
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	assert.Equal(t, srv.URL+"/notice", doc.Source)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("Tender"))
	}))
	defer srv.Close()

	doc, err := newTestClient(1024).Fetch(context.Background(), srv.URL)

	assert.Equal(t, nil, err)
	assert.Equal(t, "Tender", string(doc.Body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(1024).Fetch(context.Background(), srv.URL)

	assert.Equal(t, true, errors.Is(err, ErrFetch))
	assert.Equal(t, true, strings.Contains(err.Error(), "404"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer srv.Close()

	_, err := newTestClient(10).Fetch(context.Background(), srv.URL)

	assert.Equal(t, true, errors.Is(err, ingestion.ErrDocumentTooLarge))
}

func TestFetch_InvalidURL(t *testing.T) {
	c := newTestClient(10)
	for _, u := range []string{"", "ftp://example.com/a", "notaurl", "http://"} {
		_, err := c.Fetch(context.Background(), u)
		assert.Equal(t, ErrInvalidURL, err)
	}
}
