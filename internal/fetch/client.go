// Package fetch downloads notices that are submitted by URL instead of
// uploaded.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/ingestion"
	"github.com/rfp-brief/backend/pkg/logger"
	"github.com/rfp-brief/backend/pkg/retry"
)

var (
	ErrInvalidURL = errors.New("url must be absolute http or https")
	ErrFetch      = errors.New("failed to fetch document")
)

const userAgent = "rfp-brief/1.0 (+notice fetcher)"

type Client struct {
	httpClient *http.Client
	maxBytes   int64
	retry      retry.Config
}

func NewClient(timeout time.Duration, maxBytes int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = logger.Named("fetch")

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   int64(maxBytes),
		retry:      retryCfg,
	}
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

// Fetch downloads rawURL into a Document. Server errors and 429 are retried;
// other non-2xx responses fail immediately.
func (c *Client) Fetch(ctx context.Context, rawURL string) (ingestion.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ingestion.Document{}, ErrInvalidURL
	}

	logger.Info("Fetching document", zap.String("url", rawURL))

	var doc ingestion.Document
	err = retry.Do(ctx, c.retry, func() error {
		var err error
		doc, err = c.get(ctx, u.String())
		return err
	})
	if errors.Is(err, ingestion.ErrDocumentTooLarge) {
		return ingestion.Document{}, err
	}
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	return doc, nil
}

func (c *Client) get(ctx context.Context, target string) (ingestion.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ingestion.Document{}, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ingestion.Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return ingestion.Document{}, &statusError{code: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ingestion.Document{}, retry.Permanent(&statusError{code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return ingestion.Document{}, err
	}
	if c.maxBytes > 0 && int64(len(body)) > c.maxBytes {
		return ingestion.Document{}, retry.Permanent(ingestion.ErrDocumentTooLarge)
	}

	return ingestion.Document{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Source:      target,
	}, nil
}
