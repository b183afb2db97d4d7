// Package drive downloads per-city listing exports shared on Google Drive.
package drive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"airbnb-insights/config"
	"airbnb-insights/models"
	"airbnb-insights/utils"
)

// Client fetches raw city tables from Drive, one download at a time
type Client struct {
	cfg         *config.Config
	httpClient  *http.Client
	rateLimiter *utils.RateLimiter
	confirm     ConfirmResolver
	logger      *utils.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithConfirmResolver handles Drive's virus-scan confirmation page
func WithConfirmResolver(r ConfirmResolver) Option {
	return func(c *Client) { c.confirm = r }
}

// NewClient creates a new Drive client
func NewClient(cfg *config.Config, logger *utils.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.FetchTimeout},
		rateLimiter: utils.NewRateLimiter(cfg.RateLimitDelay),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads and decodes the CSV export of one city
func (c *Client) Fetch(ctx context.Context, src config.CitySource) (*models.RawTable, error) {
	url := c.cfg.DownloadURL(src.FileID)
	log := c.logger.With("city", src.City)

	var table *models.RawTable
	err := utils.RetryWithBackoff(ctx, c.cfg.MaxRetries, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		t, err := c.download(ctx, url)
		if err != nil {
			return err
		}
		table = t
		return nil
	}, log)
	if err != nil {
		return nil, err
	}

	log.Info("Downloaded %d rows x %d columns", table.Len(), len(table.Columns))
	return table, nil
}

func (c *Client) download(ctx context.Context, url string) (*models.RawTable, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if isHTML(resp) {
		if c.confirm == nil {
			return nil, ErrConfirmRequired
		}
		confirmed, err := c.confirm.ResolveConfirmURL(ctx, url)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("Following Drive confirmation to %s", confirmed)

		resp2, err := c.get(ctx, confirmed)
		if err != nil {
			return nil, err
		}
		defer resp2.Body.Close()
		if isHTML(resp2) {
			return nil, ErrConfirmRequired
		}
		return ReadRawCSV(resp2.Body)
	}

	return ReadRawCSV(resp.Body)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, application/octet-stream, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	return resp, nil
}

func isHTML(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/html"
}
