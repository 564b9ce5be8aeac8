// Package openalex implements the citation-catalog adapter: DOI
// resolution into enriched work records and cursor-paginated walks over
// the works citing a given work.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/doi"
	"github.com/jourq/jourq/internal/stats"
)

const (
	// BaseURL is the public OpenAlex API.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout bounds one request.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps the client inside the polite-pool budget.
	RateLimit = 10.0

	// DefaultPerPage is the citing-works page size; the API caps it at 200.
	DefaultPerPage = 200

	// StartCursor opens a citing-works cursor walk.
	StartCursor = "*"

	catalogName = "openalex"
)

// Client is a rate-limited HTTP client for the OpenAlex works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
	perPage    int
	logger     *slog.Logger
	metrics    *stats.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithMailto sets the polite-pool contact address sent with every request.
func WithMailto(mailto string) ClientOption {
	return func(c *Client) {
		if mailto != "" {
			c.mailto = mailto
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit overrides the request rate. Non-positive disables pacing;
// tests rely on that.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithPerPage sets the citing-works page size.
func WithPerPage(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics attaches request instrumentation.
func WithMetrics(m *stats.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates an OpenAlex client. The polite-pool contact address
// is read from JOURQ_MAILTO when not set explicitly.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		perPage:    DefaultPerPage,
		logger:     slog.Default(),
	}

	if m := os.Getenv("JOURQ_MAILTO"); m != "" {
		c.mailto = m
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkStatus maps non-2xx responses onto the shared error taxonomy.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", catalog.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &catalog.APIError{
			Catalog:    catalogName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// get performs one rate-limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(catalogName, stats.OutcomeError)
		return fmt.Errorf("%w: %v", catalog.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		if catalog.IsNotFound(err) {
			c.metrics.RecordRequest(catalogName, stats.OutcomeNotFound)
		} else {
			c.metrics.RecordRequest(catalogName, stats.OutcomeError)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.RecordRequest(catalogName, stats.OutcomeError)
		return fmt.Errorf("%w: %v", catalog.ErrInvalidResponse, err)
	}

	c.metrics.RecordRequest(catalogName, stats.OutcomeOK)
	return nil
}

// ResolveDOI fetches the enriched record for one work. The endpoint takes
// the DOI in URL form as the path, unescaped.
func (c *Client) ResolveDOI(ctx context.Context, d string) (catalog.Work, error) {
	d = doi.Normalize(d)
	if d == "" {
		return catalog.Work{}, catalog.ErrNotFound
	}

	rawURL := c.baseURL + "/works/" + doi.URLForm(d)
	if c.mailto != "" {
		rawURL += "?mailto=" + url.QueryEscape(c.mailto)
	}

	var w workJSON
	if err := c.get(ctx, rawURL, &w); err != nil {
		return catalog.Work{}, err
	}

	c.metrics.RecordWorkResolved()
	return w.toWork(), nil
}

// CitingPage fetches one page of works citing the given work ID. An empty
// cursor opens the walk; the returned cursor is empty once the walk is
// exhausted. The caller drives the loop so it can stop early, filter by
// year, and keep partial results on failure.
func (c *Client) CitingPage(ctx context.Context, workID, cursor string) ([]catalog.Work, string, error) {
	if cursor == "" {
		cursor = StartCursor
	}

	q := url.Values{}
	q.Set("filter", "cites:"+workID)
	q.Set("per-page", strconv.Itoa(c.perPage))
	q.Set("cursor", cursor)
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	var page listResponse
	if err := c.get(ctx, c.baseURL+"/works?"+q.Encode(), &page); err != nil {
		return nil, "", err
	}

	c.metrics.RecordPage(catalogName)

	works := make([]catalog.Work, 0, len(page.Results))
	for _, r := range page.Results {
		works = append(works, r.toWork())
	}
	return works, page.Meta.NextCursor, nil
}
