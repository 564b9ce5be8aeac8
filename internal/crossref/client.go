// Package crossref implements the publication-catalog adapter: cursor-
// paginated listings of a journal's works, single-work lookup, and
// reference-list coverage.
package crossref

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
	// BaseURL is the public Crossref works API.
	BaseURL = "https://api.crossref.org/works"

	// DefaultTimeout bounds one page request.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps the client inside the polite-pool budget.
	RateLimit = 5.0

	// DefaultRows is the listing page size; the API caps rows at 1000.
	DefaultRows = 1000

	// startCursor opens a cursor walk.
	startCursor = "*"

	catalogName = "crossref"
)

// Client is a rate-limited HTTP client for the Crossref works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
	rows       int
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

// WithRows sets the listing page size.
func WithRows(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.rows = n
		}
	}
}

// WithLogger sets the logger for transient-failure warnings.
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

// NewClient creates a Crossref client. The polite-pool contact address is
// read from JOURQ_MAILTO when not set explicitly.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		rows:       DefaultRows,
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

// listURL builds one listing page request.
func (c *Client) listURL(issn, from, until, cursor string) string {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("issn:%s,from-pub-date:%s,until-pub-date:%s", issn, from, until))
	q.Set("rows", strconv.Itoa(c.rows))
	q.Set("cursor", cursor)
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}
	return c.baseURL + "?" + q.Encode()
}

// ListWorks walks every listing page of works the journal published in
// the inclusive [from, until] window. Each page request carries the
// cursor token returned by the previous response; the walk ends on an
// empty page or a missing next cursor.
//
// A failed page ends the walk early with the pages already gathered and
// the Partial flag set: pagination cannot continue without the failed
// page's cursor, and discarding completed pages would be worse.
func (c *Client) ListWorks(ctx context.Context, issn, from, until string) (*catalog.Listing, error) {
	listing := &catalog.Listing{}
	cursor := startCursor

	for {
		var page worksResponse
		if err := c.get(ctx, c.listURL(issn, from, until, cursor), &page); err != nil {
			if ctx.Err() != nil {
				listing.Partial = true
				return listing, ctx.Err()
			}
			c.logger.Warn("listing page fetch failed, keeping partial listing",
				"issn", issn, "pages", listing.Pages, "works", len(listing.Works), "err", err)
			listing.Partial = true
			return listing, nil
		}

		listing.Pages++
		c.metrics.RecordPage(catalogName)

		if len(page.Message.Items) == 0 {
			return listing, nil
		}
		for _, item := range page.Message.Items {
			listing.Works = append(listing.Works, item.toWork())
		}

		if page.Message.NextCursor == "" {
			return listing, nil
		}
		cursor = page.Message.NextCursor
	}
}

// GetWork resolves one work by DOI.
func (c *Client) GetWork(ctx context.Context, d string) (catalog.Work, error) {
	d = doi.Normalize(d)
	if d == "" {
		return catalog.Work{}, catalog.ErrNotFound
	}

	var resp workResponse
	if err := c.get(ctx, c.workURL(d), &resp); err != nil {
		return catalog.Work{}, err
	}

	c.metrics.RecordWorkResolved()
	return resp.Message.toWork(), nil
}

// References fetches one work's reference list and tallies its DOI
// coverage. Entries without a DOI are counted, not errors.
func (c *Client) References(ctx context.Context, d string) (catalog.ReferenceList, error) {
	d = doi.Normalize(d)
	if d == "" {
		return catalog.ReferenceList{}, catalog.ErrNotFound
	}

	var resp workResponse
	if err := c.get(ctx, c.workURL(d), &resp); err != nil {
		return catalog.ReferenceList{}, err
	}

	var list catalog.ReferenceList
	for _, ref := range resp.Message.Reference {
		list.Total++
		if ref.DOI != "" {
			list.WithDOI++
		} else {
			list.WithoutDOI++
		}
	}
	return list, nil
}

func (c *Client) workURL(d string) string {
	u := c.baseURL + "/" + d
	if c.mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.mailto)
	}
	return u
}
