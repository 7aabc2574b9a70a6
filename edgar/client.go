// Package edgar provides a rate-limited HTTP client for the SEC EDGAR
// archive. It observes the fair access policy: a descriptive User-Agent,
// a request-rate ceiling, and backoff on throttling responses.
package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ebarkan/edgarseg"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the SEC EDGAR archive host.
const DefaultBaseURL = "https://www.sec.gov"

// DefaultRequestsPerSecond is the SEC fair access policy ceiling.
const DefaultRequestsPerSecond = 10

// DefaultFetchTimeout bounds a single request. Containers run to tens of
// megabytes, so this is lenient compared to a page fetch.
const DefaultFetchTimeout = 60 * time.Second

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Client fetches filing containers and accession indexes from EDGAR.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
	timeout    time.Duration
	rps        float64
	delays     []time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the archive host, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRequestsPerSecond overrides the request-rate ceiling.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		c.rps = rps
	}
}

// WithRetryDelays overrides the backoff delays between retries. An empty
// slice disables retries.
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Client) {
		c.delays = delays
	}
}

// NewClient creates an EDGAR client. The user agent is required; SEC policy
// asks for a company name and a contact address, e.g.
// "Acme Research admin@acme.example".
func NewClient(userAgent string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, edgarseg.Errorf(edgarseg.EINVALID, "EDGAR fair access policy requires a descriptive User-Agent.")
	}

	c := &Client{
		userAgent: userAgent,
		baseURL:   DefaultBaseURL,
		timeout:   DefaultFetchTimeout,
		rps:       DefaultRequestsPerSecond,
		delays:    DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Burst of 1: requests are spaced evenly, never bunched.
	c.limiter = rate.NewLimiter(rate.Limit(c.rps), 1)

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// FetchContainer downloads the full-submission text container for an
// accession. The accession number may be dashed or bare digits.
func (c *Client) FetchContainer(ctx context.Context, accession, cik string) ([]byte, error) {
	url, err := c.AccessionURL(accession, cik)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, url)
}

// AccessionURL returns the URL of the full-submission text container.
func (c *Client) AccessionURL(accession, cik string) (string, error) {
	dashed, err := NormalizeAccession(accession)
	if err != nil {
		return "", err
	}
	dir, err := normalizeCIK(cik)
	if err != nil {
		return "", err
	}
	bare := strings.ReplaceAll(dashed, "-", "")
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s.txt", c.baseURL, dir, bare, dashed), nil
}

// IndexURL returns the URL of the accession's XML directory index.
func (c *Client) IndexURL(accession, cik string) (string, error) {
	dashed, err := NormalizeAccession(accession)
	if err != nil {
		return "", err
	}
	dir, err := normalizeCIK(cik)
	if err != nil {
		return "", err
	}
	bare := strings.ReplaceAll(dashed, "-", "")
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/index.xml", c.baseURL, dir, bare), nil
}

// get performs a rate-limited GET with exponential backoff on throttling
// (429) and server errors.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	maxAttempts := len(c.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		body, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, edgarseg.Errorf(edgarseg.ENOTFOUND, "EDGAR has no file at %s.", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	default:
		return nil, false, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}

// NormalizeAccession returns the dashed form of an accession number.
// Accepts both "0000320193-24-000123" and "000032019324000123".
func NormalizeAccession(accession string) (string, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(accession), "-", "")
	if len(digits) != 18 {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "Accession number must contain 18 digits.")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", edgarseg.Errorf(edgarseg.EINVALID, "Accession number must contain only digits and dashes.")
		}
	}
	return digits[:10] + "-" + digits[10:12] + "-" + digits[12:], nil
}

// normalizeCIK strips leading zeros; archive paths use the short form.
func normalizeCIK(cik string) (string, error) {
	trimmed := strings.TrimSpace(cik)
	if trimmed == "" {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "CIK must not be empty.")
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", edgarseg.Errorf(edgarseg.EINVALID, "CIK must contain only digits.")
		}
	}
	short := strings.TrimLeft(trimmed, "0")
	if short == "" {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "CIK must be a positive number.")
	}
	return short, nil
}
