// Package brapi is the quote gateway: it talks to the brapi.dev market-data
// API, batching symbols, rate limiting requests and retrying rate-limited
// calls, and turns the loosely structured results into quotes and price series.
package brapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/retry"
)

const (
	DefaultBaseURL        = "https://brapi.dev/api"
	DefaultTimeout        = 10 * time.Second
	DefaultRateLimit      = 5 // requests per second
	DefaultChunkSize      = 20
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultSuffix         = ".SA"
	DefaultFXSymbol       = "USDBRL=X"
	DefaultHistoryCache   = 128
	DefaultHistoryTTL     = 15 * time.Minute
)

// quoteModules asks the provider for every module a ratio may live in.
const quoteModules = "fundamental,summaryDetail,defaultKeyStatistics,financialData"

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("brapi %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("brapi %s: status %d", e.Endpoint, e.StatusCode)
}

// IsRateLimited reports whether err is a provider 429 response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// Client implements the quote gateway against brapi.dev.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Policy
	chunkSize  int
	suffix     string
	fxSymbol   string
	cacheSize  int
	cacheTTL   time.Duration
	cache      *historyCache
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithToken sets the API token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the HTTP client. Tests use it to install a mock transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithChunkSize sets how many symbols go into one quote request.
func WithChunkSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithRetry sets the attempts and base delay used for rate-limited requests.
func WithRetry(maxAttempts int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.retry.MaxAttempts = maxAttempts
		c.retry.BaseDelay = baseDelay
	}
}

// WithDomesticSuffix sets the market suffix appended to local listings.
func WithDomesticSuffix(suffix string) ClientOption {
	return func(c *Client) {
		c.suffix = strings.ToUpper(suffix)
	}
}

// WithFXSymbol sets the currency pair used to convert foreign history.
func WithFXSymbol(symbol string) ClientOption {
	return func(c *Client) {
		c.fxSymbol = strings.ToUpper(symbol)
	}
}

// WithHistoryCache sizes the history cache. A size of zero disables it.
func WithHistoryCache(size int, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cacheSize = size
		c.cacheTTL = ttl
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new brapi client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		retry: retry.Policy{
			MaxAttempts: DefaultMaxAttempts,
			BaseDelay:   DefaultRetryBaseDelay,
			Retryable:   IsRateLimited,
		},
		chunkSize: DefaultChunkSize,
		suffix:    DefaultSuffix,
		fxSymbol:  DefaultFXSymbol,
		cacheSize: DefaultHistoryCache,
		cacheTTL:  DefaultHistoryTTL,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cache = newHistoryCache(c.cacheSize, c.cacheTTL, c.now)
	return c
}

// ChunkSize returns the configured batch size.
func (c *Client) ChunkSize() int {
	return c.chunkSize
}

// quoteResponse is the provider's quote envelope. Results stay untyped
// because their shape differs per symbol kind.
type quoteResponse struct {
	Results []map[string]any `json:"results"`
	Error   bool             `json:"error"`
	Message string           `json:"message"`
}

// FetchQuotes returns quotes keyed by the uppercased symbol the provider
// echoed back. Chunks are requested one after another; a chunk that fails
// after retries is logged and its symbols are simply absent from the map.
func (c *Client) FetchQuotes(ctx context.Context, tickers []string) map[string]model.Quote {
	quotes := make(map[string]model.Quote)

	symbols := dedupe(tickers, c.suffix)
	if len(symbols) == 0 {
		return quotes
	}

	for i, chunk := range Chunk(symbols, c.chunkSize) {
		if ctx.Err() != nil {
			c.logger.Warn().Err(ctx.Err()).Int("chunk", i).Msg("Quote fetch cancelled")
			break
		}

		results, err := c.fetchChunk(ctx, chunk)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("chunk", i).
				Strs("symbols", chunk).
				Msg("Quote chunk failed, symbols omitted")
			continue
		}

		now := c.now()
		for _, raw := range results {
			env, ok := NewEnvelope(raw, c.suffix)
			if !ok {
				continue
			}
			q, ok := env.Quote(now)
			if !ok {
				c.logger.Debug().Str("symbol", env.Symbol).Msg("Quote without price skipped")
				continue
			}
			quotes[env.Symbol] = q
		}
	}

	c.logger.Debug().Int("requested", len(symbols)).Int("received", len(quotes)).Msg("Quotes fetched")
	return quotes
}

func (c *Client) fetchChunk(ctx context.Context, symbols []string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("modules", quoteModules)

	var resp quoteResponse
	if err := c.get(ctx, quotePath(symbols), params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// get performs a rate-limited GET, retrying 429 responses through the
// client's policy, and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.token != "" {
		params.Set("token", c.token)
	}
	reqURL := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	attempts, err := c.retry.Attempts(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		return c.do(ctx, path, reqURL, out)
	})
	if err != nil && attempts > 1 {
		c.logger.Debug().Err(err).Str("endpoint", path).Int("attempts", attempts).Msg("Provider request gave up")
	}
	return err
}

func (c *Client) do(ctx context.Context, endpoint, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Dur("elapsed", elapsed).Msg("Provider request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Provider non-OK response")
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func quotePath(symbols []string) string {
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.PathEscape(s)
	}
	return "/quote/" + strings.Join(escaped, ",")
}
