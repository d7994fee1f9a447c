package jquants

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the J-Quants API.
	DefaultBaseURL = "https://api.jquants.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// maxPages bounds pagination so a misbehaving server cannot loop forever
	maxPages = 1000
)

// Client is a J-Quants API client.
type Client struct {
	baseURL    string
	idToken    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewClient creates a new J-Quants API client authenticated with an ID token.
func NewClient(idToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		idToken: idToken,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.idToken)
	req.Header.Set("User-Agent", common.UserAgent())

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Str("query", params.Encode()).
			Msg("J-Quants API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{Message: err.Error(), Endpoint: path}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
			Endpoint:   path,
		}
	}

	return nil
}

// errorMessage extracts {"message": "..."} from an error body, falling back to the raw text
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

// Statements retrieves the full statement history of a security.
func (c *Client) Statements(ctx context.Context, symbol string) ([]models.StatementRecord, error) {
	params := url.Values{}
	params.Set("code", symbol)
	return c.statements(ctx, params)
}

// StatementsByDate retrieves every statement disclosed on a date (YYYY-MM-DD).
func (c *Client) StatementsByDate(ctx context.Context, date string) ([]models.StatementRecord, error) {
	params := url.Values{}
	params.Set("date", date)
	return c.statements(ctx, params)
}

func (c *Client) statements(ctx context.Context, params url.Values) ([]models.StatementRecord, error) {
	var all []models.StatementRecord
	for page := 0; page < maxPages; page++ {
		var result statementsResponse
		if err := c.get(ctx, "/v1/fins/statements", params, &result); err != nil {
			return nil, err
		}
		all = append(all, result.Statements...)

		if result.PaginationKey == "" {
			return all, nil
		}
		params.Set("pagination_key", result.PaginationKey)
	}
	return nil, &APIError{Message: "pagination did not terminate", Endpoint: "/v1/fins/statements"}
}

// ListedInfo retrieves the listed-company master.
func (c *Client) ListedInfo(ctx context.Context) ([]ListedInfo, error) {
	params := url.Values{}
	var all []ListedInfo
	for page := 0; page < maxPages; page++ {
		var result listedInfoResponse
		if err := c.get(ctx, "/v1/listed/info", params, &result); err != nil {
			return nil, err
		}
		all = append(all, result.Info...)

		if result.PaginationKey == "" {
			return all, nil
		}
		params.Set("pagination_key", result.PaginationKey)
	}
	return nil, &APIError{Message: "pagination did not terminate", Endpoint: "/v1/listed/info"}
}

// ListedSymbols returns the codes listed on any of the given market segments.
// A segment matches when it is contained in the entry's MarketCodeName.
// An empty markets list returns every listed code.
func (c *Client) ListedSymbols(ctx context.Context, markets []string) ([]string, error) {
	info, err := c.ListedInfo(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(info))
	for _, entry := range info {
		if entry.Code == "" || !matchesMarket(entry.MarketCodeName, markets) {
			continue
		}
		codes = append(codes, entry.Code)
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("listed", len(info)).
			Int("selected", len(codes)).
			Strs("markets", markets).
			Msg("Filtered listed symbols by market")
	}

	return codes, nil
}

func matchesMarket(name string, markets []string) bool {
	if len(markets) == 0 {
		return true
	}
	for _, m := range markets {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}
