package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public OMDb endpoint
	DefaultBaseURL = "https://www.omdbapi.com"

	// searchPageSize is fixed by the API
	searchPageSize  = 10
	defaultMaxPages = 10

	// probeID is fetched by TestConnection
	probeID = "tt0133093"
)

// Client represents an OMDb API client
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	maxPages   int
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ Catalog = (*Client)(nil)

// NewClient creates a new OMDb client
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %v", ErrInvalidConfig, baseURL, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		maxPages: defaultMaxPages,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// doRequest performs an authenticated GET against the API root
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	return body, nil
}

// Search resolves a free-text title to at most limit IMDb identifiers
func (c *Client) Search(ctx context.Context, title string, limit int) ([]string, error) {
	ids := make([]string, 0, min(max(limit, 0), searchPageSize*c.maxPages))
	if limit <= 0 {
		return ids, nil
	}

	seen := make(map[string]struct{}, limit)

	for page := 1; page <= c.maxPages && len(ids) < limit; page++ {
		response, err := c.searchPage(ctx, title, page)
		if err != nil {
			return nil, err
		}

		// Pages past the last hit also report "not found"
		if response.noMatches() {
			break
		}
		if !response.OK() {
			return nil, &APIError{StatusCode: http.StatusOK, Message: response.Error}
		}

		for _, item := range response.Search {
			if item.IMDbID == "" {
				continue
			}
			if _, dup := seen[item.IMDbID]; dup {
				continue
			}
			seen[item.IMDbID] = struct{}{}
			ids = append(ids, item.IMDbID)
			if len(ids) == limit {
				break
			}
		}

		c.logger.Debug().
			Str("title", title).
			Int("page", page).
			Int("count", len(response.Search)).
			Int("total", response.Total()).
			Msg("Retrieved search page from OMDb")

		if len(response.Search) == 0 || page*searchPageSize >= response.Total() {
			break
		}
	}

	return ids, nil
}

func (c *Client) searchPage(ctx context.Context, title string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("s", title)
	params.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search %q (page %d): %w", title, page, err)
	}

	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &response, nil
}

// GetByID fetches the raw detail record for an IMDb identifier
func (c *Client) GetByID(ctx context.Context, id string) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrNotFound)
	}

	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "short")

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", id, err)
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", id, err)
	}

	if response, _ := record["Response"].(string); strings.EqualFold(response, "False") {
		message, _ := record["Error"].(string)
		return nil, fmt.Errorf("%s: %w: %s", id, ErrNotFound, message)
	}

	return record, nil
}

// TestConnection verifies the endpoint is reachable and the API key is accepted
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.GetByID(ctx, probeID); err != nil {
		return fmt.Errorf("failed to connect to OMDb: %w", err)
	}
	return nil
}

// errorMessage extracts the API's Error field, falling back to the raw body
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"Error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
