// Package library reports which search results are already in a Radarr library.
package library

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golift.io/starr"
	"golift.io/starr/radarr"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = 5 * time.Minute
)

// Client wraps the starr Radarr client and caches the library's IMDb ids
type Client struct {
	client RadarrAPI
	logger zerolog.Logger

	mu       sync.Mutex
	owned    map[string]struct{}
	cachedAt time.Time
	cacheTTL time.Duration
}

// NewClient creates a new Radarr client and verifies the connection
func NewClient(url, apiKey string, logger zerolog.Logger) (*Client, error) {
	config := starr.New(apiKey, url, defaultTimeout)
	radarrClient := radarr.New(config)

	if err := radarrClient.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to Radarr: %w", err)
	}

	return NewClientWithAPI(radarrClient, logger), nil
}

// NewClientWithAPI creates a client around an existing API implementation
func NewClientWithAPI(api RadarrAPI, logger zerolog.Logger) *Client {
	return &Client{
		client:   api,
		logger:   logger,
		cacheTTL: defaultCacheTTL,
	}
}

// OwnedIMDbIDs returns the subset of ids present in the library.
// Every returned key is one of ids; comparisons ignore case.
func (c *Client) OwnedIMDbIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	owned := make(map[string]bool)
	if len(ids) == 0 {
		return owned, nil
	}

	library, err := c.libraryIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := library[strings.ToLower(id)]; ok {
			owned[id] = true
		}
	}

	c.logger.Debug().
		Int("checked", len(ids)).
		Int("owned", len(owned)).
		Msg("Checked results against Radarr library")

	return owned, nil
}

// Invalidate drops the cached library snapshot
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.owned = nil
	c.mu.Unlock()
}

func (c *Client) libraryIDs(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owned != nil && time.Since(c.cachedAt) < c.cacheTTL {
		return c.owned, nil
	}

	movies, err := c.client.GetMovieContext(ctx, &radarr.GetMovie{})
	if err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}

	owned := make(map[string]struct{}, len(movies))
	for _, m := range movies {
		if m == nil || m.ImdbID == "" {
			continue
		}
		owned[strings.ToLower(m.ImdbID)] = struct{}{}
	}

	c.logger.Debug().Msgf("Retrieved %d movies from Radarr", len(movies))

	c.owned = owned
	c.cachedAt = time.Now()
	return owned, nil
}
