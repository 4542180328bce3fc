package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/moviescout/movie"
	"github.com/s0up4200/moviescout/omdb"
)

// mockCatalog implements omdb.Catalog for testing
type mockCatalog struct {
	ids       []string
	searchErr error

	// failFetch and malformed select ids whose detail lookup fails or returns a bad record
	failFetch map[string]bool
	malformed map[string]bool
	// delay returns how long GetByID blocks for an id
	delay func(id string) time.Duration

	searchCalls atomic.Int32
	fetchCalls  atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu         sync.Mutex
	lastLimit  int
	lastTitle  string
	fetchedIDs []string
}

func (m *mockCatalog) Search(ctx context.Context, title string, limit int) ([]string, error) {
	m.searchCalls.Add(1)
	m.mu.Lock()
	m.lastTitle, m.lastLimit = title, limit
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.ids) > limit {
		return m.ids[:limit], nil
	}
	return m.ids, nil
}

func (m *mockCatalog) GetByID(ctx context.Context, id string) (omdb.Record, error) {
	m.fetchCalls.Add(1)
	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.maxInFlight.Load()
		if current <= peak || m.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	m.mu.Lock()
	m.fetchedIDs = append(m.fetchedIDs, id)
	m.mu.Unlock()

	if m.delay != nil {
		select {
		case <-time.After(m.delay(id)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.failFetch[id] {
		return nil, fmt.Errorf("%s: %w", id, omdb.ErrNotFound)
	}
	if m.malformed[id] {
		return omdb.Record{"Title": "broken", "imdbID": id}, nil
	}
	return testRecord(id), nil
}

func testRecord(id string) omdb.Record {
	return omdb.Record{
		"Title":    "Movie " + id,
		"Year":     "1999",
		"Released": "31 Mar 1999",
		"Genre":    "Action, Sci-Fi",
		"Actors":   "Keanu Reeves",
		"Plot":     "A hacker learns the truth.",
		"Poster":   movie.NotAvailable,
		"imdbID":   id,
		"Ratings": []any{
			map[string]any{"Source": "Rotten Tomatoes", "Value": "83%"},
		},
	}
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("tt%07d", i+1)
	}
	return ids
}

func newTestAggregator(t *testing.T, catalog omdb.Catalog, opts Options) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(catalog, opts, zerolog.Nop())
	require.NoError(t, err)
	return agg
}

func movieIDs(movies []movie.Movie) []string {
	ids := make([]string, len(movies))
	for i, m := range movies {
		ids[i] = m.IMDbID
	}
	return ids
}

func TestSearchRejectsInvalidTitle(t *testing.T) {
	catalog := &mockCatalog{ids: makeIDs(3)}
	agg := newTestAggregator(t, catalog, Options{})

	for _, title := range []string{"", "   ", "\t\n"} {
		for _, n := range []int{1, 5, 0, -1, 1000} {
			_, err := agg.Search(context.Background(), title, n)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			var argErr *ArgumentError
			require.True(t, errors.As(err, &argErr))
			assert.Equal(t, "title", argErr.Name)
		}
	}

	assert.Zero(t, catalog.searchCalls.Load(), "validation must happen before any catalog call")
}

func TestSearchRejectsInvalidMaxResults(t *testing.T) {
	catalog := &mockCatalog{ids: makeIDs(3)}
	agg := newTestAggregator(t, catalog, Options{MaxResultsCap: 20})

	for _, n := range []int{0, -1, 21, 100} {
		_, err := agg.Search(context.Background(), "Matrix", n)
		require.Error(t, err, n)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Contains(t, err.Error(), "between 1 and 20")
	}

	assert.Zero(t, catalog.searchCalls.Load())

	for _, n := range []int{1, 20} {
		_, err := agg.Search(context.Background(), "Matrix", n)
		assert.NoError(t, err, n)
	}
}

func TestSearchEmptyCatalogResult(t *testing.T) {
	catalog := &mockCatalog{}
	agg := newTestAggregator(t, catalog, Options{})

	movies, err := agg.Search(context.Background(), "zzzzzz", 10)
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
	assert.Zero(t, catalog.fetchCalls.Load())
}

func TestSearchMatrixScenario(t *testing.T) {
	ids := makeIDs(5)
	catalog := &mockCatalog{ids: ids}
	agg := newTestAggregator(t, catalog, Options{})

	movies, err := agg.Search(context.Background(), "Matrix", 5)
	require.NoError(t, err)
	require.Len(t, movies, 5)
	assert.ElementsMatch(t, ids, movieIDs(movies))
	for _, m := range movies {
		assert.NotEqual(t, movie.NotAvailable, m.IMDbID)
		assert.Equal(t, "83%", m.RottenTomatoes)
	}

	assert.Equal(t, "Matrix", catalog.lastTitle)
	assert.Equal(t, 5, catalog.lastLimit)
}

func TestSearchResultBoundedByMaxResults(t *testing.T) {
	catalog := &mockCatalog{ids: makeIDs(40)}
	agg := newTestAggregator(t, catalog, Options{})

	for _, n := range []int{1, 7, 40, 100} {
		movies, err := agg.Search(context.Background(), "Star", n)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(movies), n)
	}
}

func TestSearchDropsFailedFetches(t *testing.T) {
	ids := makeIDs(10)
	catalog := &mockCatalog{
		ids:       ids,
		failFetch: map[string]bool{ids[2]: true},
		malformed: map[string]bool{ids[7]: true},
	}
	agg := newTestAggregator(t, catalog, Options{})

	result, err := agg.SearchWithReport(context.Background(), "Matrix", 10)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Requested)
	assert.Len(t, result.Movies, 8)
	assert.NotContains(t, movieIDs(result.Movies), ids[2])
	assert.NotContains(t, movieIDs(result.Movies), ids[7])

	require.Len(t, result.Failed, 2)
	assert.Equal(t, ids[2], result.Failed[0].ID)
	assert.Equal(t, StageFetch, result.Failed[0].Stage)
	assert.ErrorIs(t, result.Failed[0], omdb.ErrNotFound)
	assert.Equal(t, ids[7], result.Failed[1].ID)
	assert.Equal(t, StageParse, result.Failed[1].Stage)
	assert.ErrorIs(t, result.Failed[1], movie.ErrMalformedRecord)

	// Every launched task was awaited, including the failed ones.
	assert.Equal(t, int32(10), catalog.fetchCalls.Load())
}

func TestSearchAllFetchesFail(t *testing.T) {
	ids := makeIDs(3)
	fail := map[string]bool{}
	for _, id := range ids {
		fail[id] = true
	}
	agg := newTestAggregator(t, &mockCatalog{ids: ids, failFetch: fail}, Options{})

	movies, err := agg.Search(context.Background(), "Matrix", 3)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestSearchFailurePropagates(t *testing.T) {
	upstream := errors.New("connection refused")
	catalog := &mockCatalog{searchErr: upstream}
	agg := newTestAggregator(t, catalog, Options{})

	_, err := agg.Search(context.Background(), "Matrix", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.NotErrorIs(t, err, ErrInvalidArgument)

	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, "Matrix", searchErr.Title)
	assert.Zero(t, catalog.fetchCalls.Load())
}

// Results come back in catalog order even when fetches complete in reverse.
func TestSearchPreservesCatalogOrder(t *testing.T) {
	ids := makeIDs(8)
	catalog := &mockCatalog{
		ids: ids,
		delay: func(id string) time.Duration {
			for i, candidate := range ids {
				if candidate == id {
					return time.Duration(len(ids)-i) * 5 * time.Millisecond
				}
			}
			return 0
		},
	}
	agg := newTestAggregator(t, catalog, Options{Concurrency: len(ids)})

	movies, err := agg.Search(context.Background(), "Matrix", len(ids))
	require.NoError(t, err)
	assert.Equal(t, ids, movieIDs(movies))
}

func TestSearchHonoursConcurrencyLimit(t *testing.T) {
	catalog := &mockCatalog{
		ids:   makeIDs(12),
		delay: func(string) time.Duration { return 10 * time.Millisecond },
	}
	agg := newTestAggregator(t, catalog, Options{Concurrency: 3})

	movies, err := agg.Search(context.Background(), "Matrix", 12)
	require.NoError(t, err)
	assert.Len(t, movies, 12)
	assert.LessOrEqual(t, catalog.maxInFlight.Load(), int32(3))
	assert.Greater(t, catalog.maxInFlight.Load(), int32(1))
}

func TestSearchTaskTimeoutDropsSlowFetch(t *testing.T) {
	ids := makeIDs(4)
	catalog := &mockCatalog{
		ids: ids,
		delay: func(id string) time.Duration {
			if id == ids[1] {
				return time.Minute
			}
			return 0
		},
	}
	agg := newTestAggregator(t, catalog, Options{TaskTimeout: 50 * time.Millisecond})

	start := time.Now()
	result, err := agg.SearchWithReport(context.Background(), "Matrix", 4)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, []string{ids[0], ids[2], ids[3]}, movieIDs(result.Movies))
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0], context.DeadlineExceeded)
}

func TestSearchCancelledContext(t *testing.T) {
	catalog := &mockCatalog{
		ids:   makeIDs(3),
		delay: func(string) time.Duration { return time.Minute },
	}
	agg := newTestAggregator(t, catalog, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := agg.Search(ctx, "Matrix", 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(3), catalog.fetchCalls.Load())
}

func TestNewAggregator(t *testing.T) {
	tests := []struct {
		name    string
		catalog omdb.Catalog
		opts    Options
		wantCap int
		wantErr string
	}{
		{name: "defaults", catalog: &mockCatalog{}, wantCap: DefaultMaxResultsCap},
		{name: "custom cap", catalog: &mockCatalog{}, opts: Options{MaxResultsCap: 25}, wantCap: 25},
		{name: "nil catalog", wantErr: "catalog is required"},
		{name: "negative cap", catalog: &mockCatalog{}, opts: Options{MaxResultsCap: -1}, wantErr: "max results cap"},
		{name: "negative concurrency", catalog: &mockCatalog{}, opts: Options{Concurrency: -2}, wantErr: "concurrency"},
		{name: "negative timeout", catalog: &mockCatalog{}, opts: Options{TaskTimeout: -time.Second}, wantErr: "task timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := NewAggregator(tt.catalog, tt.opts, zerolog.Nop())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCap, agg.MaxResultsCap())
		})
	}
}
