package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviescout/movie"
	"github.com/s0up4200/moviescout/omdb"
)

const (
	// DefaultMaxResultsCap is the upper bound for maxResults when none is configured
	DefaultMaxResultsCap = 100
	// DefaultConcurrency is the number of detail fetches in flight per request
	DefaultConcurrency = 10
)

// Options tunes an Aggregator. Zero values select the defaults.
type Options struct {
	MaxResultsCap int
	Concurrency   int
	// TaskTimeout bounds each detail fetch. Zero disables the bound.
	TaskTimeout time.Duration
}

// withDefaults fills unset options
func (o Options) withDefaults() Options {
	if o.MaxResultsCap == 0 {
		o.MaxResultsCap = DefaultMaxResultsCap
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

func (o Options) validate() error {
	if o.MaxResultsCap < 1 {
		return fmt.Errorf("max results cap must be at least 1, got %d", o.MaxResultsCap)
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", o.Concurrency)
	}
	if o.TaskTimeout < 0 {
		return fmt.Errorf("task timeout must not be negative, got %s", o.TaskTimeout)
	}
	return nil
}

// Result contains the outcome of one search request
type Result struct {
	// Requested is the number of identifiers the catalog returned
	Requested int
	// Movies holds the successfully parsed movies in catalog order
	Movies []movie.Movie
	// Failed lists the dropped tasks in catalog order
	Failed []*FetchError
}

// Aggregator resolves a title to movies: one catalog search, then one
// detail fetch per identifier, run concurrently and joined.
type Aggregator struct {
	catalog omdb.Catalog
	opts    Options
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator over the given catalog
func NewAggregator(catalog omdb.Catalog, opts Options, logger zerolog.Logger) (*Aggregator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}

	logger.Info().
		Int("max_results_cap", opts.MaxResultsCap).
		Int("concurrency", opts.Concurrency).
		Dur("task_timeout", opts.TaskTimeout).
		Msg("Search aggregator ready")

	return &Aggregator{
		catalog: catalog,
		opts:    opts,
		logger:  logger,
	}, nil
}

// MaxResultsCap returns the effective upper bound for maxResults
func (a *Aggregator) MaxResultsCap() int {
	return a.opts.MaxResultsCap
}

// Search returns up to maxResults movies matching title. Detail fetches that
// fail are logged and left out; only invalid arguments and a failed title
// search are returned as errors.
func (a *Aggregator) Search(ctx context.Context, title string, maxResults int) ([]movie.Movie, error) {
	result, err := a.SearchWithReport(ctx, title, maxResults)
	if err != nil {
		return nil, err
	}
	return result.Movies, nil
}

// SearchWithReport behaves like Search and also reports the dropped tasks
func (a *Aggregator) SearchWithReport(ctx context.Context, title string, maxResults int) (*Result, error) {
	if err := a.validate(title, maxResults); err != nil {
		return nil, err
	}

	ids, err := a.catalog.Search(ctx, title, maxResults)
	if err != nil {
		return nil, &SearchError{Title: title, Err: err}
	}

	result := &Result{
		Requested: len(ids),
		Movies:    make([]movie.Movie, 0, len(ids)),
	}
	if len(ids) == 0 {
		a.logger.Debug().Str("title", title).Msg("No catalog matches")
		return result, nil
	}

	outcomes := a.fetchAll(ctx, ids)

	for _, o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, o.err)
			continue
		}
		result.Movies = append(result.Movies, o.movie)
	}

	a.logger.Debug().
		Str("title", title).
		Int("requested", result.Requested).
		Int("found", len(result.Movies)).
		Int("dropped", len(result.Failed)).
		Msg("Search completed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (a *Aggregator) validate(title string, maxResults int) error {
	if strings.TrimSpace(title) == "" {
		return &ArgumentError{Name: "title", Reason: "must not be empty"}
	}
	if maxResults < 1 || maxResults > a.opts.MaxResultsCap {
		return &ArgumentError{
			Name:   "maxResults",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", a.opts.MaxResultsCap, maxResults),
		}
	}
	return nil
}

// outcome is the result of one fan-out task: exactly one of movie or err is set
type outcome struct {
	movie movie.Movie
	err   *FetchError
}

// fetchAll runs one task per identifier and waits for all of them.
// Outcomes are indexed by the identifier's position.
func (a *Aggregator) fetchAll(ctx context.Context, ids []string) []outcome {
	outcomes := make([]outcome, len(ids))
	workers := min(a.opts.Concurrency, len(ids))

	// Slots are handed out so each log line names the worker running the task
	slots := make(chan int, workers)
	for i := range workers {
		slots <- i
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, id := range ids {
		g.Go(func() error {
			slot := <-slots
			defer func() { slots <- slot }()

			a.logger.Debug().
				Int("worker", slot).
				Str("imdb_id", id).
				Msg("Fetching movie details")

			m, err := a.fetchOne(ctx, id)
			if err != nil {
				a.logger.Warn().
					Err(err.Err).
					Int("worker", slot).
					Str("imdb_id", id).
					Str("stage", string(err.Stage)).
					Msg("Dropping movie from results")
				outcomes[i] = outcome{err: err}
				return nil
			}

			outcomes[i] = outcome{movie: m}
			return nil
		})
	}

	// Tasks never return errors; failures live in outcomes
	_ = g.Wait()

	return outcomes
}

func (a *Aggregator) fetchOne(ctx context.Context, id string) (movie.Movie, *FetchError) {
	if a.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.TaskTimeout)
		defer cancel()
	}

	rec, err := a.catalog.GetByID(ctx, id)
	if err != nil {
		return movie.Movie{}, &FetchError{ID: id, Stage: StageFetch, Err: err}
	}

	m, err := movie.Parse(rec)
	if err != nil {
		return movie.Movie{}, &FetchError{ID: id, Stage: StageParse, Err: err}
	}

	return m, nil
}
