package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviescout/filter"
	"github.com/s0up4200/moviescout/movie"
	"github.com/s0up4200/moviescout/search"
)

var (
	maxResults  int
	filterExpr  string
	preset      string
	jsonOutput  bool
	showDetails bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <title...>",
	Short: "Search movies by title",
	Long: `Search the OMDb catalog for movies matching a title and show each result
with its IMDb id and Rotten Tomatoes rating.

Examples:
  moviescout search the matrix
  moviescout search -n 25 batman --filter 'CriticScore >= 80'
  moviescout search alien --preset fresh --details`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	searchCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	searchCmd.Flags().BoolVar(&showDetails, "details", false, "show genre, release date, cast and plot")
}

// searchOutput is the JSON form of one result
type searchOutput struct {
	movie.Movie
	InLibrary bool `json:"inLibrary,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	limit := cfg.Search.DefaultResults
	if cmd.Flags().Changed("max-results") {
		limit = maxResults
	}

	resultFilter, err := getFilter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info().Str("title", title).Int("max_results", limit).Msg("Searching movies")

	result, err := aggregator.SearchWithReport(ctx, title, limit)
	if err != nil {
		return err
	}

	owned := lookupOwned(ctx, result.Movies)
	movies := filter.Apply(resultFilter, result.Movies, owned)

	if expr := resultFilter.Expression(); expr != "" {
		logger.Debug().
			Str("filter", expr).
			Int("before", len(result.Movies)).
			Int("after", len(movies)).
			Msg("Applied filter")
	}

	if jsonOutput {
		out := make([]searchOutput, len(movies))
		for i, m := range movies {
			out[i] = searchOutput{Movie: m, InLibrary: owned[m.IMDbID]}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	formatter := search.NewConsoleFormatter()
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMovieList(movies, search.FormatOptions{
		ShowDetails: showDetails,
		Owned:       owned,
	}))
	if failures := formatter.FormatFailures(result.Failed); failures != "" {
		fmt.Fprint(cmd.ErrOrStderr(), failures)
	}

	return nil
}

// lookupOwned marks results already in the Radarr library. A failed lookup
// is logged and the results are shown without marks.
func lookupOwned(ctx context.Context, movies []movie.Movie) map[string]bool {
	if libraryClient == nil || len(movies) == 0 {
		return nil
	}

	ids := make([]string, len(movies))
	for i, m := range movies {
		ids[i] = m.IMDbID
	}

	owned, err := libraryClient.OwnedIMDbIDs(ctx, ids)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to check Radarr library")
		return nil
	}
	return owned
}

// getFilter determines the filter to use.
// Priority: command line filter > preset > default expression.
func getFilter() (filter.CompiledFilter, error) {
	if filterExpr != "" {
		f, err := filter.ParseAndCreateFilter(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		if f, ok := filterManager.GetFilter(preset); ok {
			return f, nil
		}
		available := filterManager.ListFilters()
		if len(available) == 0 {
			return nil, fmt.Errorf("preset '%s' not found in config (no presets defined)", preset)
		}
		return nil, fmt.Errorf("preset '%s' not found in config (available: %s)", preset, strings.Join(available, ", "))
	}

	f, err := filter.ParseAndCreateFilter(cfg.Filter.DefaultExpression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter.default_expression: %w", err)
	}
	return f, nil
}
