package filter

import (
	"strings"

	"github.com/s0up4200/moviescout/movie"
)

// matchAll is used for empty expressions
type matchAll struct{}

func (matchAll) Evaluate(Candidate) bool { return true }
func (matchAll) Expression() string      { return "" }

var defaultCompiler = NewExprCompiler(WithCache(100))

// ParseAndCreateFilter compiles an expression. An empty expression matches everything.
func ParseAndCreateFilter(expression string) (CompiledFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return matchAll{}, nil
	}
	return defaultCompiler.Compile(expression)
}

// Apply returns the movies matching f, keeping their order.
// owned marks IMDb ids already in the media library and may be nil.
func Apply(f Filter, movies []movie.Movie, owned map[string]bool) []movie.Movie {
	if f == nil {
		return movies
	}

	matches := make([]movie.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Evaluate(Candidate{Movie: m, InLibrary: owned[m.IMDbID]}) {
			matches = append(matches, m)
		}
	}
	return matches
}
