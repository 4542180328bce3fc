package search

import (
	"fmt"
	"strings"

	"github.com/s0up4200/moviescout/movie"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowDetails bool
	// Owned marks IMDb ids already present in the media library
	Owned map[string]bool
}

// ConsoleFormatter provides console output formatting for search results
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatMovieList formats a list of movies for console display
func (f *ConsoleFormatter) FormatMovieList(movies []movie.Movie, options FormatOptions) string {
	if len(movies) == 0 {
		return "No movies found\n"
	}

	var sb strings.Builder

	sb.WriteString("\nMovie")
	if len(movies) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(movies))

	for i, m := range movies {
		isLast := i == len(movies)-1
		f.formatMovie(&sb, m, isLast, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) formatMovie(sb *strings.Builder, m movie.Movie, isLast bool, options FormatOptions) {
	prefix := "├"
	indent := "│   "
	if isLast {
		prefix = "╰"
		indent = "    "
	}

	fmt.Fprintf(sb, "%s── %s (%s)", prefix, m.Title, m.Year)
	if options.Owned[m.IMDbID] {
		sb.WriteString(" [IN LIBRARY]")
	}
	sb.WriteString("\n")

	fmt.Fprintf(sb, "%sIMDb: %s | Rotten Tomatoes: %s\n", indent, m.IMDbID, m.RottenTomatoes)

	if !options.ShowDetails {
		return
	}

	if m.Genre != "" && m.Genre != movie.NotAvailable {
		fmt.Fprintf(sb, "%sGenre: %s\n", indent, m.Genre)
	}
	if m.Released != "" && m.Released != movie.NotAvailable {
		fmt.Fprintf(sb, "%sReleased: %s\n", indent, m.Released)
	}
	if cast := m.Cast(); len(cast) > 0 {
		fmt.Fprintf(sb, "%sStarring: %s\n", indent, strings.Join(cast, ", "))
	}
	if m.Plot != "" && m.Plot != movie.NotAvailable {
		fmt.Fprintf(sb, "%sPlot: %s\n", indent, m.Plot)
	}
	if m.HasPoster() {
		fmt.Fprintf(sb, "%sPoster: %s\n", indent, m.Poster)
	}
}

// FormatFailures summarizes dropped fetches
func (f *ConsoleFormatter) FormatFailures(failed []*FetchError) string {
	if len(failed) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Skipped %d result", len(failed))
	if len(failed) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(":\n")
	for _, fe := range failed {
		fmt.Fprintf(&sb, "  • %s (%s): %v\n", fe.ID, fe.Stage, fe.Err)
	}
	return sb.String()
}
