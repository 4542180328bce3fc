package movie

import (
	"strconv"
	"strings"
)

// NotAvailable is the placeholder OMDb uses for absent data. It is kept as-is.
const NotAvailable = "N/A"

// CriticSource is the rating source label whose value becomes the critic rating
const CriticSource = "Rotten Tomatoes"

// Movie is a fully populated catalog entry. It is a value type and is never
// modified after Parse returns it.
type Movie struct {
	Title          string `json:"title"`
	Year           string `json:"year"`
	Released       string `json:"released"`
	Genre          string `json:"genre"`
	Actors         string `json:"actors"`
	Plot           string `json:"plot"`
	Poster         string `json:"poster"`
	IMDbID         string `json:"imdbId"`
	RottenTomatoes string `json:"rottenTomatoes"`
}

// Genres splits the comma-joined genre field
func (m Movie) Genres() []string {
	return splitList(m.Genre)
}

// Cast splits the comma-joined actors field
func (m Movie) Cast() []string {
	return splitList(m.Actors)
}

// HasPoster reports whether the catalog supplied a poster URL
func (m Movie) HasPoster() bool {
	return m.Poster != "" && m.Poster != NotAvailable
}

// CriticScore parses the critic rating ("85%") into an integer percentage.
// The second return value is false when the movie has no critic rating.
func (m Movie) CriticScore() (int, bool) {
	value := strings.TrimSuffix(strings.TrimSpace(m.RottenTomatoes), "%")
	if value == "" || value == NotAvailable {
		return 0, false
	}
	score, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return score, true
}

// ReleaseYear returns the first four-digit year of the display year, or 0.
// Series spans like "2004–2006" yield 2004.
func (m Movie) ReleaseYear() int {
	runes := []rune(m.Year)
	for i := 0; i+4 <= len(runes); i++ {
		year, err := strconv.Atoi(string(runes[i : i+4]))
		if err == nil && year >= 1800 {
			return year
		}
	}
	return 0
}

// Record re-serializes the movie into the catalog's detail schema so that
// Parse(m.Record()) yields m again.
func (m Movie) Record() map[string]any {
	ratings := []any{}
	if m.RottenTomatoes != NotAvailable {
		ratings = append(ratings, map[string]any{
			fieldSource: CriticSource,
			fieldValue:  m.RottenTomatoes,
		})
	}

	return map[string]any{
		fieldTitle:    m.Title,
		fieldYear:     m.Year,
		fieldReleased: m.Released,
		fieldGenre:    m.Genre,
		fieldActors:   m.Actors,
		fieldPlot:     m.Plot,
		fieldPoster:   m.Poster,
		fieldIMDbID:   m.IMDbID,
		fieldRatings:  ratings,
	}
}

func splitList(s string) []string {
	if s == "" || s == NotAvailable {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
