package movie

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrixJSON = `{
	"Title": "The Matrix",
	"Year": "1999",
	"Rated": "R",
	"Released": "31 Mar 1999",
	"Genre": "Action, Sci-Fi",
	"Actors": "Keanu Reeves, Laurence Fishburne, Carrie-Anne Moss",
	"Plot": "When a beautiful stranger leads computer hacker Neo to a forbidding underworld...",
	"Poster": "https://m.media-amazon.com/images/M/matrix.jpg",
	"Ratings": [
		{"Source": "Internet Movie Database", "Value": "8.7/10"},
		{"Source": "Rotten Tomatoes", "Value": "83%"},
		{"Source": "Metacritic", "Value": "73/100"}
	],
	"imdbID": "tt0133093",
	"Type": "movie",
	"Response": "True"
}`

func record(t *testing.T) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(matrixJSON), &rec))
	return rec
}

func TestParse(t *testing.T) {
	m, err := Parse(record(t))
	require.NoError(t, err)

	assert.Equal(t, Movie{
		Title:          "The Matrix",
		Year:           "1999",
		Released:       "31 Mar 1999",
		Genre:          "Action, Sci-Fi",
		Actors:         "Keanu Reeves, Laurence Fishburne, Carrie-Anne Moss",
		Plot:           "When a beautiful stranger leads computer hacker Neo to a forbidding underworld...",
		Poster:         "https://m.media-amazon.com/images/M/matrix.jpg",
		IMDbID:         "tt0133093",
		RottenTomatoes: "83%",
	}, m)
}

func TestParseCriticRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []any
		want    string
	}{
		{
			name: "last match wins",
			ratings: []any{
				map[string]any{"Source": "Rotten Tomatoes", "Value": "70%"},
				map[string]any{"Source": "Metacritic", "Value": "60/100"},
				map[string]any{"Source": "Rotten Tomatoes", "Value": "85%"},
			},
			want: "85%",
		},
		{
			name: "no critic source",
			ratings: []any{
				map[string]any{"Source": "Internet Movie Database", "Value": "7.1/10"},
			},
			want: NotAvailable,
		},
		{
			name:    "empty list",
			ratings: []any{},
			want:    NotAvailable,
		},
		{
			name: "source match is exact",
			ratings: []any{
				map[string]any{"Source": "rotten tomatoes", "Value": "99%"},
			},
			want: NotAvailable,
		},
		{
			name: "non-critic entries need no value",
			ratings: []any{
				map[string]any{"Source": "Metacritic"},
				map[string]any{"Source": "Rotten Tomatoes", "Value": "91%"},
			},
			want: "91%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(t)
			rec["Ratings"] = tt.ratings

			m, err := Parse(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.RottenTomatoes)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{"missing title", func(r map[string]any) { delete(r, "Title") }, "Title"},
		{"missing year", func(r map[string]any) { delete(r, "Year") }, "Year"},
		{"missing released", func(r map[string]any) { delete(r, "Released") }, "Released"},
		{"missing genre", func(r map[string]any) { delete(r, "Genre") }, "Genre"},
		{"missing actors", func(r map[string]any) { delete(r, "Actors") }, "Actors"},
		{"missing plot", func(r map[string]any) { delete(r, "Plot") }, "Plot"},
		{"missing poster", func(r map[string]any) { delete(r, "Poster") }, "Poster"},
		{"missing id", func(r map[string]any) { delete(r, "imdbID") }, "imdbID"},
		{"missing ratings", func(r map[string]any) { delete(r, "Ratings") }, "Ratings"},
		{"numeric year", func(r map[string]any) { r["Year"] = 1999.0 }, "Year"},
		{"ratings not a list", func(r map[string]any) { r["Ratings"] = "83%" }, "Ratings"},
		{"rating not an object", func(r map[string]any) { r["Ratings"] = []any{"83%"} }, "Ratings[0]"},
		{
			"critic rating without value",
			func(r map[string]any) { r["Ratings"] = []any{map[string]any{"Source": "Rotten Tomatoes"}} },
			"Ratings[0].Value",
		},
		{
			"rating without source",
			func(r map[string]any) { r["Ratings"] = []any{map[string]any{"Value": "1%"}} },
			"Ratings[0].Source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(t)
			tt.mutate(rec)

			_, err := Parse(rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantField, pe.Field)
		})
	}
}

func TestParseNilRecord(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseJSON(t *testing.T) {
	m, err := ParseJSON([]byte(matrixJSON))
	require.NoError(t, err)
	assert.Equal(t, "tt0133093", m.IMDbID)

	_, err = ParseJSON([]byte(`{"Title":`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestRoundTrip(t *testing.T) {
	tests := []Movie{
		mustParse(t, record(t)),
		{
			Title:          "Arrested Development",
			Year:           "2003–2019",
			Released:       "02 Nov 2003",
			Genre:          "Comedy",
			Actors:         "Jason Bateman, Portia de Rossi",
			Plot:           "Level-headed son Michael Bluth takes over family affairs.",
			Poster:         NotAvailable,
			IMDbID:         "tt0367279",
			RottenTomatoes: NotAvailable,
		},
	}

	for _, want := range tests {
		t.Run(want.IMDbID, func(t *testing.T) {
			got, err := Parse(want.Record())
			require.NoError(t, err)
			assert.Equal(t, want, got)

			// The record must also survive a JSON encode/decode cycle.
			data, err := json.Marshal(want.Record())
			require.NoError(t, err)
			got, err = ParseJSON(data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func mustParse(t *testing.T, rec map[string]any) Movie {
	t.Helper()
	m, err := Parse(rec)
	require.NoError(t, err)
	return m
}
