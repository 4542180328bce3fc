package movie

import (
	"encoding/json"
	"fmt"
)

// Field names of the catalog detail record
const (
	fieldTitle    = "Title"
	fieldYear     = "Year"
	fieldReleased = "Released"
	fieldGenre    = "Genre"
	fieldActors   = "Actors"
	fieldPlot     = "Plot"
	fieldPoster   = "Poster"
	fieldIMDbID   = "imdbID"
	fieldRatings  = "Ratings"
	fieldSource   = "Source"
	fieldValue    = "Value"
)

// Parse converts one raw detail record into a Movie.
//
// Every scalar field is required and must be a string. Ratings must be a list
// of {Source, Value} objects; the last entry whose Source is "Rotten Tomatoes"
// supplies the critic rating, which is "N/A" when no entry matches.
func Parse(rec map[string]any) (Movie, error) {
	if rec == nil {
		return Movie{}, &ParseError{Reason: "record is empty"}
	}

	var (
		m   Movie
		err error
	)
	fields := []struct {
		name string
		dst  *string
	}{
		{fieldTitle, &m.Title},
		{fieldYear, &m.Year},
		{fieldReleased, &m.Released},
		{fieldGenre, &m.Genre},
		{fieldActors, &m.Actors},
		{fieldPlot, &m.Plot},
		{fieldPoster, &m.Poster},
		{fieldIMDbID, &m.IMDbID},
	}
	for _, f := range fields {
		if *f.dst, err = stringField(rec, f.name); err != nil {
			return Movie{}, err
		}
	}

	if m.RottenTomatoes, err = criticRating(rec); err != nil {
		return Movie{}, err
	}

	return m, nil
}

// ParseJSON decodes a JSON detail record and parses it
func ParseJSON(data []byte) (Movie, error) {
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return Movie{}, &ParseError{Reason: "invalid JSON", Err: err}
	}
	return Parse(rec)
}

func stringField(rec map[string]any, name string) (string, error) {
	raw, ok := rec[name]
	if !ok {
		return "", &ParseError{Field: name, Reason: "missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ParseError{Field: name, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	return s, nil
}

// criticRating scans the whole ratings list; a later match overrides an earlier one.
func criticRating(rec map[string]any) (string, error) {
	raw, ok := rec[fieldRatings]
	if !ok {
		return "", &ParseError{Field: fieldRatings, Reason: "missing"}
	}
	ratings, ok := raw.([]any)
	if !ok {
		return "", &ParseError{Field: fieldRatings, Reason: fmt.Sprintf("expected list, got %T", raw)}
	}

	rating := NotAvailable
	for i, item := range ratings {
		entry, ok := item.(map[string]any)
		if !ok {
			return "", &ParseError{
				Field:  fmt.Sprintf("%s[%d]", fieldRatings, i),
				Reason: fmt.Sprintf("expected object, got %T", item),
			}
		}
		source, err := stringField(entry, fieldSource)
		if err != nil {
			return "", ratingError(i, err)
		}
		if source != CriticSource {
			continue
		}
		value, err := stringField(entry, fieldValue)
		if err != nil {
			return "", ratingError(i, err)
		}
		rating = value
	}

	return rating, nil
}

func ratingError(index int, err error) error {
	pe := err.(*ParseError)
	pe.Field = fmt.Sprintf("%s[%d].%s", fieldRatings, index, pe.Field)
	return pe
}
