package omdb

import (
	"strconv"
	"strings"
)

// Record is an unvalidated detail document as returned by the catalog
type Record map[string]any

// ID returns the record's imdbID field, or "" when absent
func (r Record) ID() string {
	id, _ := r["imdbID"].(string)
	return id
}

// SearchResponse represents one page of the title search endpoint
type SearchResponse struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error,omitempty"`
}

// SearchItem is a single title search hit
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// OK reports whether the catalog marked the response as successful
func (sr *SearchResponse) OK() bool {
	return strings.EqualFold(sr.Response, "True")
}

// Total returns the total number of hits across all pages
func (sr *SearchResponse) Total() int {
	n, err := strconv.Atoi(sr.TotalResults)
	if err != nil {
		return 0
	}
	return n
}

// noMatches reports the catalog's "nothing found" failure, which is not an error for searches
func (sr *SearchResponse) noMatches() bool {
	return !sr.OK() && strings.EqualFold(strings.TrimSpace(sr.Error), "Movie not found!")
}
