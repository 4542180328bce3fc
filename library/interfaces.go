package library

import (
	"context"

	"golift.io/starr/radarr"
)

// RadarrAPI is the subset of the Radarr API used for ownership lookups
type RadarrAPI interface {
	GetMovieContext(ctx context.Context, params *radarr.GetMovie) ([]*radarr.Movie, error)

	// Health check
	Ping() error
}
