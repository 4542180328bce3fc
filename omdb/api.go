package omdb

import (
	"context"
)

// Catalog defines the catalog operations used by the search service.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Search returns at most limit identifiers in the catalog's relevance order.
	// No matches yields an empty slice and a nil error.
	Search(ctx context.Context, title string, limit int) ([]string, error)

	// GetByID returns the raw detail record for one identifier
	GetByID(ctx context.Context, id string) (Record, error)
}
