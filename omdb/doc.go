// Package omdb provides a client for the OMDb movie catalog API.
//
// The package exposes the two catalog operations the search service needs:
// a paginated title search that resolves IMDb identifiers, and a detail
// lookup that returns the raw record for one identifier. Records are returned
// unvalidated; turning them into movies is the job of the movie package.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := omdb.NewClient(
//		"https://www.omdbapi.com",
//		"your-api-key",
//		logger,
//		omdb.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ids, err := client.Search(ctx, "Matrix", 5)
//	rec, err := client.GetByID(ctx, ids[0])
//
// # Error Handling
//
// A search without matches is not an error; it returns an empty slice.
// Detail lookups for unknown identifiers return an error wrapping ErrNotFound.
// HTTP and API-level failures are reported as *APIError:
//
//	var apiErr *omdb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// Handle bad API key
//	}
//
// The client holds no per-request state and is safe for concurrent use.
package omdb
