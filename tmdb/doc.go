// Package tmdb provides a client for The Movie Database v3 API.
//
// The client covers the small surface the browsing service needs: paginated
// movie lists (popular, top rated, upcoming), single movie details, the
// movie genre taxonomy, and poster images.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		"your-api-key",
//		logger,
//		tmdb.WithTimeout(10*time.Second),
//		tmdb.WithLanguage("en-US"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.FetchPage(ctx, catalog.ListPopular, 1)
//
// # Error Handling
//
// Every failure is returned as (or wraps) a *catalog.FetchError, classified
// by kind: transport failure, HTTP status failure, decode failure, empty
// response or invalid parameter. Use catalog.UserMessage to derive a
// human-readable message.
package tmdb
