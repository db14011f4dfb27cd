package domain

import "context"

// PageFetcher retrieves the raw body of a web page.
// A non-nil error means no usable body was obtained.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns a search results page into product records.
// Implementations never return nil and never panic.
type Extractor interface {
	Extract(body []byte) []ProductRecord
}

// Source is one supported site: how to search it and how to read its results
type Source interface {
	Extractor
	Platform() Platform
	SearchURL(query string) string
}
