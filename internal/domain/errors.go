package domain

import "errors"

var (
	// ErrInvalidPlatform is returned when the requested platform is not supported
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrUpstreamBlocked is returned when the site answers 403 or 429
	ErrUpstreamBlocked = errors.New("upstream blocked the request")

	// ErrUpstreamStatus is returned for a non-retryable HTTP status from the site
	ErrUpstreamStatus = errors.New("upstream returned an unexpected status")

	// ErrFetchExhausted is returned when every fetch attempt failed
	ErrFetchExhausted = errors.New("all fetch attempts failed")

	// ErrRateLimited is returned when a client exceeds the inbound rate limit
	ErrRateLimited = errors.New("rate limit exceeded")
)
