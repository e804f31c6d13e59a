package gateway

import "errors"

// Failure taxonomy surfaced to the HTTP layer. Handlers classify with
// errors.Is and map each sentinel onto a status code; anything unclassified is
// a transient upstream problem and becomes a generic server error.
var (
	// ErrUnknownChannel means the caller named a channel that does not exist.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrNotFound means the package produced no Available result on any
	// configured channel.
	ErrNotFound = errors.New("app not found on any configured channel")

	// ErrChannelUnavailable means the package exists but the requested
	// channel is unconfigured, not carrying the package, or degraded.
	ErrChannelUnavailable = errors.New("channel unavailable for this app")

	// ErrVersionNotFound means upstream rejected the exact requested version
	// code.
	ErrVersionNotFound = errors.New("version not available")

	// ErrUpstreamFetch means the artifact fetch failed before any payload
	// byte reached the caller, so a clean error response is still possible.
	ErrUpstreamFetch = errors.New("upstream artifact fetch failed")
)
