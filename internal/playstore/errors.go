package playstore

import "errors"

// Sentinel errors returned (wrapped) by Client implementations. Callers
// classify with errors.Is; the resolver maps them onto the per-channel
// availability trichotomy.
var (
	// ErrAppNotFound means the package is not published on the track this
	// client's account is enrolled in. It is an expected condition for
	// beta/alpha lookups, not an operational fault.
	ErrAppNotFound = errors.New("app not found on this track")

	// ErrUnauthorized means the session token was rejected (expired AAS
	// token or revoked account). The affected channel degrades to unavailable;
	// the error is surfaced distinctly so operators see it in logs/metrics.
	ErrUnauthorized = errors.New("upstream rejected credentials")

	// ErrVersionNotFound means upstream rejected the exact version code the
	// caller requested. The gateway never substitutes another version.
	ErrVersionNotFound = errors.New("requested version code not available")
)
