package gateway

import (
	"errors"

	"github.com/sniff-api/sniff-server/internal/playstore"
)

// UnavailableReason explains why a configured channel produced no details.
// The distinction matters operationally: not_on_track is normal, the other
// two indicate something an operator may need to act on.
type UnavailableReason string

const (
	// ReasonNotOnTrack: the app is simply not published on this channel.
	ReasonNotOnTrack UnavailableReason = "not_on_track"
	// ReasonCredentialError: upstream rejected this channel's session token.
	ReasonCredentialError UnavailableReason = "credential_error"
	// ReasonTransientError: network or protocol failure, likely to recover.
	ReasonTransientError UnavailableReason = "transient_error"
)

// AvailabilityResult is the outcome of one (package, channel) lookup. Exactly
// one of Details (when Available) or Reason (when not) is meaningful.
type AvailabilityResult struct {
	Available bool
	Details   *playstore.AppDetails
	Reason    UnavailableReason
}

// classifyLookup maps an upstream lookup error onto the availability
// trichotomy. nil err never reaches here.
func classifyLookup(err error) UnavailableReason {
	switch {
	case errors.Is(err, playstore.ErrAppNotFound):
		return ReasonNotOnTrack
	case errors.Is(err, playstore.ErrUnauthorized):
		return ReasonCredentialError
	default:
		return ReasonTransientError
	}
}
