// Package gateway implements the core resolution pipeline between the HTTP
// surface and the upstream store clients: which release channels carry a
// package, the per-channel metadata aggregate, the download manifest for an
// exact version, and the streaming relay of the binary itself.
package gateway

import "fmt"

// Channel is one of the three release tracks an app can publish to.
type Channel string

const (
	ChannelStable Channel = "stable"
	ChannelBeta   Channel = "beta"
	ChannelAlpha  Channel = "alpha"
)

// Channels returns every known channel in canonical order. All iteration and
// response ordering in this package derives from this slice, so results are
// deterministic regardless of which upstream call finishes first.
func Channels() []Channel {
	return []Channel{ChannelStable, ChannelBeta, ChannelAlpha}
}

// ParseChannel maps a caller-supplied channel segment onto a known Channel.
// Matching is exact and lowercase; anything else is the caller's error.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelStable, ChannelBeta, ChannelAlpha:
		return Channel(s), nil
	default:
		return "", fmt.Errorf("%q: %w (expected stable, beta or alpha)", s, ErrUnknownChannel)
	}
}

// String implements fmt.Stringer.
func (c Channel) String() string { return string(c) }

// Display is the capitalized form used in suggested filenames.
func (c Channel) Display() string {
	switch c {
	case ChannelStable:
		return "Stable"
	case ChannelBeta:
		return "Beta"
	case ChannelAlpha:
		return "Alpha"
	default:
		return string(c)
	}
}
