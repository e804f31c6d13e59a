package gateway

import (
	"context"
	"fmt"

	"github.com/sniff-api/sniff-server/internal/playstore"
)

// Aggregation is the multi-channel details response: per-channel metadata for
// every channel that produced an Available result, plus the available set in
// canonical order (the same order backs the X-Available-Channels header).
type Aggregation struct {
	ByChannel map[Channel]*playstore.AppDetails
	Available []Channel
}

// Aggregate resolves the package across every configured channel and collects
// the available ones. When no channel carries the package the whole operation
// fails with ErrNotFound; per-channel degradation (stale credentials, network
// hiccups on one track) never fails the request as long as another channel
// answered.
func (s *Service) Aggregate(ctx context.Context, packageName string) (*Aggregation, error) {
	resolved := s.Resolve(ctx, packageName)

	agg := &Aggregation{ByChannel: make(map[Channel]*playstore.AppDetails)}
	for _, ch := range Channels() {
		r, ok := resolved[ch]
		if !ok || !r.Available {
			continue
		}
		agg.ByChannel[ch] = r.Details
		agg.Available = append(agg.Available, ch)
	}

	if len(agg.Available) == 0 {
		return nil, fmt.Errorf("package %s: %w", packageName, ErrNotFound)
	}
	return agg, nil
}

// DetailsFor returns the metadata for one specific channel. Unlike Aggregate,
// a degraded channel is a failure here: the caller asked for this track and
// nothing else can answer for it.
func (s *Service) DetailsFor(ctx context.Context, packageName string, ch Channel) (*playstore.AppDetails, error) {
	details, err := s.details(ctx, ch, packageName)
	if err != nil {
		switch classifyLookup(err) {
		case ReasonNotOnTrack:
			return nil, fmt.Errorf("package %s on %s: %w", packageName, ch, ErrChannelUnavailable)
		case ReasonCredentialError:
			return nil, fmt.Errorf("package %s on %s (credentials rejected): %w", packageName, ch, ErrChannelUnavailable)
		default:
			return nil, fmt.Errorf("package %s on %s: %w", packageName, ch, err)
		}
	}
	return details, nil
}
