package gateway

import (
	"context"
	"log/slog"
	"sync"
)

// Resolve determines which configured channels carry the package. Lookups run
// concurrently, one per channel; each goroutine writes only its own slot, so
// no locking is needed, and the joined result is keyed deterministically.
// Channels with no configured credentials do not appear in the map at all.
func (s *Service) Resolve(ctx context.Context, packageName string) map[Channel]AvailabilityResult {
	configured := s.Configured()
	results := make([]AvailabilityResult, len(configured))

	var wg sync.WaitGroup
	for i, ch := range configured {
		wg.Add(1)
		go func(slot int, ch Channel) {
			defer wg.Done()

			details, err := s.details(ctx, ch, packageName)
			if err != nil {
				reason := classifyLookup(err)
				if reason != ReasonNotOnTrack {
					s.logger.Warn("channel lookup degraded",
						slog.String("package", packageName),
						slog.String("channel", ch.String()),
						slog.String("reason", string(reason)),
						slog.String("error", err.Error()))
				}
				results[slot] = AvailabilityResult{Reason: reason}
				return
			}
			results[slot] = AvailabilityResult{Available: true, Details: details}
		}(i, ch)
	}
	wg.Wait()

	out := make(map[Channel]AvailabilityResult, len(configured))
	for i, ch := range configured {
		out[ch] = results[i]
	}
	return out
}
