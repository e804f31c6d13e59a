package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sniff-api/sniff-server/internal/playstore"
	"github.com/sniff-api/sniff-server/internal/telemetry"
)

// Service owns one upstream client per configured channel and implements the
// resolution pipeline on top of them. The client map is fixed at construction
// and never mutated, so Service is safe for concurrent use without locking.
type Service struct {
	clients map[Channel]playstore.Client
	brand   string
	logger  *slog.Logger
}

// NewService creates a Service. Only channels present in clients are
// considered configured; everything else is omitted from results entirely.
func NewService(clients map[Channel]playstore.Client, brand string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		clients: clients,
		brand:   brand,
		logger:  logger,
	}
}

// Configured returns the configured channels in canonical order.
func (s *Service) Configured() []Channel {
	var out []Channel
	for _, ch := range Channels() {
		if _, ok := s.clients[ch]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// details performs one instrumented detail lookup on one channel.
func (s *Service) details(ctx context.Context, ch Channel, packageName string) (*playstore.AppDetails, error) {
	client, ok := s.clients[ch]
	if !ok {
		return nil, fmt.Errorf("channel %s not configured: %w", ch, ErrChannelUnavailable)
	}

	d, err := client.Details(ctx, packageName)
	telemetry.UpstreamRequestsTotal.WithLabelValues(ch.String(), "details", upstreamOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return d, nil
}

// delivery performs one instrumented delivery call on one channel.
func (s *Service) delivery(ctx context.Context, ch Channel, packageName string, versionCode int) (*playstore.DeliveryData, error) {
	client, ok := s.clients[ch]
	if !ok {
		return nil, fmt.Errorf("channel %s not configured: %w", ch, ErrChannelUnavailable)
	}

	d, err := client.Delivery(ctx, packageName, versionCode)
	telemetry.UpstreamRequestsTotal.WithLabelValues(ch.String(), "delivery", upstreamOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return d, nil
}

func upstreamOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, playstore.ErrAppNotFound):
		return "not_found"
	case errors.Is(err, playstore.ErrUnauthorized):
		return "auth_error"
	case errors.Is(err, playstore.ErrVersionNotFound):
		return "version_not_found"
	default:
		return "error"
	}
}
