package gateway

import (
	"time"

	"github.com/sniff-api/sniff-server/internal/telemetry"
)

type sessionState int

const (
	sessionPending sessionState = iota
	sessionHeadersSent
	sessionStreaming
	sessionCompleted
	sessionAborted
)

// StreamSession tracks one proxied download through its lifecycle and records
// the stream metrics exactly once when it finishes. Transitions only move
// forward: Pending, HeadersSent, Streaming, then Completed or Aborted.
// Aborted is reachable only from Streaming; before the relay starts every
// failure is still a clean error response, not an abort.
type StreamSession struct {
	channel Channel
	state   sessionState
	start   time.Time
}

// NewStreamSession starts tracking one download on the given channel.
func NewStreamSession(ch Channel) *StreamSession {
	return &StreamSession{channel: ch, start: time.Now()}
}

// HeadersSent marks the point of no return: status and headers are on the
// wire and errors can no longer produce a clean response.
func (ss *StreamSession) HeadersSent() {
	if ss.state == sessionPending {
		ss.state = sessionHeadersSent
	}
}

// Streaming marks the start of the body relay.
func (ss *StreamSession) Streaming() {
	if ss.state == sessionHeadersSent {
		ss.state = sessionStreaming
	}
}

// Complete records a fully relayed download.
func (ss *StreamSession) Complete(bytes int64) {
	if ss.state != sessionStreaming {
		return
	}
	ss.state = sessionCompleted

	telemetry.APKDownloadsTotal.WithLabelValues(ss.channel.String()).Inc()
	telemetry.APKBytesRelayedTotal.Add(float64(bytes))
	telemetry.APKStreamDuration.Observe(time.Since(ss.start).Seconds())
}

// Abort records a truncated relay. Bytes already written stay counted; the
// caller received them even though the transfer failed.
func (ss *StreamSession) Abort(bytes int64) {
	if ss.state != sessionStreaming {
		return
	}
	ss.state = sessionAborted

	telemetry.APKStreamAbortsTotal.WithLabelValues(ss.channel.String()).Inc()
	telemetry.APKBytesRelayedTotal.Add(float64(bytes))
	telemetry.APKStreamDuration.Observe(time.Since(ss.start).Seconds())
}

// Completed reports whether the session finished cleanly.
func (ss *StreamSession) Completed() bool { return ss.state == sessionCompleted }

// Aborted reports whether the session was truncated mid-transfer.
func (ss *StreamSession) Aborted() bool { return ss.state == sessionAborted }
