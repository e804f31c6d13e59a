package gateway

import (
	"context"
	"fmt"
	"io"
)

// relayBufferSize bounds the per-stream copy buffer. Memory per in-flight
// download is this constant, independent of APK size.
const relayBufferSize = 256 * 1024

// Stream is an open binary download: the resolved manifest plus the live
// upstream body. The caller owns Body and must close it. Size is upstream's
// Content-Length, or -1 when upstream did not declare one.
type Stream struct {
	Manifest *Manifest
	Body     io.ReadCloser
	Size     int64
}

// OpenStream resolves the download and opens the upstream connection for the
// main package. Every failure here happens before the first payload byte, so
// the caller can still produce a clean error response; once OpenStream
// returns, any relay failure can only truncate the connection.
func (s *Service) OpenStream(ctx context.Context, packageName string, ch Channel, versionCode int) (*Stream, error) {
	manifest, err := s.ResolveDownload(ctx, packageName, ch, versionCode)
	if err != nil {
		return nil, err
	}

	client, ok := s.clients[ch]
	if !ok {
		return nil, fmt.Errorf("channel %s not configured: %w", ch, ErrChannelUnavailable)
	}

	body, size, err := client.Fetch(ctx, manifest.MainAPKURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	return &Stream{Manifest: manifest, Body: body, Size: size}, nil
}

// Relay copies the stream body to dst through a fixed-size buffer and returns
// the number of payload bytes written. Bytes written before an error are
// already on the wire; the caller cannot unsend them. src is wrapped so an
// io.WriterTo implementation cannot bypass the buffer bound.
func Relay(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, relayBufferSize)
	return io.CopyBuffer(dst, struct{ io.Reader }{src}, buf)
}
