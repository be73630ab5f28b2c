package scan

import (
	"context"
	"errors"
	"image"

	"golang.org/x/sync/semaphore"

	"github.com/qrsnap/qrsnap"
)

// ErrBusy is returned by Stream.Decode while an earlier frame is still
// being decoded. The frame is dropped.
var ErrBusy = errors.New("scan: stream busy")

// Stream allows one in-flight decode at a time for a sequence of frames,
// such as a camera feed. It is safe for concurrent use.
type Stream struct {
	backend Backend
	sem     *semaphore.Weighted
}

// NewStream creates a Stream decoding with backend.
func NewStream(backend Backend) *Stream {
	return &Stream{backend: backend, sem: semaphore.NewWeighted(1)}
}

// Decode decodes frame unless another frame is in flight, in which case it
// returns ErrBusy without waiting.
func (s *Stream) Decode(ctx context.Context, frame image.Image) (*qrsnap.Result, error) {
	if !s.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer s.sem.Release(1)
	return s.backend.Decode(ctx, frame)
}
