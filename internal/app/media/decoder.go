package media

import (
	"context"
	"image"

	"video-search/internal/app/model"
)

// Frame is one decoded video frame in presentation order.
type Frame struct {
	Index       int
	TimestampMs int64
	Image       *image.RGBA
}

// VideoStream yields decoded frames. ReadFrame returns io.EOF after the last frame.
type VideoStream interface {
	Metadata() model.VideoMetadata
	ReadFrame() (Frame, error)
	Close() error
}

// Decoder opens videos and extracts their audio track.
type Decoder interface {
	Open(ctx context.Context, videoPath string) (VideoStream, error)
	ExtractAudio(ctx context.Context, videoPath, wavPath string) error
}
