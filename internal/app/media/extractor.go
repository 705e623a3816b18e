package media

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"video-search/internal/app/errors"
	"video-search/internal/app/logging"
	"video-search/internal/app/metrics"
	"video-search/internal/app/model"
)

const defaultJPEGQuality = 95

// Extractor samples frames and extracts audio from a video into an output directory.
type Extractor struct {
	decoder Decoder
	logger  *zap.Logger
	quality int
}

// NewExtractor creates an extractor over the given decoder.
func NewExtractor(decoder Decoder, logger *zap.Logger) *Extractor {
	return &Extractor{
		decoder: decoder,
		logger:  logging.OrNop(logger),
		quality: defaultJPEGQuality,
	}
}

// FrameID is the identifier and file name of frame index of a video.
func FrameID(videoID string, index int) string {
	return fmt.Sprintf("%s_%d.jpg", videoID, index)
}

// Extract writes video_metadata.json, a JPEG for every sampled frame, and frames_metadata.csv.
//
// Frame i is sampled when i%frameInterval == 0 and it is not a single-color frame.
// Skipped single-color frames still advance the frame counter. A read failure ends
// extraction early but keeps everything written so far and is not returned.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputDir, videoID string, frameInterval int) (*model.VideoMetadata, error) {
	if frameInterval < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "frame interval must be at least 1, got %d", frameInterval)
	}

	stream, err := e.decoder.Open(ctx, videoPath)
	if err != nil {
		return nil, errors.Mark(errors.ErrDecode, err, "open %s", videoPath)
	}
	defer stream.Close()

	meta := stream.Metadata()
	framesDir := filepath.Join(outputDir, FramesDir)
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}
	if err := WriteVideoMetadata(filepath.Join(outputDir, MetadataFile), meta); err != nil {
		return nil, fmt.Errorf("failed to write video metadata: %w", err)
	}

	e.logger.Info("extracting frames",
		zap.String("video_id", videoID),
		zap.Float64("fps", meta.FPS),
		zap.Int("total_frames", meta.TotalFrames),
		zap.Int("frame_interval", frameInterval))

	var records []model.FrameRecord
	var ctxErr error
	for i := 0; i < meta.TotalFrames; i++ {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}

		frame, err := stream.ReadFrame()
		if err == io.EOF {
			e.logger.Debug("stream ended before reported frame count",
				zap.Int("frame", i), zap.Int("total_frames", meta.TotalFrames))
			break
		}
		if err != nil {
			e.logger.Warn("stopping extraction",
				zap.Int("frame", i),
				zap.Error(errors.Mark(errors.ErrFrameRead, err, "frame %d", i)))
			break
		}

		if IsDegenerate(frame.Image) {
			metrics.FramesTotal.WithLabelValues(metrics.FrameDegenerate).Inc()
			continue
		}
		if i%frameInterval != 0 {
			metrics.FramesTotal.WithLabelValues(metrics.FrameSkipped).Inc()
			continue
		}

		record := model.FrameRecord{
			FrameID:     FrameID(videoID, i),
			TimestampMs: frame.TimestampMs,
			WriteStatus: true,
		}
		if err := writeJPEG(filepath.Join(framesDir, record.FrameID), frame.Image, e.quality); err != nil {
			record.WriteStatus = false
			metrics.FramesTotal.WithLabelValues(metrics.FrameWriteError).Inc()
			e.logger.Warn("frame not written",
				zap.String("frame_id", record.FrameID),
				zap.Error(errors.Mark(errors.ErrWriteFailure, err, "frame %d", i)))
		} else {
			metrics.FramesTotal.WithLabelValues(metrics.FrameSampled).Inc()
			e.logger.Debug("frame sampled",
				zap.String("frame_id", record.FrameID),
				zap.Int64("timestamp_ms", record.TimestampMs))
		}
		records = append(records, record)
	}

	if err := WriteFrameTable(filepath.Join(outputDir, FrameTableFile), records); err != nil {
		return nil, fmt.Errorf("failed to write frame table: %w", err)
	}
	if ctxErr != nil {
		return &meta, ctxErr
	}

	e.logger.Info("frames extracted", zap.String("video_id", videoID), zap.Int("frames", len(records)))
	return &meta, nil
}

// ExtractAudio writes the full audio track to <outputDir>/audio.wav and returns its path.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	wavPath := filepath.Join(outputDir, AudioFile)
	if err := e.decoder.ExtractAudio(ctx, videoPath, wavPath); err != nil {
		return "", errors.Mark(errors.ErrDecode, err, "extract audio from %s", videoPath)
	}
	e.logger.Info("audio extracted", zap.String("path", wavPath))
	return wavPath, nil
}

// IsDegenerate reports whether every pixel equals the pixel at (0,0).
func IsDegenerate(img *image.RGBA) bool {
	if img == nil {
		return true
	}
	b := img.Bounds()
	if b.Empty() {
		return true
	}
	first := img.PixOffset(b.Min.X, b.Min.Y)
	ref := img.Pix[first : first+4]
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X-1, y)+4]
		for p := 0; p < len(row); p += 4 {
			if row[p] != ref[0] || row[p+1] != ref[1] || row[p+2] != ref[2] || row[p+3] != ref[3] {
				return false
			}
		}
	}
	return true
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
