// Package fragment turns extraction output into storable fragments.
package fragment

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"video-search/internal/app/logging"
	"video-search/internal/app/media"
	"video-search/internal/app/model"
)

// FormatTextChunks converts composite transcript segments into text fragments.
func FormatTextChunks(chunks []model.CompositeSegment, videoID string) []model.Fragment {
	fragments := make([]model.Fragment, 0, len(chunks))
	for _, c := range chunks {
		fragments = append(fragments, model.Fragment{
			Path:        "",
			Payload:     c.Text,
			MediaType:   model.ModalityText,
			VideoID:     videoID,
			TimestampMs: int64(c.Start * 1000),
			StartSec:    c.Start,
			EndSec:      c.End,
		})
	}
	return fragments
}

// CollectFrames builds an image fragment for every successfully written frame listed in
// frames_metadata.csv. Frames missing on disk are skipped with a warning.
func CollectFrames(outputDir, videoID string, logger *zap.Logger) ([]model.Fragment, error) {
	logger = logging.OrNop(logger)

	records, err := media.ReadFrameTable(filepath.Join(outputDir, media.FrameTableFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read frame table: %w", err)
	}

	fragments := make([]model.Fragment, 0, len(records))
	for _, r := range records {
		if !r.WriteStatus {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outputDir, media.FramesDir, r.FrameID))
		if err != nil {
			logger.Warn("frame listed but not readable, skipping",
				zap.String("frame_id", r.FrameID), zap.Error(err))
			continue
		}
		seconds := float64(r.TimestampMs) / 1000
		fragments = append(fragments, model.Fragment{
			Path:        r.FrameID,
			Payload:     base64.StdEncoding.EncodeToString(data),
			MediaType:   model.ModalityImage,
			VideoID:     videoID,
			TimestampMs: r.TimestampMs,
			StartSec:    seconds,
			EndSec:      seconds,
		})
	}
	return fragments, nil
}

// ChunkPath names the audio chunk starting at offsetMs.
func ChunkPath(offsetMs, chunkDurationMs int) string {
	return fmt.Sprintf("chunk_%d_%d", offsetMs, chunkDurationMs)
}

// CollectAudioChunks slices the WAV track into chunkDurationMs pieces from the start of the
// track to its end; the last piece may be shorter. Each piece is a standalone WAV payload.
func CollectAudioChunks(wavPath, videoID string, chunkDurationMs int) ([]model.Fragment, error) {
	if chunkDurationMs < 1 {
		return nil, fmt.Errorf("chunk duration must be positive, got %d", chunkDurationMs)
	}

	pcm, err := ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio %s: %w", wavPath, err)
	}

	total := pcm.DurationMs()
	fragments := make([]model.Fragment, 0, total/chunkDurationMs+1)
	for offset := 0; offset < total; offset += chunkDurationMs {
		end := offset + chunkDurationMs
		if end > total {
			end = total
		}
		fragments = append(fragments, model.Fragment{
			Path:        ChunkPath(offset, chunkDurationMs),
			Payload:     base64.StdEncoding.EncodeToString(pcm.Slice(offset, end).Encode()),
			MediaType:   model.ModalityAudio,
			VideoID:     videoID,
			TimestampMs: int64(offset),
			StartSec:    float64(offset) / 1000,
			EndSec:      float64(end) / 1000,
		})
	}
	return fragments, nil
}
