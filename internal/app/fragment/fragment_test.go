package fragment

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/media"
	"video-search/internal/app/model"
)

func TestFormatTextChunks(t *testing.T) {
	chunks := []model.CompositeSegment{
		{Text: "Hello world", Start: 0, End: 3},
		{Text: "This is GPT", Start: 4.2567, End: 7},
	}

	fragments := FormatTextChunks(chunks, "clip")

	require.Len(t, fragments, 2)
	assert.Equal(t, model.Fragment{
		Path:        "",
		Payload:     "This is GPT",
		MediaType:   model.ModalityText,
		VideoID:     "clip",
		TimestampMs: 4256,
		StartSec:    4.2567,
		EndSec:      7,
	}, fragments[1])
	assert.Empty(t, FormatTextChunks(nil, "clip"))
}

func TestCollectFrames(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, media.FramesDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, media.FramesDir, "clip_0.jpg"), []byte("jpeg-0"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, media.FramesDir, "clip_30.jpg"), []byte("jpeg-30"), 0644))
	// stray file not listed in the table
	require.NoError(t, os.WriteFile(filepath.Join(dir, media.FramesDir, ".DS_Store"), []byte("x"), 0644))

	records := []model.FrameRecord{
		{FrameID: "clip_0.jpg", TimestampMs: 0, WriteStatus: true},
		{FrameID: "clip_30.jpg", TimestampMs: 1000, WriteStatus: true},
		{FrameID: "clip_60.jpg", TimestampMs: 2000, WriteStatus: false},
		{FrameID: "clip_90.jpg", TimestampMs: 3000, WriteStatus: true}, // missing on disk
	}
	require.NoError(t, media.WriteFrameTable(filepath.Join(dir, media.FrameTableFile), records))

	// Act
	fragments, err := CollectFrames(dir, "clip", nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, "clip_30.jpg", fragments[1].Path)
	assert.Equal(t, int64(1000), fragments[1].TimestampMs)
	assert.Equal(t, 1.0, fragments[1].StartSec)
	assert.Equal(t, model.ModalityImage, fragments[1].MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-30")), fragments[1].Payload)
}

func TestCollectFramesWithoutTable(t *testing.T) {
	_, err := CollectFrames(t.TempDir(), "clip", nil)
	assert.Error(t, err)
}

func TestCollectAudioChunks(t *testing.T) {
	path := writeWAV(t, tone(2500))

	fragments, err := CollectAudioChunks(path, "clip", 1000)

	require.NoError(t, err)
	require.Len(t, fragments, 3)

	var paths []string
	for _, f := range fragments {
		paths = append(paths, f.Path)
		assert.Equal(t, model.ModalityAudio, f.MediaType)
		assert.Equal(t, "clip", f.VideoID)
	}
	assert.Equal(t, []string{"chunk_0_1000", "chunk_1000_1000", "chunk_2000_1000"}, paths)
	assert.Equal(t, int64(2000), fragments[2].TimestampMs)
	assert.Equal(t, 2.5, fragments[2].EndSec)

	// the last chunk is shorter and decodes as a standalone wav
	raw, err := base64.StdEncoding.DecodeString(fragments[2].Payload)
	require.NoError(t, err)
	last, err := DecodeWAV(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 500, last.DurationMs())
}

func TestCollectAudioChunksExactMultiple(t *testing.T) {
	fragments, err := CollectAudioChunks(writeWAV(t, tone(2000)), "clip", 1000)
	require.NoError(t, err)
	assert.Len(t, fragments, 2)
}

func TestCollectAudioChunksInvalidDuration(t *testing.T) {
	_, err := CollectAudioChunks(writeWAV(t, tone(10)), "clip", 0)
	assert.Error(t, err)
}
