package testutil

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-search/internal/app/model"
)

// LectureSegments is a short lecture transcript with contiguous timings.
var LectureSegments = []model.TranscriptSegment{
	{Text: "Welcome to the course.", Start: 0, End: 3.5},
	{Text: "Today we cover gradient descent.", Start: 3.5, End: 7.2},
	{Text: "The learning rate controls the step size.", Start: 7.2, End: 11.8},
	{Text: "Too large a rate and the loss diverges.", Start: 11.8, End: 16.4},
	{Text: "Next we look at momentum.", Start: 16.4, End: 19.9},
	{Text: "Momentum smooths the updates.", Start: 19.9, End: 24.0},
	{Text: "Finally a word on regularization.", Start: 24.0, End: 28.3},
}

// LectureTranscription wraps LectureSegments in a transcription document.
func LectureTranscription() *model.Transcription {
	texts := make([]string, len(LectureSegments))
	for i, s := range LectureSegments {
		texts[i] = s.Text
	}
	segments := make([]model.TranscriptSegment, len(LectureSegments))
	copy(segments, LectureSegments)
	return &model.Transcription{Text: strings.Join(texts, " "), Language: "en", Segments: segments}
}

// WriteTranscription writes trans as JSON to path, creating directories.
func WriteTranscription(t *testing.T, path string, trans *model.Transcription) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := json.Marshal(trans)
	if err != nil {
		t.Fatalf("marshal transcription: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write transcription: %v", err)
	}
}

// WriteSilentWAV writes a mono 16-bit PCM WAV of durationMs at sampleRate.
func WriteSilentWAV(t *testing.T, path string, sampleRate, durationMs int) {
	t.Helper()
	dataLen := sampleRate * durationMs / 1000 * 2

	buf := make([]byte, 44+dataLen)
	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataLen))
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], 1)
	binary.LittleEndian.PutUint32(buf[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:], 2)
	binary.LittleEndian.PutUint16(buf[34:], 16)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataLen))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}
