package transcript

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"video-search/internal/app/model"
)

// Transcriber converts an audio file into a segmented transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (*model.Transcription, error)
}

// WhisperTranscriber implements remote transcription using the OpenAI API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a transcriber; an empty model selects whisper-1.
func NewWhisperTranscriber(client *openai.Client, model string) *WhisperTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{client: client, model: model}
}

// Transcribe requests verbose_json output so that segment timings are returned.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath, language string) (*model.Transcription, error) {
	req := openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language,
	}
	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("createTranscription failed: %w", err)
	}

	t := &model.Transcription{
		Text:     resp.Text,
		Language: resp.Language,
		Segments: make([]model.TranscriptSegment, 0, len(resp.Segments)),
	}
	for _, s := range resp.Segments {
		t.Segments = append(t.Segments, model.TranscriptSegment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	return t, nil
}
