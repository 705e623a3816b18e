package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"video-search/internal/app/model"
)

// MockTranscriber is a testify mock of transcript.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath, language string) (*model.Transcription, error) {
	args := m.Called(ctx, audioPath, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcription), args.Error(1)
}
