package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/model"
	"video-search/internal/app/repository"
	"video-search/internal/app/storage/vector"
	"video-search/internal/app/testutil"
	"video-search/internal/app/transcript"
)

func TestIngestPassesLanguageToTranscriber(t *testing.T) {
	transcriber := new(testutil.MockTranscriber)
	transcriber.On("Transcribe", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasSuffix(p, "audio.wav")
	}), "en").Return(testutil.LectureTranscription(), nil).Once()

	store := testutil.NewMockStore(vector.SingleModality)
	store.On("Add", mock.Anything, mock.MatchedBy(func(fs []model.Fragment) bool {
		return len(fs) == 1 && fs[0].StartSec == 0 && fs[0].EndSec == 28.3
	})).Return(&vector.InsertReport{Total: 1, IDs: []string{"lecture_1"}, Succeeded: []int{0}}, nil).Once()

	pipeline := NewPipeline(&fakeExtractor{}, store, Options{Granularities: []int{7}, Language: "en"}, nil,
		WithTranscriber(transcriber))
	video := testVideo(t)

	res, err := pipeline.Ingest(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, 1, res.TextChunks)
	assert.Equal(t, 1, res.Report.Inserted())
	assert.FileExists(t, filepath.Join(video.OutputDir, transcript.FileName))
	transcriber.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestIngestTranscriptionFailureSkipsStore(t *testing.T) {
	transcriber := new(testutil.MockTranscriber)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(nil, fmt.Errorf("rate limited"))
	store := testutil.NewMockStore(vector.SingleModality)
	catalog := newMemoryCatalog()

	pipeline := NewPipeline(&fakeExtractor{}, store, Options{}, nil, WithTranscriber(transcriber), WithCatalog(catalog))
	_, err := pipeline.Ingest(context.Background(), testVideo(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, repository.StatusFailed, catalog.videos["lecture"].Status)
	store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestIndexTranscriptionFromFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcription.json")
	testutil.WriteTranscription(t, path, testutil.LectureTranscription())

	store := testutil.NewMockStore(vector.SingleModality)
	store.On("Add", mock.Anything, mock.MatchedBy(func(fs []model.Fragment) bool { return len(fs) == 4 })).
		Return(&vector.InsertReport{Total: 4, IDs: []string{"a", "b", "c", "d"}, Succeeded: []int{0}}, nil)

	pipeline := NewPipeline(&fakeExtractor{}, store, Options{Granularities: []int{2}}, nil)
	report, err := pipeline.IndexTranscription(context.Background(), "lecture", path)

	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	store.AssertExpectations(t)
}
