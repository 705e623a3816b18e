package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/embedding/provider"
	"video-search/internal/app/fragment"
	"video-search/internal/app/media"
	"video-search/internal/app/model"
	"video-search/internal/app/repository"
	"video-search/internal/app/storage/vector"
	"video-search/internal/app/transcript"
)

// fakeExtractor writes two frames (one failed) and a 12 second mono track.
type fakeExtractor struct {
	audioCalls int
	err        error
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, outputDir, videoID string, frameInterval int) (*model.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(filepath.Join(outputDir, media.FramesDir), 0755); err != nil {
		return nil, err
	}
	records := []model.FrameRecord{
		{FrameID: media.FrameID(videoID, 0), TimestampMs: 0, WriteStatus: true},
		{FrameID: media.FrameID(videoID, frameInterval), TimestampMs: 1000, WriteStatus: false},
	}
	if err := os.WriteFile(filepath.Join(outputDir, media.FramesDir, records[0].FrameID), []byte{0xff, 0xd8, 0xff}, 0644); err != nil {
		return nil, err
	}
	if err := media.WriteFrameTable(filepath.Join(outputDir, media.FrameTableFile), records); err != nil {
		return nil, err
	}
	return &model.VideoMetadata{FPS: 30, Width: 4, Height: 4, TotalFrames: 60}, nil
}

func (f *fakeExtractor) ExtractAudio(ctx context.Context, videoPath, outputDir string) (string, error) {
	f.audioCalls++
	pcm := &fragment.PCM{SampleRate: 1000, Channels: 1, BitsPerSample: 16, Data: make([]byte, 12000*2)}
	path := filepath.Join(outputDir, media.AudioFile)
	return path, os.WriteFile(path, pcm.Encode(), 0644)
}

type fakeTranscriber struct {
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, language string) (*model.Transcription, error) {
	f.calls++
	return &model.Transcription{Segments: segments(4)}, nil
}

func segments(n int) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, n)
	for i := range out {
		out[i] = model.TranscriptSegment{Text: fmt.Sprintf("sentence %d", i), Start: float64(i) * 2.5, End: float64(i+1) * 2.5}
	}
	return out
}

type recordingStore struct {
	kind      vector.Kind
	fragments []model.Fragment
	deleted   []string
	failAll   bool
}

func (s *recordingStore) Kind() vector.Kind { return s.kind }

func (s *recordingStore) Add(ctx context.Context, fragments []model.Fragment) (*vector.InsertReport, error) {
	s.fragments = append(s.fragments, fragments...)
	report := &vector.InsertReport{Total: len(fragments)}
	for i := range fragments {
		report.IDs = append(report.IDs, fmt.Sprintf("id-%d", i))
	}
	if s.failAll {
		report.Failed = []vector.BatchFailure{{Index: 0, Offset: 0, Size: len(fragments), Err: fmt.Errorf("down")}}
	} else {
		report.Succeeded = []int{0}
	}
	return report, nil
}

func (s *recordingStore) Delete(ctx context.Context, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

func (s *recordingStore) DeleteAll(ctx context.Context) error { return nil }

func (s *recordingStore) Search(ctx context.Context, q vector.Query) ([]model.Result, error) {
	return nil, nil
}

func (s *recordingStore) Close() error { return nil }

type memoryCatalog struct {
	videos    map[string]repository.VideoRecord
	fragments []repository.FragmentRecord
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{videos: map[string]repository.VideoRecord{}}
}

func (m *memoryCatalog) Close() error                      { return nil }
func (m *memoryCatalog) Migrate(ctx context.Context) error { return nil }

func (m *memoryCatalog) UpsertVideo(ctx context.Context, v repository.VideoRecord) error {
	m.videos[v.VideoID] = v
	return nil
}

func (m *memoryCatalog) GetVideo(ctx context.Context, videoID string) (*repository.VideoRecord, error) {
	v, ok := m.videos[videoID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return &v, nil
}

func (m *memoryCatalog) ListVideos(ctx context.Context) ([]repository.VideoRecord, error) {
	var out []repository.VideoRecord
	for _, v := range m.videos {
		out = append(out, v)
	}
	return out, nil
}

func (m *memoryCatalog) RecordFragments(ctx context.Context, collection string, fragments []repository.FragmentRecord) error {
	m.fragments = append(m.fragments, fragments...)
	return nil
}

func (m *memoryCatalog) FragmentIDs(ctx context.Context, videoID string) ([]string, error) {
	var ids []string
	for _, f := range m.fragments {
		if f.VideoID == videoID {
			ids = append(ids, f.ID)
		}
	}
	return ids, nil
}

func (m *memoryCatalog) DeleteVideo(ctx context.Context, videoID string) error {
	delete(m.videos, videoID)
	var kept []repository.FragmentRecord
	for _, f := range m.fragments {
		if f.VideoID != videoID {
			kept = append(kept, f)
		}
	}
	m.fragments = kept
	return nil
}

type fakeUploader struct {
	dirs []string
}

func (f *fakeUploader) UploadDir(ctx context.Context, videoID, dir string) (int, error) {
	f.dirs = append(f.dirs, dir)
	return 3, nil
}

func testVideo(t *testing.T) model.VideoFile {
	return model.VideoFile{ID: "lecture", Path: "/videos/Lecture.mp4", OutputDir: filepath.Join(t.TempDir(), "lecture")}
}

func TestIngestMultimodal(t *testing.T) {
	// Arrange
	extractor := &fakeExtractor{}
	transcriber := &fakeTranscriber{}
	store := &recordingStore{kind: vector.MultiModal}
	catalog := newMemoryCatalog()
	uploader := &fakeUploader{}
	pipeline := NewPipeline(extractor, store, Options{FrameInterval: 30, Granularities: []int{2}, AudioChunkMs: 5000}, nil,
		WithTranscriber(transcriber), WithCatalog(catalog), WithUploader(uploader))
	video := testVideo(t)

	// Act
	res, err := pipeline.Ingest(context.Background(), video)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, res.TextChunks)
	assert.Equal(t, 1, res.Frames)
	assert.Equal(t, 3, res.AudioChunks)
	assert.Equal(t, 3, res.Uploaded)
	assert.Len(t, store.fragments, 6)
	assert.Equal(t, 1, transcriber.calls)
	assert.FileExists(t, filepath.Join(video.OutputDir, transcript.FileName))

	counts := map[model.Modality]int{}
	for _, f := range store.fragments {
		counts[f.MediaType]++
		assert.Equal(t, "lecture", f.VideoID)
	}
	assert.Equal(t, map[model.Modality]int{model.ModalityText: 2, model.ModalityImage: 1, model.ModalityAudio: 3}, counts)

	assert.Equal(t, repository.StatusIngested, catalog.videos["lecture"].Status)
	assert.Equal(t, 60, catalog.videos["lecture"].TotalFrames)
	assert.Len(t, catalog.fragments, 6)
	assert.Equal(t, []string{video.OutputDir}, uploader.dirs)
}

func TestIngestReusesTranscription(t *testing.T) {
	extractor := &fakeExtractor{}
	transcriber := &fakeTranscriber{}
	store := &recordingStore{kind: vector.SingleModality}
	video := testVideo(t)
	require.NoError(t, transcript.SaveTranscription(filepath.Join(video.OutputDir, transcript.FileName),
		&model.Transcription{Segments: segments(3)}))

	pipeline := NewPipeline(extractor, store, Options{Granularities: []int{3}}, nil, WithTranscriber(transcriber))
	res, err := pipeline.Ingest(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, 0, transcriber.calls)
	assert.Equal(t, 0, extractor.audioCalls, "text store with a transcription needs no audio")
	assert.Equal(t, 1, res.TextChunks)
	assert.Equal(t, 0, res.Frames)
	require.Len(t, store.fragments, 1)
	assert.Equal(t, "sentence 0 sentence 1 sentence 2", store.fragments[0].Payload)
}

func TestIngestWithoutTranscriber(t *testing.T) {
	catalog := newMemoryCatalog()
	pipeline := NewPipeline(&fakeExtractor{}, &recordingStore{kind: vector.SingleModality}, Options{}, nil, WithCatalog(catalog))

	_, err := pipeline.Ingest(context.Background(), testVideo(t))

	require.Error(t, err)
	assert.Equal(t, repository.StatusFailed, catalog.videos["lecture"].Status)
}

func TestIngestExtractionFailure(t *testing.T) {
	catalog := newMemoryCatalog()
	pipeline := NewPipeline(&fakeExtractor{err: fmt.Errorf("moov atom not found")}, &recordingStore{kind: vector.MultiModal}, Options{}, nil, WithCatalog(catalog))

	_, err := pipeline.Ingest(context.Background(), testVideo(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "moov atom not found")
	assert.Equal(t, repository.StatusFailed, catalog.videos["lecture"].Status)
}

func TestIngestPartialInsert(t *testing.T) {
	catalog := newMemoryCatalog()
	store := &recordingStore{kind: vector.MultiModal, failAll: true}
	pipeline := NewPipeline(&fakeExtractor{}, store, Options{}, nil, WithTranscriber(&fakeTranscriber{}), WithCatalog(catalog))

	res, err := pipeline.Ingest(context.Background(), testVideo(t))

	require.NoError(t, err)
	assert.Error(t, res.Report.Err())
	assert.Equal(t, repository.StatusPartial, catalog.videos["lecture"].Status)
	assert.Empty(t, catalog.fragments)
}

func TestIngestAllSkipsFailures(t *testing.T) {
	pipeline := NewPipeline(&fakeExtractor{}, &recordingStore{kind: vector.SingleModality}, Options{}, nil, WithTranscriber(&fakeTranscriber{}))
	dir := t.TempDir()
	videos := []model.VideoFile{
		{ID: "a", Path: "a.mp4", OutputDir: filepath.Join(dir, "a")},
		{ID: "b", Path: "b.mp4", OutputDir: filepath.Join(dir, "b")},
	}

	results, err := pipeline.IngestAll(context.Background(), videos)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	catalog := newMemoryCatalog()
	store := &recordingStore{kind: vector.MultiModal}
	pipeline := NewPipeline(&fakeExtractor{}, store, Options{}, nil, WithTranscriber(&fakeTranscriber{}), WithCatalog(catalog))
	_, err := pipeline.Ingest(ctx, testVideo(t))
	require.NoError(t, err)

	n, err := pipeline.Remove(ctx, "lecture")

	require.NoError(t, err)
	assert.Equal(t, len(store.fragments), n)
	assert.Len(t, store.deleted, n)
	assert.NotContains(t, catalog.videos, "lecture")
}

func TestRemoveRequiresCatalog(t *testing.T) {
	_, err := NewPipeline(&fakeExtractor{}, &recordingStore{}, Options{}, nil).Remove(context.Background(), "x")
	assert.Error(t, err)
}

func TestIndexTranscriptionIntoTextStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), transcript.FileName)
	require.NoError(t, transcript.SaveTranscription(path, &model.Transcription{Segments: segments(6)}))

	index := vector.NewMemoryIndex()
	store := vector.NewTextStore(provider.NewMockProvider(8), index, vector.TextStoreOptions{}, nil)
	catalog := newMemoryCatalog()
	pipeline := NewPipeline(&fakeExtractor{}, store, Options{Granularities: []int{3, 5}}, nil, WithCatalog(catalog))

	report, err := pipeline.IndexTranscription(ctx, "talk", path)

	require.NoError(t, err)
	// 6 segments in groups of 3 give 2 chunks, groups of 5 give 2 more
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 4, index.Len())
	assert.Len(t, catalog.fragments, 4)
}

func TestIndexTranscriptionSkipsFailedBatchIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), transcript.FileName)
	require.NoError(t, transcript.SaveTranscription(path, &model.Transcription{Segments: segments(6)}))

	catalog := newMemoryCatalog()
	store := &recordingStore{kind: vector.SingleModality, failAll: true}
	pipeline := NewPipeline(&fakeExtractor{}, store, Options{Granularities: []int{3}}, nil, WithCatalog(catalog))

	report, err := pipeline.IndexTranscription(ctx, "talk", path)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 0, report.Inserted())
	assert.Empty(t, catalog.fragments)

	ids, err := catalog.FragmentIDs(ctx, "talk")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
