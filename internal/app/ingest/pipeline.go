// Package ingest runs videos through extraction, transcription, chunking and storage.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"video-search/internal/app/errors"
	"video-search/internal/app/fragment"
	"video-search/internal/app/logging"
	"video-search/internal/app/model"
	"video-search/internal/app/repository"
	"video-search/internal/app/storage/vector"
	"video-search/internal/app/transcript"
)

// Extractor writes frames, metadata and the audio track of a video.
type Extractor interface {
	Extract(ctx context.Context, videoPath, outputDir, videoID string, frameInterval int) (*model.VideoMetadata, error)
	ExtractAudio(ctx context.Context, videoPath, outputDir string) (string, error)
}

// ArtifactUploader copies a video's output directory to object storage.
type ArtifactUploader interface {
	UploadDir(ctx context.Context, videoID, dir string) (int, error)
}

type batchObserver interface {
	OnBatch(fn func(done, total int))
}

type collectionNamer interface {
	Collection() string
}

// Options are the per-run pipeline parameters.
type Options struct {
	FrameInterval int
	Granularities []int
	AudioChunkMs  int
	Language      string
}

// Result summarizes one ingested video.
type Result struct {
	VideoID     string
	Metadata    *model.VideoMetadata
	TextChunks  int
	Frames      int
	AudioChunks int
	Report      *vector.InsertReport
	Uploaded    int
}

// Pipeline ingests videos into one store. Transcriber, catalog, uploader and progress are optional.
type Pipeline struct {
	extractor   Extractor
	transcriber transcript.Transcriber
	store       vector.Store
	catalog     repository.CatalogDAO
	uploader    ArtifactUploader
	progress    *ProgressManager
	opts        Options
	logger      *zap.Logger
}

// Option configures optional collaborators.
type Option func(*Pipeline)

func WithTranscriber(t transcript.Transcriber) Option {
	return func(p *Pipeline) { p.transcriber = t }
}

func WithCatalog(c repository.CatalogDAO) Option {
	return func(p *Pipeline) { p.catalog = c }
}

func WithUploader(u ArtifactUploader) Option {
	return func(p *Pipeline) { p.uploader = u }
}

func WithProgress(pm *ProgressManager) Option {
	return func(p *Pipeline) { p.progress = pm }
}

// NewPipeline creates a pipeline. Zero options fall back to the extraction and chunking defaults.
func NewPipeline(extractor Extractor, store vector.Store, opts Options, logger *zap.Logger, options ...Option) *Pipeline {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 30
	}
	if len(opts.Granularities) == 0 {
		opts.Granularities = transcript.DefaultGranularities
	}
	if opts.AudioChunkMs <= 0 {
		opts.AudioChunkMs = 5000
	}
	p := &Pipeline{
		extractor: extractor,
		store:     store,
		opts:      opts,
		logger:    logging.OrNop(logger),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Ingest processes one video end to end. Failed insert batches are reported in
// Result.Report and do not make Ingest fail.
func (p *Pipeline) Ingest(ctx context.Context, video model.VideoFile) (*Result, error) {
	log := p.logger.With(zap.String("video_id", video.ID))
	res := &Result{VideoID: video.ID}

	meta, err := p.extractor.Extract(ctx, video.Path, video.OutputDir, video.ID, p.opts.FrameInterval)
	if err != nil {
		p.recordFailure(ctx, video, err)
		return nil, errors.Wrapf(err, "extracting %s", video.ID)
	}
	res.Metadata = meta

	multimodal := p.store.Kind() == vector.MultiModal
	transcriptPath := filepath.Join(video.OutputDir, transcript.FileName)

	var wavPath string
	if multimodal || !fileExists(transcriptPath) {
		wavPath, err = p.extractor.ExtractAudio(ctx, video.Path, video.OutputDir)
		if err != nil {
			p.recordFailure(ctx, video, err)
			return nil, errors.Wrapf(err, "extracting audio of %s", video.ID)
		}
	}

	trans, err := p.transcription(ctx, transcriptPath, wavPath)
	if err != nil {
		p.recordFailure(ctx, video, err)
		return nil, err
	}

	fragments := fragment.FormatTextChunks(transcript.ChunkTranscript(trans.Segments, p.opts.Granularities), video.ID)
	res.TextChunks = len(fragments)

	if multimodal {
		frames, err := fragment.CollectFrames(video.OutputDir, video.ID, p.logger)
		if err != nil {
			p.recordFailure(ctx, video, err)
			return nil, err
		}
		audio, err := fragment.CollectAudioChunks(wavPath, video.ID, p.opts.AudioChunkMs)
		if err != nil {
			p.recordFailure(ctx, video, err)
			return nil, err
		}
		res.Frames = len(frames)
		res.AudioChunks = len(audio)
		fragments = append(fragments, frames...)
		fragments = append(fragments, audio...)
	}

	log.Info("fragments ready",
		zap.Int("text", res.TextChunks),
		zap.Int("image", res.Frames),
		zap.Int("audio", res.AudioChunks))

	report, err := p.add(ctx, video.ID, fragments)
	if err != nil {
		p.recordFailure(ctx, video, err)
		return nil, err
	}
	res.Report = report
	if report.Err() != nil {
		log.Warn("some batches failed", zap.Int("inserted", report.Inserted()), zap.Error(report.Err()))
	}

	if err := p.record(ctx, video, meta, fragments, report); err != nil {
		return res, err
	}

	if p.uploader != nil {
		n, err := p.uploader.UploadDir(ctx, video.ID, video.OutputDir)
		res.Uploaded = n
		if err != nil {
			return res, errors.Wrapf(err, "uploading artifacts of %s", video.ID)
		}
	}
	return res, nil
}

// IngestAll ingests videos sequentially. A failing video is logged and skipped.
func (p *Pipeline) IngestAll(ctx context.Context, videos []model.VideoFile) ([]*Result, error) {
	var results []*Result
	failed := 0
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := p.Ingest(ctx, v)
		if err != nil {
			failed++
			p.logger.Error("video ingestion failed", zap.String("video_id", v.ID), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d videos failed", failed, len(videos))
	}
	return results, nil
}

// IndexTranscription chunks an existing transcription file and adds its text fragments.
func (p *Pipeline) IndexTranscription(ctx context.Context, videoID, path string) (*vector.InsertReport, error) {
	trans, err := transcript.LoadTranscription(path)
	if err != nil {
		return nil, err
	}
	fragments := fragment.FormatTextChunks(transcript.ChunkTranscript(trans.Segments, p.opts.Granularities), videoID)
	report, err := p.add(ctx, videoID, fragments)
	if err != nil {
		return nil, err
	}
	if p.catalog != nil {
		if err := p.catalog.RecordFragments(ctx, p.collection(), insertedRecords(fragments, report)); err != nil {
			return report, errors.Wrap(err, "recording fragments")
		}
	}
	return report, nil
}

// Remove deletes a video's fragments from the store and forgets the video.
func (p *Pipeline) Remove(ctx context.Context, videoID string) (int, error) {
	if p.catalog == nil {
		return 0, errors.Wrap(errors.ErrInvalidConfig, "deleting a video requires the catalog")
	}
	ids, err := p.catalog.FragmentIDs(ctx, videoID)
	if err != nil {
		return 0, err
	}
	if err := p.store.Delete(ctx, ids); err != nil {
		return 0, errors.Wrapf(err, "deleting fragments of %s", videoID)
	}
	if err := p.catalog.DeleteVideo(ctx, videoID); err != nil {
		return len(ids), err
	}
	p.logger.Info("video removed", zap.String("video_id", videoID), zap.Int("fragments", len(ids)))
	return len(ids), nil
}

func (p *Pipeline) transcription(ctx context.Context, transcriptPath, wavPath string) (*model.Transcription, error) {
	if fileExists(transcriptPath) {
		return transcript.LoadTranscription(transcriptPath)
	}
	if p.transcriber == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "no %s found and no transcriber configured", transcriptPath)
	}
	trans, err := p.transcriber.Transcribe(ctx, wavPath, p.opts.Language)
	if err != nil {
		return nil, errors.Wrap(err, "transcribing audio")
	}
	if err := transcript.SaveTranscription(transcriptPath, trans); err != nil {
		return nil, fmt.Errorf("failed to save transcription: %w", err)
	}
	return trans, nil
}

func (p *Pipeline) add(ctx context.Context, videoID string, fragments []model.Fragment) (*vector.InsertReport, error) {
	obs, ok := p.store.(batchObserver)
	if !ok || p.progress == nil {
		return p.store.Add(ctx, fragments)
	}

	var bar *ProgressBar
	obs.OnBatch(func(done, total int) {
		if bar == nil {
			bar = p.progress.CreateBar(total, "Inserting "+videoID)
		}
		bar.SetCurrent(done)
	})
	defer func() {
		obs.OnBatch(nil)
		if bar != nil {
			bar.Complete()
		}
	}()
	return p.store.Add(ctx, fragments)
}

func (p *Pipeline) record(ctx context.Context, video model.VideoFile, meta *model.VideoMetadata, fragments []model.Fragment, report *vector.InsertReport) error {
	if p.catalog == nil {
		return nil
	}

	status := repository.StatusIngested
	errMsg := ""
	if err := report.Err(); err != nil {
		status = repository.StatusPartial
		errMsg = err.Error()
	}

	if err := p.catalog.RecordFragments(ctx, p.collection(), insertedRecords(fragments, report)); err != nil {
		return errors.Wrap(err, "recording fragments")
	}
	err := p.catalog.UpsertVideo(ctx, repository.VideoRecord{
		VideoID:      video.ID,
		Path:         video.Path,
		OutputDir:    video.OutputDir,
		FPS:          meta.FPS,
		TotalFrames:  meta.TotalFrames,
		Collection:   p.collection(),
		Status:       status,
		ErrorMessage: errMsg,
	})
	if err != nil {
		return errors.Wrap(err, "recording video")
	}
	return nil
}

func (p *Pipeline) recordFailure(ctx context.Context, video model.VideoFile, cause error) {
	if p.catalog == nil {
		return
	}
	err := p.catalog.UpsertVideo(ctx, repository.VideoRecord{
		VideoID:      video.ID,
		Path:         video.Path,
		OutputDir:    video.OutputDir,
		Collection:   p.collection(),
		Status:       repository.StatusFailed,
		ErrorMessage: cause.Error(),
	})
	if err != nil {
		p.logger.Warn("failed to record video failure", zap.String("video_id", video.ID), zap.Error(err))
	}
}

func (p *Pipeline) collection() string {
	if c, ok := p.store.(collectionNamer); ok {
		return c.Collection()
	}
	return ""
}

// insertedRecords drops fragments of failed batches so the catalog only lists stored ids.
func insertedRecords(fragments []model.Fragment, report *vector.InsertReport) []repository.FragmentRecord {
	inserted := make(map[string]bool, len(report.IDs))
	for _, id := range report.InsertedIDs() {
		inserted[id] = true
	}
	var records []repository.FragmentRecord
	for _, r := range repository.FragmentRecords(fragments, report.IDs) {
		if inserted[r.ID] {
			records = append(records, r)
		}
	}
	return records
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
