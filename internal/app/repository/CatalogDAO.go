package repository

import (
	"context"
	"time"

	"video-search/internal/app/model"
)

// Video ingestion states.
const (
	StatusIngested = "ingested"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
)

// VideoRecord is one ingested video.
type VideoRecord struct {
	VideoID      string
	Path         string
	OutputDir    string
	FPS          float64
	TotalFrames  int
	Collection   string
	Status       string
	ErrorMessage string
	IngestedAt   time.Time
}

// FragmentRecord ties a stored fragment id to its video.
type FragmentRecord struct {
	ID        string
	VideoID   string
	MediaType model.Modality
}

// CatalogDAO tracks which videos were ingested and the ids of their stored fragments,
// so a video's fragments can be deleted from the vector store later.
type CatalogDAO interface {
	Close() error

	Migrate(ctx context.Context) error

	UpsertVideo(ctx context.Context, video VideoRecord) error

	GetVideo(ctx context.Context, videoID string) (*VideoRecord, error)

	ListVideos(ctx context.Context) ([]VideoRecord, error)

	RecordFragments(ctx context.Context, collection string, fragments []FragmentRecord) error

	FragmentIDs(ctx context.Context, videoID string) ([]string, error)

	DeleteVideo(ctx context.Context, videoID string) error
}

// FragmentRecords zips stored fragments with the ids the store assigned.
func FragmentRecords(fragments []model.Fragment, ids []string) []FragmentRecord {
	n := len(fragments)
	if len(ids) < n {
		n = len(ids)
	}
	out := make([]FragmentRecord, n)
	for i := 0; i < n; i++ {
		out[i] = FragmentRecord{ID: ids[i], VideoID: fragments[i].VideoID, MediaType: fragments[i].MediaType}
	}
	return out
}
