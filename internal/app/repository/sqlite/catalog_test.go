package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/errors"
	"video-search/internal/app/model"
	"video-search/internal/app/repository"
)

func TestCatalogRecordFragmentsUsesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	catalog := NewCatalog(db)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT OR REPLACE INTO fragments")
	prep.ExpectExec().WithArgs("a", "v", "text", "VideoFragments").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("b", "v", "image", "VideoFragments").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = catalog.RecordFragments(context.Background(), "VideoFragments", []repository.FragmentRecord{
		{ID: "a", VideoID: "v", MediaType: model.ModalityText},
		{ID: "b", VideoID: "v", MediaType: model.ModalityImage},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRecordFragmentsRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	catalog := NewCatalog(db)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT OR REPLACE INTO fragments")
	prep.ExpectExec().WithArgs("a", "v", "text", "C").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = catalog.RecordFragments(context.Background(), "C", []repository.FragmentRecord{
		{ID: "a", VideoID: "v", MediaType: model.ModalityText},
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogFragmentIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM fragments WHERE video_id = \?`).
		WithArgs("lecture").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("lecture_1").AddRow("lecture_2"))

	ids, err := NewCatalog(db).FragmentIDs(context.Background(), "lecture")

	require.NoError(t, err)
	assert.Equal(t, []string{"lecture_1", "lecture_2"}, ids)
}

func TestCatalogGetVideoNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT video_id, path").WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"video_id"}))

	_, err = NewCatalog(db).GetVideo(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "video missing")
}

func TestCatalogDeleteVideo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fragments WHERE video_id").WithArgs("v").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM videos WHERE video_id").WithArgs("v").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewCatalog(db).DeleteVideo(context.Background(), "v"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	catalog, err := Open(ctx, filepath.Join(t.TempDir(), "data", "catalog.db"))
	require.NoError(t, err)
	defer catalog.Close()

	video := repository.VideoRecord{
		VideoID:     "lecture",
		Path:        "/videos/Lecture.mp4",
		OutputDir:   "/out/lecture",
		FPS:         29.97,
		TotalFrames: 900,
		Collection:  "VideoFragments",
		Status:      repository.StatusIngested,
		IngestedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, catalog.UpsertVideo(ctx, video))
	video.Status = repository.StatusPartial
	require.NoError(t, catalog.UpsertVideo(ctx, video))

	got, err := catalog.GetVideo(ctx, "lecture")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPartial, got.Status)
	assert.Equal(t, 900, got.TotalFrames)

	require.NoError(t, catalog.RecordFragments(ctx, "VideoFragments", []repository.FragmentRecord{
		{ID: "f2", VideoID: "lecture", MediaType: model.ModalityAudio},
		{ID: "f1", VideoID: "lecture", MediaType: model.ModalityText},
	}))
	ids, err := catalog.FragmentIDs(ctx, "lecture")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, ids)

	videos, err := catalog.ListVideos(ctx)
	require.NoError(t, err)
	assert.Len(t, videos, 1)

	require.NoError(t, catalog.DeleteVideo(ctx, "lecture"))
	ids, err = catalog.FragmentIDs(ctx, "lecture")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = catalog.GetVideo(ctx, "lecture")
	assert.Error(t, err)
}

func TestFragmentRecords(t *testing.T) {
	fragments := []model.Fragment{
		{VideoID: "v", MediaType: model.ModalityText},
		{VideoID: "v", MediaType: model.ModalityAudio},
	}

	records := repository.FragmentRecords(fragments, []string{"a", "b"})

	assert.Equal(t, []repository.FragmentRecord{
		{ID: "a", VideoID: "v", MediaType: model.ModalityText},
		{ID: "b", VideoID: "v", MediaType: model.ModalityAudio},
	}, records)
	assert.Len(t, repository.FragmentRecords(fragments, []string{"a"}), 1)
}
