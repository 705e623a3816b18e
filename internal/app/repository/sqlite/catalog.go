package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"video-search/internal/app/errors"
	"video-search/internal/app/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	video_id      TEXT PRIMARY KEY,
	path          TEXT NOT NULL,
	output_dir    TEXT NOT NULL,
	fps           REAL NOT NULL DEFAULT 0,
	total_frames  INTEGER NOT NULL DEFAULT 0,
	collection    TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	ingested_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS fragments (
	id         TEXT PRIMARY KEY,
	video_id   TEXT NOT NULL,
	media_type TEXT NOT NULL,
	collection TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fragments_video_id ON fragments (video_id);
`

// Catalog is the SQLite implementation of repository.CatalogDAO.
type Catalog struct {
	db *sql.DB
}

var _ repository.CatalogDAO = (*Catalog)(nil)

// Open opens (creating if needed) the catalog database at path and applies the schema.
func Open(ctx context.Context, path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer
	db.SetMaxOpenConns(1)

	c := NewCatalog(db)
	if err := c.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewCatalog wraps an open database handle.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}
	return nil
}

func (c *Catalog) UpsertVideo(ctx context.Context, v repository.VideoRecord) error {
	if v.IngestedAt.IsZero() {
		v.IngestedAt = time.Now()
	}
	query := `INSERT INTO videos (video_id, path, output_dir, fps, total_frames, collection, status, error_message, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			path = excluded.path,
			output_dir = excluded.output_dir,
			fps = excluded.fps,
			total_frames = excluded.total_frames,
			collection = excluded.collection,
			status = excluded.status,
			error_message = excluded.error_message,
			ingested_at = excluded.ingested_at`
	_, err := c.db.ExecContext(ctx, query,
		v.VideoID, v.Path, v.OutputDir, v.FPS, v.TotalFrames, v.Collection, v.Status, v.ErrorMessage, v.IngestedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert video %s: %w", v.VideoID, err)
	}
	return nil
}

func (c *Catalog) GetVideo(ctx context.Context, videoID string) (*repository.VideoRecord, error) {
	query := `SELECT video_id, path, output_dir, fps, total_frames, collection, status, error_message, ingested_at
		FROM videos WHERE video_id = ?`
	var v repository.VideoRecord
	err := c.db.QueryRowContext(ctx, query, videoID).Scan(
		&v.VideoID, &v.Path, &v.OutputDir, &v.FPS, &v.TotalFrames, &v.Collection, &v.Status, &v.ErrorMessage, &v.IngestedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("video", videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &v, nil
}

func (c *Catalog) ListVideos(ctx context.Context) ([]repository.VideoRecord, error) {
	query := `SELECT video_id, path, output_dir, fps, total_frames, collection, status, error_message, ingested_at
		FROM videos ORDER BY ingested_at DESC`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	videos := make([]repository.VideoRecord, 0)
	for rows.Next() {
		var v repository.VideoRecord
		err := rows.Scan(&v.VideoID, &v.Path, &v.OutputDir, &v.FPS, &v.TotalFrames, &v.Collection, &v.Status, &v.ErrorMessage, &v.IngestedAt)
		if err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// RecordFragments stores fragment ids in one transaction.
func (c *Catalog) RecordFragments(ctx context.Context, collection string, fragments []repository.FragmentRecord) error {
	if len(fragments) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO fragments (id, video_id, media_type, collection) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fragments {
		if _, err := stmt.ExecContext(ctx, f.ID, f.VideoID, string(f.MediaType), collection); err != nil {
			return fmt.Errorf("failed to record fragment %s: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

func (c *Catalog) FragmentIDs(ctx context.Context, videoID string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id FROM fragments WHERE video_id = ? ORDER BY id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteVideo removes the video row and its fragment rows.
func (c *Catalog) DeleteVideo(ctx context.Context, videoID string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fragments WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("failed to delete fragments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return tx.Commit()
}
