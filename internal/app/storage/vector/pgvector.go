package vector

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"video-search/internal/app/model"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PgVectorIndex stores text fragment vectors in PostgreSQL with the pgvector extension.
type PgVectorIndex struct {
	db    *sql.DB
	table string
}

// OpenPgVectorIndex opens a PostgreSQL connection for the given DSN.
func OpenPgVectorIndex(dsn, table string) (*PgVectorIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	idx, err := NewPgVectorIndex(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// NewPgVectorIndex creates an index over an existing connection.
func NewPgVectorIndex(db *sql.DB, table string) (*PgVectorIndex, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PgVectorIndex{db: db, table: table}, nil
}

// Ensure creates the extension, table and HNSW cosine index if missing.
func (p *PgVectorIndex) Ensure(ctx context.Context, dim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL,
			media_type TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			timestamp_ms BIGINT NOT NULL,
			start_sec DOUBLE PRECISION NOT NULL,
			end_sec DOUBLE PRECISION NOT NULL,
			embedding vector(%d) NOT NULL
		)`, p.table, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`, p.table, p.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_video_id_idx ON %s (video_id)`, p.table, p.table),
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare pgvector table: %w", err)
		}
	}
	return nil
}

// Insert writes documents one row at a time; rows written before a failure remain.
func (p *PgVectorIndex) Insert(ctx context.Context, docs []IndexedDocument) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, video_id, media_type, path, content, timestamp_ms, start_sec, end_sec, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.table)

	for _, d := range docs {
		f := d.Fragment
		_, err := p.db.ExecContext(ctx, query,
			f.ID, f.VideoID, string(f.MediaType), f.Path, f.Payload,
			f.TimestampMs, f.StartSec, f.EndSec, vectorToString(d.Vector))
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %w", f.ID, err)
		}
	}
	return nil
}

func (p *PgVectorIndex) Delete(ctx context.Context, ids []string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, p.table)
	if _, err := p.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

func (p *PgVectorIndex) Drop(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, p.table)); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return nil
}

// Search orders by the pgvector cosine distance operator <=>.
func (p *PgVectorIndex) Search(ctx context.Context, vector []float32, limit int, videoID string) ([]model.Result, error) {
	args := []interface{}{vectorToString(vector)}
	where := ""
	if videoID != "" {
		args = append(args, videoID)
		where = "WHERE video_id = $2"
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, video_id, media_type, path, content, timestamp_ms, start_sec, end_sec,
			embedding <=> $1 AS distance
		FROM %s
		%s
		ORDER BY distance
		LIMIT $%d
	`, p.table, where, len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42P01" {
			// undefined_table: nothing indexed yet
			return []model.Result{}, nil
		}
		return nil, fmt.Errorf("failed to execute vector search query: %w", err)
	}
	defer rows.Close()

	results := []model.Result{}
	for rows.Next() {
		var r model.Result
		var mediaType string
		var distance float64
		err := rows.Scan(&r.Fragment.ID, &r.Fragment.VideoID, &mediaType, &r.Fragment.Path,
			&r.Fragment.Payload, &r.Fragment.TimestampMs, &r.Fragment.StartSec, &r.Fragment.EndSec, &distance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Fragment.MediaType = model.Modality(mediaType)
		r.Distance = float32(distance)
		r.Certainty = float32(1 - distance/2)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}
	return results, nil
}

func (p *PgVectorIndex) Close() error {
	return p.db.Close()
}

// vectorToString converts float32 slice to pgvector string format
func vectorToString(vector []float32) string {
	if len(vector) == 0 {
		return "[]"
	}

	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = strconv.FormatFloat(float64(v), 'f', 6, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
