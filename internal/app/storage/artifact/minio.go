// Package artifact uploads extraction output to object storage.
package artifact

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"video-search/internal/app/logging"
)

// objectAPI is the subset of minio.Client used by Store.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store uploads per-video artifact directories (frames, audio, metadata) to a bucket.
type Store struct {
	client objectAPI
	bucket string
	logger *zap.Logger
}

// NewStore connects to MinIO and creates the bucket if it is missing.
func NewStore(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return newStore(ctx, client, cfg.Bucket, logger)
}

func newStore(ctx context.Context, client objectAPI, bucket string, logger *zap.Logger) (*Store, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return &Store{client: client, bucket: bucket, logger: logging.OrNop(logger)}, nil
}

// UploadDir uploads every regular file under dir to <videoID>/<relative path>
// and returns the number of objects written.
func (s *Store) UploadDir(ctx context.Context, videoID, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := ObjectKey(videoID, rel)
		_, err = s.client.FPutObject(ctx, s.bucket, key, p, minio.PutObjectOptions{
			ContentType:  contentType(p),
			UserMetadata: map[string]string{"video-id": videoID},
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	s.logger.Info("artifacts uploaded",
		zap.String("bucket", s.bucket),
		zap.String("video_id", videoID),
		zap.Int("objects", uploaded))
	return uploaded, nil
}

// ObjectKey builds the object name of a file relative to a video's output directory.
func ObjectKey(videoID, rel string) string {
	return path.Join(videoID, filepath.ToSlash(rel))
}

func contentType(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
