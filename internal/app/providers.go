package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"video-search/internal/api/v1/services"
	"video-search/internal/app/embedding/provider"
	"video-search/internal/app/ingest"
	"video-search/internal/app/media"
	"video-search/internal/app/repository"
	"video-search/internal/app/repository/sqlite"
	"video-search/internal/app/retrieval"
	"video-search/internal/app/storage/artifact"
	"video-search/internal/app/storage/vector"
	"video-search/internal/app/transcript"
	"video-search/internal/app/vectorize"
	"video-search/internal/config"
)

// ConfigSet splits the loaded configuration into its parts
var ConfigSet = wire.NewSet(
	ProvideSettings,
	ProvideAPIKeys,
)

// StoreSet builds the configured vector store
var StoreSet = wire.NewSet(
	ProvideStore,
)

// IngestSet builds the ingestion pipeline and its optional collaborators
var IngestSet = wire.NewSet(
	ProvideExtractor,
	wire.Bind(new(ingest.Extractor), new(*media.Extractor)),
	ProvideTranscriber,
	ProvideCatalog,
	ProvideUploader,
	ProvidePipelineOptions,
	ProvidePipeline,
)

// SearchSet builds the query side
var SearchSet = wire.NewSet(
	retrieval.NewEngine,
	services.NewSearchService,
)

func ProvideSettings(cfg *config.Config) *config.Settings {
	return cfg.Settings
}

func ProvideAPIKeys(cfg *config.Config) *config.APIKeys {
	return cfg.Keys
}

// ProvideStore builds the text-only or the multimodal store named in the settings.
func ProvideStore(ctx context.Context, s *config.Settings, keys *config.APIKeys, logger *zap.Logger) (vector.Store, func(), error) {
	switch s.Store.Kind {
	case "text":
		return provideTextStore(ctx, s, keys, logger)
	case "multimodal":
		return provideMultimodalStore(ctx, s, logger)
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", s.Store.Kind)
}

func provideTextStore(ctx context.Context, s *config.Settings, keys *config.APIKeys, logger *zap.Logger) (vector.Store, func(), error) {
	scheme, err := vector.ParseIDScheme(s.Store.IDScheme)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := provider.New(ctx, provider.Options{
		Name:      s.Embedding.Provider,
		Model:     s.Embedding.Model,
		Dimension: s.Embedding.Dimension,
		OpenAIKey: keys.OpenAI,
		GeminiKey: keys.Gemini,
	})
	if err != nil {
		return nil, nil, err
	}
	index, err := provideTextIndex(ctx, s)
	if err != nil {
		return nil, nil, err
	}

	store := vector.NewTextStore(embedder, index, vector.TextStoreOptions{
		IDScheme: scheme,
		Limit:    s.Store.Limit,
	}, logger)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close text store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func provideTextIndex(ctx context.Context, s *config.Settings) (vector.TextIndex, error) {
	switch s.Store.TextIndex {
	case "milvus":
		return vector.NewMilvusIndex(ctx, vector.MilvusConfig{
			Address:        s.Milvus.Address,
			Username:       s.Milvus.Username,
			Password:       s.Milvus.Password,
			Collection:     s.Store.Collection,
			M:              s.Milvus.M,
			EfConstruction: s.Milvus.EfConstruction,
			Ef:             s.Milvus.Ef,
		})
	case "pgvector":
		return vector.OpenPgVectorIndex(s.Postgres.DSN, s.Postgres.Table)
	case "memory":
		return vector.NewMemoryIndex(), nil
	}
	return nil, fmt.Errorf("unknown text index %q", s.Store.TextIndex)
}

func provideMultimodalStore(ctx context.Context, s *config.Settings, logger *zap.Logger) (vector.Store, func(), error) {
	backend, err := vector.NewWeaviateBackend(vector.WeaviateConfig{
		Host:   s.Weaviate.Host,
		Scheme: s.Weaviate.Scheme,
		APIKey: s.Weaviate.APIKey,
	})
	if err != nil {
		return nil, nil, err
	}
	vectorizer, closeVectorizer := ProvideVectorizer(ctx, s, logger)

	store := vector.NewMultimodalStore(backend, vectorizer, vector.MultimodalOptions{
		Collection:     s.Store.Collection,
		EfConstruction: s.Weaviate.EfConstruction,
		BatchSize:      s.Store.BatchSize,
		Limit:          s.Store.Limit,
	}, logger)
	cleanup := func() {
		closeVectorizer()
		if err := store.Close(); err != nil {
			logger.Warn("failed to close multimodal store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideVectorizer returns the external vectorization client, cached in Redis when an address
// is configured. Without a URL it returns nil and the store answers audio queries with
// ErrUnsupportedModality. An unreachable Redis disables the cache instead of failing.
func ProvideVectorizer(ctx context.Context, s *config.Settings, logger *zap.Logger) (vector.Vectorizer, func()) {
	if s.Vectorizer.URL == "" {
		return nil, func() {}
	}
	var v vector.Vectorizer = vectorize.NewHTTPVectorizer(s.Vectorizer.URL,
		time.Duration(s.Vectorizer.TimeoutSeconds)*time.Second, logger)
	if s.Redis.Addr == "" {
		return v, func() {}
	}

	client, err := vectorize.NewRedisClient(ctx, s.Redis.Addr, s.Redis.Password, s.Redis.DB)
	if err != nil {
		logger.Warn("redis not available, vectorizer cache disabled", zap.Error(err))
		return v, func() {}
	}
	cached := vectorize.NewCachedVectorizer(v, client, time.Duration(s.Redis.TTLMinutes)*time.Minute, logger)
	return cached, func() { _ = client.Close() }
}

func ProvideExtractor(s *config.Settings, logger *zap.Logger) *media.Extractor {
	return media.NewExtractor(media.NewFFmpegDecoder(s.Extraction.FFmpegPath, s.Extraction.FFprobePath), logger)
}

// ProvideTranscriber returns nil without an OpenAI key; ingestion then needs an existing transcription.json.
func ProvideTranscriber(s *config.Settings, keys *config.APIKeys, logger *zap.Logger) transcript.Transcriber {
	if keys.OpenAI == "" {
		logger.Warn("OPENAI_API_KEY not set, transcription disabled")
		return nil
	}
	return transcript.NewWhisperTranscriber(openai.NewClient(keys.OpenAI), s.Transcription.Model)
}

func ProvideCatalog(ctx context.Context, s *config.Settings) (repository.CatalogDAO, func(), error) {
	catalog, err := sqlite.Open(ctx, s.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	return catalog, func() { _ = catalog.Close() }, nil
}

// ProvideUploader returns nil unless artifact upload is enabled.
func ProvideUploader(ctx context.Context, s *config.Settings, logger *zap.Logger) (ingest.ArtifactUploader, error) {
	if !s.Extraction.UploadArtifacts {
		return nil, nil
	}
	store, err := artifact.NewStore(ctx, artifact.Config{
		Endpoint:  s.MinIO.Endpoint,
		AccessKey: s.MinIO.AccessKey,
		SecretKey: s.MinIO.SecretKey,
		Bucket:    s.MinIO.Bucket,
		UseSSL:    s.MinIO.UseSSL,
	}, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func ProvidePipelineOptions(s *config.Settings) ingest.Options {
	return ingest.Options{
		FrameInterval: s.Extraction.FrameInterval,
		Granularities: s.Segmenter.Granularities,
		AudioChunkMs:  s.Extraction.AudioChunkMs,
		Language:      s.Transcription.Language,
	}
}

// ProvidePipeline assembles the pipeline, attaching only the collaborators that are configured.
func ProvidePipeline(
	extractor ingest.Extractor,
	store vector.Store,
	opts ingest.Options,
	transcriber transcript.Transcriber,
	catalog repository.CatalogDAO,
	uploader ingest.ArtifactUploader,
	progress *ingest.ProgressManager,
	logger *zap.Logger,
) *ingest.Pipeline {
	options := []ingest.Option{ingest.WithCatalog(catalog), ingest.WithProgress(progress)}
	if transcriber != nil {
		options = append(options, ingest.WithTranscriber(transcriber))
	}
	if uploader != nil {
		options = append(options, ingest.WithUploader(uploader))
	}
	return ingest.NewPipeline(extractor, store, opts, logger, options...)
}
