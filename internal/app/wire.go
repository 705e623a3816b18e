//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"video-search/internal/api/v1/services"
	"video-search/internal/app/ingest"
	"video-search/internal/app/repository"
	"video-search/internal/app/retrieval"
	"video-search/internal/app/storage/vector"
	"video-search/internal/config"
)

// InitializeStore opens the configured vector store
func InitializeStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (vector.Store, func(), error) {
	wire.Build(ConfigSet, StoreSet)
	return nil, nil, nil
}

// InitializeEngine opens the store and wraps it in a retrieval engine
func InitializeEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*retrieval.Engine, func(), error) {
	wire.Build(ConfigSet, StoreSet, retrieval.NewEngine)
	return nil, nil, nil
}

// InitializeCatalog opens the ingest catalog
func InitializeCatalog(ctx context.Context, cfg *config.Config) (repository.CatalogDAO, func(), error) {
	wire.Build(ProvideSettings, ProvideCatalog)
	return nil, nil, nil
}

// InitializePipeline builds the ingestion pipeline with every configured collaborator
func InitializePipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger, progress *ingest.ProgressManager) (*ingest.Pipeline, func(), error) {
	wire.Build(ConfigSet, StoreSet, IngestSet)
	return nil, nil, nil
}

// InitializeSearchService builds the service behind the HTTP API
func InitializeSearchService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.SearchService, func(), error) {
	wire.Build(ConfigSet, StoreSet, ProvideCatalog, SearchSet)
	return nil, nil, nil
}
