package services

import (
	"context"

	"video-search/internal/api/errors"
	"video-search/internal/app/model"
	"video-search/internal/app/repository"
	"video-search/internal/app/retrieval"
)

// SearchService answers HTTP search and catalog requests
type SearchService interface {
	SearchVideo(ctx context.Context, videoID, query string) (retrieval.TimestampResult, error)
	Query(ctx context.Context, value string, input model.Modality, outputs []model.Modality) (map[model.Modality][]model.Result, error)
	ListVideos(ctx context.Context) ([]repository.VideoRecord, error)
	GetVideo(ctx context.Context, videoID string) (*repository.VideoRecord, error)
}

type searchService struct {
	engine  *retrieval.Engine
	catalog repository.CatalogDAO
}

// NewSearchService creates a search service. catalog may be nil, in which case the
// catalog endpoints report the service as unavailable.
func NewSearchService(engine *retrieval.Engine, catalog repository.CatalogDAO) SearchService {
	return &searchService{engine: engine, catalog: catalog}
}

func (s *searchService) SearchVideo(ctx context.Context, videoID, query string) (retrieval.TimestampResult, error) {
	return s.engine.Lookup(ctx, videoID, query)
}

func (s *searchService) Query(ctx context.Context, value string, input model.Modality, outputs []model.Modality) (map[model.Modality][]model.Result, error) {
	return s.engine.CrossModal(ctx, value, input, outputs...)
}

func (s *searchService) ListVideos(ctx context.Context) ([]repository.VideoRecord, error) {
	if s.catalog == nil {
		return nil, errors.NewServiceUnavailableError("video catalog is not configured")
	}
	return s.catalog.ListVideos(ctx)
}

func (s *searchService) GetVideo(ctx context.Context, videoID string) (*repository.VideoRecord, error) {
	if s.catalog == nil {
		return nil, errors.NewServiceUnavailableError("video catalog is not configured")
	}
	return s.catalog.GetVideo(ctx, videoID)
}
