// Package retrieval turns similarity hits into answers for callers.
package retrieval

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"video-search/internal/app/logging"
	"video-search/internal/app/model"
	"video-search/internal/app/storage/vector"
)

const (
	MessageNotFound = "No matching content is found!"
	MessageFound    = "Successfully retrieved similar content"
)

// TimestampResult is the answer to a timestamp lookup. Timestamp is nil when nothing matched.
type TimestampResult struct {
	Timestamp *float64 `json:"timestamp"`
	Query     string   `json:"query"`
	VideoID   string   `json:"video_id"`
	Message   string   `json:"message"`
}

// Found reports whether the lookup matched a fragment.
func (r TimestampResult) Found() bool { return r.Timestamp != nil }

// SearchTimestamp runs a text search restricted to videoID (empty means all videos)
// and returns the start of the best matching fragment.
func SearchTimestamp(ctx context.Context, store vector.Store, videoID, query string) (TimestampResult, error) {
	result := TimestampResult{Query: query, VideoID: videoID}

	q := vector.Query{Value: query, Input: model.ModalityText, VideoID: videoID}
	if store.Kind() == vector.MultiModal {
		q.Output = model.ModalityText
	}
	hits, err := store.Search(ctx, q)
	if err != nil {
		return result, err
	}

	if len(hits) == 0 {
		result.Message = MessageNotFound
		return result, nil
	}
	ts := hits[0].Fragment.StartSeconds()
	result.Timestamp = &ts
	result.Message = MessageFound
	return result, nil
}

// Engine answers queries against one store.
type Engine struct {
	store  vector.Store
	logger *zap.Logger
}

// NewEngine creates an engine over store.
func NewEngine(store vector.Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logging.OrNop(logger)}
}

// Store returns the underlying store.
func (e *Engine) Store() vector.Store { return e.store }

// Search returns the start in seconds of the best match for query, and false when nothing matched.
func (e *Engine) Search(ctx context.Context, videoID, query string) (float64, bool, error) {
	res, err := e.Lookup(ctx, videoID, query)
	if err != nil || !res.Found() {
		return 0, false, err
	}
	return *res.Timestamp, true, nil
}

// Lookup is SearchTimestamp over the engine's store.
func (e *Engine) Lookup(ctx context.Context, videoID, query string) (TimestampResult, error) {
	res, err := SearchTimestamp(ctx, e.store, videoID, query)
	if err != nil {
		e.logger.Error("timestamp lookup failed", zap.String("video_id", videoID), zap.Error(err))
		return res, err
	}
	e.logger.Info("timestamp lookup",
		zap.String("video_id", videoID),
		zap.Bool("found", res.Found()),
		zap.String("query", query))
	return res, nil
}

// CrossModal issues one search per output modality concurrently and groups the hits.
// With no outputs given every modality is searched. The first failure cancels the rest.
func (e *Engine) CrossModal(ctx context.Context, value string, input model.Modality, outputs ...model.Modality) (map[model.Modality][]model.Result, error) {
	if len(outputs) == 0 {
		outputs = model.Modalities
	}

	var mu sync.Mutex
	grouped := make(map[model.Modality][]model.Result, len(outputs))

	g, gctx := errgroup.WithContext(ctx)
	for _, output := range outputs {
		output := output
		g.Go(func() error {
			hits, err := e.store.Search(gctx, vector.Query{Value: value, Input: input, Output: output})
			if err != nil {
				return err
			}
			mu.Lock()
			grouped[output] = FilterByModality(hits, output)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grouped, nil
}

// FilterByModality keeps results whose fragment has media type m, preserving order.
func FilterByModality(results []model.Result, m model.Modality) []model.Result {
	return lo.Filter(results, func(r model.Result, _ int) bool {
		return r.Fragment.MediaType == m
	})
}
