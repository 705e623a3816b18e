package vector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"video-search/internal/app/errors"
	"video-search/internal/app/logging"
	"video-search/internal/app/metrics"
	"video-search/internal/app/model"
)

// DefaultBatchSize is used when BatchInsert is given a non-positive size.
const DefaultBatchSize = 100

// Strategy names reported in logs and metrics.
const (
	StrategyNative    = "native"
	StrategyVectorize = "vectorize"
)

type queryStrategy struct {
	name string
	run  func(ctx context.Context, s *MultimodalStore, q Query, opts SearchOptions) ([]model.Result, error)
}

// MultimodalOptions configures a MultimodalStore.
type MultimodalOptions struct {
	Collection     string
	EfConstruction int
	BatchSize      int
	Limit          int
}

// MultimodalStore keeps text, image and audio fragments in one backend collection.
//
// Each query modality is served by a strategy chosen once at construction: modalities the
// backend vectorizes itself go to NearNative, all others are turned into a vector by the
// external Vectorizer and go to NearVector.
type MultimodalStore struct {
	backend    MultimodalBackend
	vectorizer Vectorizer
	collection string
	ef         int
	batchSize  int
	limit      int
	logger     *zap.Logger
	strategies map[model.Modality]queryStrategy
	onBatch    func(done, total int)
}

// NewMultimodalStore creates a store over backend. vectorizer may be nil, in which case
// modalities the backend cannot vectorize are rejected at query time.
func NewMultimodalStore(backend MultimodalBackend, vectorizer Vectorizer, opts MultimodalOptions, logger *zap.Logger) *MultimodalStore {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	s := &MultimodalStore{
		backend:    backend,
		vectorizer: vectorizer,
		collection: opts.Collection,
		ef:         opts.EfConstruction,
		batchSize:  opts.BatchSize,
		limit:      opts.Limit,
		logger:     logging.OrNop(logger),
	}
	s.strategies = s.buildStrategies()
	return s
}

func (s *MultimodalStore) buildStrategies() map[model.Modality]queryStrategy {
	native := lo.SliceToMap(s.backend.NativeModalities(), func(m model.Modality) (model.Modality, bool) {
		return m, true
	})

	strategies := make(map[model.Modality]queryStrategy, len(model.Modalities))
	for _, m := range model.Modalities {
		switch {
		case native[m]:
			strategies[m] = queryStrategy{name: StrategyNative, run: nearNative}
		case s.vectorizer != nil:
			strategies[m] = queryStrategy{name: StrategyVectorize, run: nearVectorized}
		}
	}
	return strategies
}

func nearNative(ctx context.Context, s *MultimodalStore, q Query, opts SearchOptions) ([]model.Result, error) {
	return s.backend.NearNative(ctx, s.collection, q.Input, q.Value, opts)
}

func nearVectorized(ctx context.Context, s *MultimodalStore, q Query, opts SearchOptions) ([]model.Result, error) {
	vector, err := s.vectorizer.Vectorize(ctx, q.Input, q.Value)
	if err != nil {
		return nil, err
	}
	return s.backend.NearVector(ctx, s.collection, vector, opts)
}

// Strategy reports which strategy serves queries of modality m, or "" if none does.
func (s *MultimodalStore) Strategy(m model.Modality) string {
	return s.strategies[m].name
}

// OnBatch registers a callback invoked after every insert batch.
func (s *MultimodalStore) OnBatch(fn func(done, total int)) {
	s.onBatch = fn
}

func (s *MultimodalStore) Kind() Kind { return MultiModal }

// Collection is the name of the collection the store reads and writes.
func (s *MultimodalStore) Collection() string { return s.collection }

// CreateCollection declares the collection schema unless the collection already exists.
func (s *MultimodalStore) CreateCollection(ctx context.Context, name string) error {
	exists, err := s.backend.CollectionExists(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "checking collection %s", name)
	}
	if exists {
		s.logger.Debug("collection exists", zap.String("collection", name))
		return nil
	}
	if err := s.backend.CreateCollection(ctx, DefaultSchema(name, s.ef)); err != nil {
		return errors.Wrapf(err, "creating collection %s", name)
	}
	s.logger.Info("collection created", zap.String("collection", name))
	return nil
}

// GetCollection returns a store bound to an existing collection.
func (s *MultimodalStore) GetCollection(ctx context.Context, name string) (*MultimodalStore, error) {
	exists, err := s.backend.CollectionExists(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "checking collection %s", name)
	}
	if !exists {
		return nil, errors.Wrapf(errors.ErrCollectionNotFound, "collection %s", name)
	}
	bound := *s
	bound.collection = name
	return &bound, nil
}

// DeleteCollection deletes the collection if it exists.
func (s *MultimodalStore) DeleteCollection(ctx context.Context, name string) error {
	exists, err := s.backend.CollectionExists(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "checking collection %s", name)
	}
	if !exists {
		return nil
	}
	if err := s.backend.DeleteCollection(ctx, name); err != nil {
		return errors.Wrapf(err, "deleting collection %s", name)
	}
	s.logger.Info("collection deleted", zap.String("collection", name))
	return nil
}

// BatchInsert submits items in sequential batches of at most batchSize.
// A failed batch is logged and recorded; the remaining batches are still submitted.
func (s *MultimodalStore) BatchInsert(ctx context.Context, items []model.Fragment, batchSize int) *InsertReport {
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	report := &InsertReport{Total: len(items)}
	prepared := make([]model.Fragment, len(items))
	for i, f := range items {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		prepared[i] = f
		report.IDs = append(report.IDs, f.ID)
	}

	batches := lo.Chunk(prepared, batchSize)
	for i, batch := range batches {
		err := ctx.Err()
		if err == nil {
			err = s.backend.InsertMany(ctx, s.collection, batch)
		}
		metrics.RecordBatch(string(MultiModal), err)

		if err != nil {
			s.logger.Error("insert batch failed",
				zap.String("collection", s.collection),
				zap.Int("batch", i),
				zap.Int("size", len(batch)),
				zap.Error(errors.Mark(errors.ErrInsertBatch, err, "batch %d", i)))
			report.Failed = append(report.Failed, BatchFailure{Index: i, Offset: i * batchSize, Size: len(batch), Err: err})
		} else {
			report.Succeeded = append(report.Succeeded, i)
			for _, f := range batch {
				metrics.FragmentsInsertedTotal.WithLabelValues(string(MultiModal), string(f.MediaType)).Inc()
			}
		}
		if s.onBatch != nil {
			s.onBatch(i+1, len(batches))
		}
	}

	s.logger.Info("batch insert finished",
		zap.String("collection", s.collection),
		zap.Int("items", len(items)),
		zap.Int("batches", len(batches)),
		zap.Int("failed_batches", len(report.Failed)))
	return report
}

// Add creates the collection if needed and batch-inserts the fragments.
func (s *MultimodalStore) Add(ctx context.Context, fragments []model.Fragment) (*InsertReport, error) {
	if err := s.CreateCollection(ctx, s.collection); err != nil {
		return nil, err
	}
	return s.BatchInsert(ctx, fragments, s.batchSize), nil
}

// Delete removes fragments by id.
func (s *MultimodalStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.backend.DeleteByIDs(ctx, s.collection, ids)
}

// DeleteAll deletes the whole collection.
func (s *MultimodalStore) DeleteAll(ctx context.Context) error {
	return s.DeleteCollection(ctx, s.collection)
}

// Query searches by a value of modality input, optionally restricting hits to output.
func (s *MultimodalStore) Query(ctx context.Context, value string, input, output model.Modality) ([]model.Result, error) {
	return s.Search(ctx, Query{Value: value, Input: input, Output: output})
}

// Search dispatches q to the strategy registered for its input modality.
func (s *MultimodalStore) Search(ctx context.Context, q Query) ([]model.Result, error) {
	strategy, ok := s.strategies[q.Input]
	if !ok {
		err := errors.Wrapf(errors.ErrUnsupportedModality, "no query strategy for %q input", q.Input)
		metrics.RecordQuery(string(q.Input), "none", 0, err)
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.limit
	}
	opts := SearchOptions{Limit: limit, MediaType: q.Output, VideoID: q.VideoID}

	start := time.Now()
	results, err := strategy.run(ctx, s, q, opts)
	metrics.RecordQuery(string(q.Input), strategy.name, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query served",
		zap.String("input", string(q.Input)),
		zap.String("output", string(q.Output)),
		zap.String("strategy", strategy.name),
		zap.Int("hits", len(results)))
	return results, nil
}

func (s *MultimodalStore) Close() error {
	return s.backend.Close()
}
