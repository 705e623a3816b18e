package vector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"video-search/internal/app/embedding/provider"
	"video-search/internal/app/errors"
	"video-search/internal/app/logging"
	"video-search/internal/app/metrics"
	"video-search/internal/app/model"
)

// DefaultLimit is the number of hits returned when a query does not set one.
const DefaultLimit = 10

// TextStore indexes text fragments embedded by a text embedding provider.
type TextStore struct {
	embedder provider.EmbeddingProvider
	index    TextIndex
	ids      IDScheme
	limit    int
	logger   *zap.Logger

	mu      sync.Mutex
	ensured bool
}

// TextStoreOptions configures a TextStore.
type TextStoreOptions struct {
	IDScheme IDScheme
	Limit    int
}

// NewTextStore creates a text-only store over index.
func NewTextStore(embedder provider.EmbeddingProvider, index TextIndex, opts TextStoreOptions, logger *zap.Logger) *TextStore {
	if opts.IDScheme == "" {
		opts.IDScheme = IDVideoUUID
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &TextStore{
		embedder: embedder,
		index:    index,
		ids:      opts.IDScheme,
		limit:    opts.Limit,
		logger:   logging.OrNop(logger),
	}
}

func (s *TextStore) Kind() Kind { return SingleModality }

// Add embeds every fragment and submits them to the index in one call.
// A failed submission is logged and reported as batch 0; documents the index accepted
// before the failure stay inserted.
func (s *TextStore) Add(ctx context.Context, fragments []model.Fragment) (*InsertReport, error) {
	for _, f := range fragments {
		if f.MediaType != model.ModalityText {
			return nil, errors.Wrapf(errors.ErrUnsupportedModality, "text store cannot hold %s fragments", f.MediaType)
		}
	}

	report := &InsertReport{Total: len(fragments)}
	if len(fragments) == 0 {
		return report, nil
	}

	docs := make([]IndexedDocument, len(fragments))
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		if f.ID == "" {
			f.ID = s.ids.NewID(f.VideoID)
		}
		docs[i].Fragment = f
		texts[i] = f.Payload
		report.IDs = append(report.IDs, f.ID)
	}

	err := s.insert(ctx, docs, texts)
	metrics.RecordBatch(string(SingleModality), err)
	if err != nil {
		s.logger.Error("text insert failed", zap.Int("documents", len(docs)), zap.Error(err))
		report.Failed = append(report.Failed, BatchFailure{Index: 0, Size: len(docs), Err: err})
		return report, nil
	}

	metrics.FragmentsInsertedTotal.WithLabelValues(string(SingleModality), string(model.ModalityText)).Add(float64(len(docs)))
	report.Succeeded = append(report.Succeeded, 0)
	return report, nil
}

func (s *TextStore) insert(ctx context.Context, docs []IndexedDocument, texts []string) error {
	vectors, err := provider.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return errors.Wrap(err, "embedding documents")
	}
	for i := range docs {
		docs[i].Vector = vectors[i]
	}
	if err := s.ensure(ctx, len(vectors[0])); err != nil {
		return err
	}
	return s.index.Insert(ctx, docs)
}

func (s *TextStore) ensure(ctx context.Context, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s.index.Ensure(ctx, dim); err != nil {
		return errors.Wrap(err, "preparing index")
	}
	s.ensured = true
	return nil
}

// Search ranks stored text by cosine distance to the embedded query text.
func (s *TextStore) Search(ctx context.Context, q Query) ([]model.Result, error) {
	start := time.Now()
	results, err := s.search(ctx, q)
	metrics.RecordQuery(string(q.Input), "embed", time.Since(start).Seconds(), err)
	return results, err
}

func (s *TextStore) search(ctx context.Context, q Query) ([]model.Result, error) {
	if q.Input != model.ModalityText {
		return nil, errors.Wrapf(errors.ErrUnsupportedModality, "text store cannot search by %s", q.Input)
	}
	if q.Output != "" && q.Output != model.ModalityText {
		return []model.Result{}, nil
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, q.Value)
	if err != nil {
		return nil, errors.Wrap(err, "embedding query")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.limit
	}
	return s.index.Search(ctx, vector, limit, q.VideoID)
}

// Delete removes documents by id.
func (s *TextStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.index.Delete(ctx, ids)
}

// DeleteAll drops the index collection; the next Add recreates it.
func (s *TextStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensured = false
	return s.index.Drop(ctx)
}

func (s *TextStore) Close() error {
	return s.index.Close()
}
