package vector

import (
	"context"

	"video-search/internal/app/model"
)

// Kind distinguishes the store variants.
type Kind string

const (
	// SingleModality stores text only.
	SingleModality Kind = "single_modality"
	// MultiModal stores text, image and audio fragments in one collection.
	MultiModal Kind = "multimodal"
)

// Store is the contract shared by both store variants.
type Store interface {
	Kind() Kind
	Add(ctx context.Context, fragments []model.Fragment) (*InsertReport, error)
	Delete(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context) error
	Search(ctx context.Context, q Query) ([]model.Result, error)
	Close() error
}

// Query is one similarity request.
// Output restricts hits to one media type; empty means any. Limit 0 uses the store default.
type Query struct {
	Value   string
	Input   model.Modality
	Output  model.Modality
	VideoID string
	Limit   int
}

// Vectorizer turns a query value of some modality into an embedding vector.
type Vectorizer interface {
	Vectorize(ctx context.Context, modality model.Modality, value string) ([]float32, error)
}

// IndexedDocument is a text fragment with its embedding.
type IndexedDocument struct {
	Fragment model.Fragment
	Vector   []float32
}

// TextIndex is a vector index backend for the text-only store.
type TextIndex interface {
	// Ensure creates the collection for vectors of dim if it does not exist.
	Ensure(ctx context.Context, dim int) error
	Insert(ctx context.Context, docs []IndexedDocument) error
	Delete(ctx context.Context, ids []string) error
	// Drop removes the collection and all documents in it.
	Drop(ctx context.Context) error
	Search(ctx context.Context, vector []float32, limit int, videoID string) ([]model.Result, error)
	Close() error
}

// SearchOptions narrows a backend search.
type SearchOptions struct {
	Limit     int
	MediaType model.Modality
	VideoID   string
}

// MultimodalBackend is a vector database that vectorizes some modalities itself.
type MultimodalBackend interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, schema CollectionSchema) error
	DeleteCollection(ctx context.Context, name string) error
	InsertMany(ctx context.Context, collection string, fragments []model.Fragment) error
	DeleteByIDs(ctx context.Context, collection string, ids []string) error

	// NativeModalities lists the query modalities the backend can vectorize itself.
	NativeModalities() []model.Modality
	NearNative(ctx context.Context, collection string, modality model.Modality, value string, opts SearchOptions) ([]model.Result, error)
	NearVector(ctx context.Context, collection string, vector []float32, opts SearchOptions) ([]model.Result, error)

	Close() error
}
