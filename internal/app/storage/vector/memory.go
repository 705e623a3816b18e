package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"video-search/internal/app/model"
)

// MemoryIndex is an in-process TextIndex with exact cosine ranking.
type MemoryIndex struct {
	mu   sync.RWMutex
	dim  int
	docs map[string]IndexedDocument
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]IndexedDocument)}
}

func (m *MemoryIndex) Ensure(ctx context.Context, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dim != 0 && m.dim != dim {
		return fmt.Errorf("index dimension is %d, got %d", m.dim, dim)
	}
	m.dim = dim
	return nil
}

func (m *MemoryIndex) Insert(ctx context.Context, docs []IndexedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		if len(d.Vector) != m.dim {
			return fmt.Errorf("document %s has dimension %d, index has %d", d.Fragment.ID, len(d.Vector), m.dim)
		}
		m.docs[d.Fragment.ID] = d
	}
	return nil
}

func (m *MemoryIndex) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.docs, id)
	}
	return nil
}

func (m *MemoryIndex) Drop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]IndexedDocument)
	m.dim = 0
	return nil
}

// Search ranks by ascending cosine distance; ties keep id order.
func (m *MemoryIndex) Search(ctx context.Context, vector []float32, limit int, videoID string) ([]model.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]model.Result, 0, len(m.docs))
	for _, d := range m.docs {
		if videoID != "" && d.Fragment.VideoID != videoID {
			continue
		}
		sim := cosineSimilarity(vector, d.Vector)
		results = append(results, model.Result{
			Fragment:  d.Fragment,
			Distance:  1 - sim,
			Certainty: (1 + sim) / 2,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Fragment.ID < results[j].Fragment.ID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryIndex) Close() error { return nil }

// Len reports the number of stored documents.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
