package provider

import (
	"context"
	"crypto/sha256"
	"errors"
	"strings"
)

// MockProvider produces deterministic embeddings from a SHA256 of the text.
// Identical texts get identical vectors, which is enough for offline indexing and tests.
type MockProvider struct {
	dimension int
}

// NewMockProvider creates a new mock provider with specified dimension
func NewMockProvider(dimension int) *MockProvider {
	return &MockProvider{dimension: dimension}
}

// GenerateEmbedding generates deterministic embeddings based on SHA256 hash
func (m *MockProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text provided")
	}

	hash := sha256.Sum256([]byte(text))
	embedding := make([]float32, m.dimension)

	// byte (0-255) to [-1, 1]
	for i := 0; i < m.dimension; i++ {
		embedding[i] = (float32(hash[i%len(hash)])/255.0)*2 - 1
	}

	return embedding, nil
}

// GetProviderInfo returns mock provider information
func (m *MockProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "mock",
		Model:     "mock-model",
		Dimension: m.dimension,
	}
}
