package provider

import (
	"context"
	"fmt"
)

// EmbeddingProvider defines the interface for all embedding providers
type EmbeddingProvider interface {
	// GenerateEmbedding generates an embedding vector for the given text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GetProviderInfo returns metadata about the provider
	GetProviderInfo() ProviderInfo
}

// BatchEmbeddingProvider embeds several texts in one request.
type BatchEmbeddingProvider interface {
	EmbeddingProvider
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderInfo contains metadata about an embedding provider
type ProviderInfo struct {
	Name      string // Provider name (e.g., "openai", "gemini")
	Model     string // Model identifier (e.g., "text-embedding-ada-002")
	Dimension int    // Embedding dimension (e.g., 1536 for OpenAI, 768 for Gemini)
}

// EmbedAll embeds texts in order, in one request when the provider supports batching.
func EmbedAll(ctx context.Context, p EmbeddingProvider, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if bp, ok := p.(BatchEmbeddingProvider); ok {
		vectors, err := bp.GenerateEmbeddings(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%s returned %d embeddings for %d texts", p.GetProviderInfo().Name, len(vectors), len(texts))
		}
		return vectors, nil
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}
