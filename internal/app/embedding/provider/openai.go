package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements EmbeddingProvider using OpenAI API
type OpenAIProvider struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

// NewOpenAIProvider creates a new OpenAI embedding provider.
// An empty model selects text-embedding-ada-002.
func NewOpenAIProvider(client *openai.Client, model string, dimension int) *OpenAIProvider {
	if model == "" {
		model = string(openai.AdaEmbeddingV2)
		dimension = 1536
	}
	return &OpenAIProvider{
		client:    client,
		model:     openai.EmbeddingModel(model),
		dimension: dimension,
	}
}

// GenerateEmbedding generates an embedding using OpenAI API
func (o *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateEmbeddings embeds all texts in a single request.
func (o *OpenAIProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("empty text provided")
		}
	}

	request := openai.EmbeddingRequest{
		Model: o.model,
		Input: texts,
	}
	response, err := o.client.CreateEmbeddings(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(response.Data) != len(texts) {
		return nil, errors.New("embedding count mismatch in OpenAI response")
	}

	// results carry their input index and are not guaranteed to be ordered
	vectors := make([][]float32, len(texts))
	for _, d := range response.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, errors.New("embedding index out of range in OpenAI response")
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// GetProviderInfo returns information about the OpenAI provider
func (o *OpenAIProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "openai",
		Model:     string(o.model),
		Dimension: o.dimension,
	}
}
