package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "text-embedding-004"

// GeminiProvider implements EmbeddingProvider using Google Gemini API
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiProvider creates a new Gemini embedding provider
func NewGeminiProvider(ctx context.Context, apiKey, model string, dimension int) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
		dimension = 768
	}
	return &GeminiProvider{client: client, model: model, dimension: dimension}, nil
}

// GenerateEmbedding generates an embedding using Gemini API
func (g *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text provided")
	}

	dim := int32(g.dimension)
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding data returned from Gemini")
	}
	return resp.Embeddings[0].Values, nil
}

// GetProviderInfo returns information about the Gemini provider
func (g *GeminiProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "gemini",
		Model:     g.model,
		Dimension: g.dimension,
	}
}
