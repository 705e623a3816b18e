package provider

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Options selects and configures an embedding provider.
type Options struct {
	Name      string
	Model     string
	Dimension int
	OpenAIKey string
	GeminiKey string
}

// New builds the provider named in opts.
func New(ctx context.Context, opts Options) (EmbeddingProvider, error) {
	switch opts.Name {
	case "openai":
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires OPENAI_API_KEY")
		}
		return NewOpenAIProvider(openai.NewClient(opts.OpenAIKey), opts.Model, opts.Dimension), nil
	case "gemini":
		if opts.GeminiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires GEMINI_API_KEY")
		}
		return NewGeminiProvider(ctx, opts.GeminiKey, opts.Model, opts.Dimension)
	case "mock":
		dim := opts.Dimension
		if dim <= 0 {
			dim = 768
		}
		return NewMockProvider(dim), nil
	}
	return nil, fmt.Errorf("unsupported embedding provider: %s", opts.Name)
}
