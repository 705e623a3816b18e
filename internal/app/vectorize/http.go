// Package vectorize calls the external multimodal vectorization service.
package vectorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"video-search/internal/app/errors"
	"video-search/internal/app/logging"
	"video-search/internal/app/model"
)

// HTTPVectorizer posts query values to {base}/vectorize and reads back one vector.
//
// Request:  {"audio": ["<base64 wav>"]}
// Response: {"audioVectors": [[0.1, ...]]}
type HTTPVectorizer struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPVectorizer creates a client for the service at baseURL.
func NewHTTPVectorizer(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPVectorizer {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &HTTPVectorizer{
		endpoint: strings.TrimRight(baseURL, "/") + "/vectorize",
		client:   &http.Client{Timeout: timeout},
		logger:   logging.OrNop(logger),
	}
}

// Vectorize returns the first vector of the response. Any transport failure,
// non-2xx status or empty vector is an ErrVectorizationService error.
func (v *HTTPVectorizer) Vectorize(ctx context.Context, modality model.Modality, value string) ([]float32, error) {
	body, err := json.Marshal(map[string][]string{string(modality): {value}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.ErrVectorizationService, err, "POST %s", v.endpoint)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.ErrVectorizationService, err, "reading response")
	}

	v.logger.Debug("vectorize request",
		zap.String("modality", string(modality)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Mark(errors.ErrVectorizationService, nil,
			"server returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var result map[string][][]float32
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Mark(errors.ErrVectorizationService, err, "decoding response")
	}
	vectors := result[string(modality)+"Vectors"]
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.Mark(errors.ErrVectorizationService, nil, "response has no %sVectors", modality)
	}
	return vectors[0], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
