package vector

import (
	"encoding/base64"
	"fmt"
	"os"

	"video-search/internal/app/model"
)

// QueryValue prepares a query value for the store. Text is used as is. Image and audio
// values naming an existing file are replaced by its base64 content; anything else is
// assumed to be base64 already.
func QueryValue(m model.Modality, value string) (string, error) {
	if m == model.ModalityText {
		return value, nil
	}
	info, err := os.Stat(value)
	if err != nil || info.IsDir() {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("failed to read %s query file: %w", m, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
