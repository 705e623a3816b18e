package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"video-search/internal/app/model"
)

// FileName is the transcription document stored beside the extraction output.
const FileName = "transcription.json"

// LoadTranscription reads a transcription document. Only segment text and bounds are required.
func LoadTranscription(path string) (*model.Transcription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t model.Transcription
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid transcription %s: %w", path, err)
	}
	return &t, nil
}

// SaveTranscription writes t as indented JSON, creating parent directories.
func SaveTranscription(path string, t *model.Transcription) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
