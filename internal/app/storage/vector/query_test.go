package vector

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/model"
)

func TestQueryValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0644))

	got, err := QueryValue(model.ModalityImage, path)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff}), got)

	got, err = QueryValue(model.ModalityText, path)
	require.NoError(t, err)
	assert.Equal(t, path, got, "text is never read from disk")

	got, err = QueryValue(model.ModalityAudio, "UklGRg==")
	require.NoError(t, err)
	assert.Equal(t, "UklGRg==", got)
}
