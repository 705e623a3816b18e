package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vcs.yaml")
	content := "log_level: error\n" +
		"store:\n  kind: text\n  text_index: memory\n" +
		"embedding:\n  provider: mock\n  dimension: 8\n" +
		"catalog:\n  path: " + filepath.Join(dir, "catalog.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "v0.1.0")
}

func TestSearchOnEmptyIndex(t *testing.T) {
	out, err := run(t, "--config", writeSettings(t), "search", "--query", "gradient descent")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching content is found!")
}

func TestCollectionDeleteOnTextStore(t *testing.T) {
	out, err := run(t, "--config", writeSettings(t), "collection", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "text collection deleted")
}
