package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-search/internal/app/model"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
}

// VideoID is the lower-cased file stem of a video path.
func VideoID(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// VideoIDsFromDir lists the videos in inputDir and assigns each an output directory under outputRoot.
func VideoIDsFromDir(inputDir, outputRoot string) ([]model.VideoFile, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	seen := make(map[string]string)
	var videos []model.VideoFile
	for _, entry := range entries {
		if entry.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(inputDir, entry.Name())
		id := VideoID(path)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("videos %s and %s map to the same id %q", prev, path, id)
		}
		seen[id] = path
		videos = append(videos, model.VideoFile{
			ID:        id,
			Path:      path,
			OutputDir: filepath.Join(outputRoot, id),
		})
	}

	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos, nil
}
