package media

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"video-search/internal/app/model"
)

// Output layout of one extraction directory.
const (
	MetadataFile   = "video_metadata.json"
	FrameTableFile = "frames_metadata.csv"
	FramesDir      = "frames"
	AudioFile      = "audio.wav"
)

var frameTableHeader = []string{"frame_id", "timestamp_ms", "write_status"}

// WriteVideoMetadata persists meta as indented JSON.
func WriteVideoMetadata(path string, meta model.VideoMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadVideoMetadata loads a video_metadata.json file.
func ReadVideoMetadata(path string) (*model.VideoMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta model.VideoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid video metadata %s: %w", path, err)
	}
	return &meta, nil
}

// WriteFrameTable writes frame records with a header row.
func WriteFrameTable(path string, records []model.FrameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameTableHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.FrameID, strconv.FormatInt(r.TimestampMs, 10), strconv.FormatBool(r.WriteStatus)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ReadFrameTable reads a frames_metadata.csv file.
func ReadFrameTable(path string) ([]model.FrameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid frame table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]model.FrameRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(frameTableHeader) {
			return nil, fmt.Errorf("frame table %s row %d: expected %d columns, got %d", path, i+1, len(frameTableHeader), len(row))
		}
		ts, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("frame table %s row %d: %w", path, i+1, err)
		}
		ok, err := strconv.ParseBool(row[2])
		if err != nil {
			return nil, fmt.Errorf("frame table %s row %d: %w", path, i+1, err)
		}
		records = append(records, model.FrameRecord{FrameID: row[0], TimestampMs: ts, WriteStatus: ok})
	}
	return records, nil
}
