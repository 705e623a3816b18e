package model

// VideoMetadata is read once per extraction and persisted as video_metadata.json.
type VideoMetadata struct {
	FPS         float64 `json:"fps"`
	Width       int     `json:"frame_width"`
	Height      int     `json:"frame_height"`
	TotalFrames int     `json:"total_frames"`
}

// FrameRecord is one row of frames_metadata.csv.
type FrameRecord struct {
	FrameID     string
	TimestampMs int64
	WriteStatus bool
}

// VideoFile maps an input video to its identifier and output directory.
type VideoFile struct {
	ID        string
	Path      string
	OutputDir string
}
