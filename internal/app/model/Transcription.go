package model

// TranscriptSegment is one atomic span produced by the transcription collaborator.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcription is the document stored as transcription.json next to the extraction output.
type Transcription struct {
	Text     string              `json:"text"`
	Language string              `json:"language,omitempty"`
	Segments []TranscriptSegment `json:"segments"`
}

// CompositeSegment is a run of consecutive segments merged into one retrieval unit.
type CompositeSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
