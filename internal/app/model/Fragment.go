package model

import (
	"fmt"
	"strings"
)

// Modality is the media type of a fragment or a query.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
)

// Modalities lists every supported modality in canonical order.
var Modalities = []Modality{ModalityText, ModalityImage, ModalityAudio}

// ParseModality accepts text, image or audio in any case.
func ParseModality(s string) (Modality, error) {
	switch m := Modality(strings.ToLower(strings.TrimSpace(s))); m {
	case ModalityText, ModalityImage, ModalityAudio:
		return m, nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

func (m Modality) String() string { return string(m) }

// Fragment is the unit stored in a vector collection.
// Payload holds the raw text for text fragments and base64 content otherwise.
type Fragment struct {
	ID          string   `json:"id,omitempty"`
	Path        string   `json:"path"`
	Payload     string   `json:"payload"`
	MediaType   Modality `json:"media_type"`
	VideoID     string   `json:"video_id"`
	TimestampMs int64    `json:"timestamp"`
	StartSec    float64  `json:"start_timestamp"`
	EndSec      float64  `json:"end_timestamp"`
}

// StartSeconds returns the fragment start in seconds.
// Text fragments keep their exact composite bounds; other fragments fall back to TimestampMs.
func (f Fragment) StartSeconds() float64 {
	if f.StartSec != 0 || f.TimestampMs == 0 {
		return f.StartSec
	}
	return float64(f.TimestampMs) / 1000
}

// Result is one ranked hit. Lower distance is more similar.
type Result struct {
	Fragment  Fragment `json:"fragment"`
	Distance  float32  `json:"distance"`
	Certainty float32  `json:"certainty"`
}
