package dto

import (
	"strings"
	"time"

	"video-search/internal/api/errors"
	"video-search/internal/app/model"
	"video-search/internal/app/repository"
)

// SearchVideoRequest asks for the moment in a video where query is discussed
type SearchVideoRequest struct {
	VideoID string `json:"video_id" binding:"required"`
	Query   string `json:"query" binding:"required"`
}

// Validate rejects whitespace-only queries
func (r *SearchVideoRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.NewValidationError("Validation failed", map[string]string{"query": "is required"})
	}
	return nil
}

// SearchVideoResponse carries the start of the best matching fragment in seconds
type SearchVideoResponse struct {
	VideoID   string  `json:"video_id"`
	Timestamp float64 `json:"timestamp"`
}

// NotFoundResponse is returned when no fragment matched
type NotFoundResponse struct {
	Detail string `json:"detail"`
}

// QueryRequest is a cross-modal similarity query
type QueryRequest struct {
	Value   string   `json:"value" binding:"required"`
	Input   string   `json:"input" binding:"required,oneof=text image audio"`
	Outputs []string `json:"outputs" binding:"omitempty,dive,oneof=text image audio"`
}

// Modalities parses Input and Outputs. Outputs may be empty.
func (r *QueryRequest) Modalities() (model.Modality, []model.Modality, error) {
	input, err := model.ParseModality(r.Input)
	if err != nil {
		return "", nil, errors.NewBadRequestError(err.Error())
	}
	outputs := make([]model.Modality, 0, len(r.Outputs))
	for _, o := range r.Outputs {
		m, err := model.ParseModality(o)
		if err != nil {
			return "", nil, errors.NewBadRequestError(err.Error())
		}
		outputs = append(outputs, m)
	}
	return input, outputs, nil
}

// QueryHit is one ranked fragment without its payload
type QueryHit struct {
	Path      string  `json:"path"`
	VideoID   string  `json:"video_id"`
	MediaType string  `json:"media_type"`
	Timestamp float64 `json:"timestamp"`
	Distance  float32 `json:"distance"`
}

// QueryResponse groups hits by output modality
type QueryResponse struct {
	Results map[string][]QueryHit `json:"results"`
}

// NewQueryResponse converts grouped search results
func NewQueryResponse(grouped map[model.Modality][]model.Result) QueryResponse {
	resp := QueryResponse{Results: make(map[string][]QueryHit, len(grouped))}
	for m, hits := range grouped {
		out := make([]QueryHit, 0, len(hits))
		for _, h := range hits {
			out = append(out, QueryHit{
				Path:      h.Fragment.Path,
				VideoID:   h.Fragment.VideoID,
				MediaType: h.Fragment.MediaType.String(),
				Timestamp: h.Fragment.StartSeconds(),
				Distance:  h.Distance,
			})
		}
		resp.Results[m.String()] = out
	}
	return resp
}

// VideoResponse is a catalog entry
type VideoResponse struct {
	VideoID      string    `json:"video_id"`
	Path         string    `json:"path"`
	FPS          float64   `json:"fps"`
	TotalFrames  int       `json:"total_frames"`
	Collection   string    `json:"collection,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	IngestedAt   time.Time `json:"ingested_at"`
}

// NewVideoResponse converts a catalog record
func NewVideoResponse(v repository.VideoRecord) VideoResponse {
	return VideoResponse{
		VideoID:      v.VideoID,
		Path:         v.Path,
		FPS:          v.FPS,
		TotalFrames:  v.TotalFrames,
		Collection:   v.Collection,
		Status:       v.Status,
		ErrorMessage: v.ErrorMessage,
		IngestedAt:   v.IngestedAt,
	}
}

// VideoListResponse lists catalog entries
type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int             `json:"total"`
}
