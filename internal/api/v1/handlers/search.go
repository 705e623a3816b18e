package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-search/internal/api/middleware"
	"video-search/internal/api/v1/dto"
	"video-search/internal/api/v1/services"
)

// TimestampNotFound is the detail returned when a search has no match
const TimestampNotFound = "Timestamp not found for the given query"

// SearchHandler handles search and catalog endpoints
type SearchHandler struct {
	service services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// SearchVideo returns the timestamp of the fragment that best matches the query
// POST /search_video
func (h *SearchHandler) SearchVideo(c *gin.Context) {
	var req dto.SearchVideoRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	res, err := h.service.SearchVideo(c.Request.Context(), req.VideoID, req.Query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if !res.Found() {
		c.JSON(http.StatusNotFound, dto.NotFoundResponse{Detail: TimestampNotFound})
		return
	}

	c.JSON(http.StatusOK, dto.SearchVideoResponse{VideoID: req.VideoID, Timestamp: *res.Timestamp})
}

// Query runs a cross-modal similarity search
// POST /api/v1/query
func (h *SearchHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	input, outputs, err := req.Modalities()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	grouped, err := h.service.Query(c.Request.Context(), req.Value, input, outputs)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQueryResponse(grouped))
}

// ListVideos lists ingested videos
// GET /api/v1/videos
func (h *SearchHandler) ListVideos(c *gin.Context) {
	videos, err := h.service.ListVideos(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := dto.VideoListResponse{Videos: make([]dto.VideoResponse, 0, len(videos)), Total: len(videos)}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, dto.NewVideoResponse(v))
	}
	c.JSON(http.StatusOK, resp)
}

// GetVideo returns one catalog entry
// GET /api/v1/videos/:id
func (h *SearchHandler) GetVideo(c *gin.Context) {
	video, err := h.service.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewVideoResponse(*video))
}
