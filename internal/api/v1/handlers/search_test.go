package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"video-search/internal/api/middleware"
	"video-search/internal/app/errors"
	"video-search/internal/app/model"
	"video-search/internal/app/repository"
	"video-search/internal/app/retrieval"
)

type mockSearchService struct {
	mock.Mock
}

func (m *mockSearchService) SearchVideo(ctx context.Context, videoID, query string) (retrieval.TimestampResult, error) {
	args := m.Called(ctx, videoID, query)
	return args.Get(0).(retrieval.TimestampResult), args.Error(1)
}

func (m *mockSearchService) Query(ctx context.Context, value string, input model.Modality, outputs []model.Modality) (map[model.Modality][]model.Result, error) {
	args := m.Called(ctx, value, input, outputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Modality][]model.Result), args.Error(1)
}

func (m *mockSearchService) ListVideos(ctx context.Context) ([]repository.VideoRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VideoRecord), args.Error(1)
}

func (m *mockSearchService) GetVideo(ctx context.Context, videoID string) (*repository.VideoRecord, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.VideoRecord), args.Error(1)
}

func setupRouter(svc *mockSearchService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	h := NewSearchHandler(svc)
	router.POST("/search_video", h.SearchVideo)
	router.POST("/query", h.Query)
	router.GET("/videos", h.ListVideos)
	router.GET("/videos/:id", h.GetVideo)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearchVideoFound(t *testing.T) {
	svc := new(mockSearchService)
	ts := 61.5
	svc.On("SearchVideo", mock.Anything, "lecture", "gradient descent").
		Return(retrieval.TimestampResult{Timestamp: &ts, Message: retrieval.MessageFound}, nil)

	w := doJSON(t, setupRouter(svc), http.MethodPost, "/search_video",
		map[string]string{"video_id": "lecture", "query": "gradient descent"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"video_id":"lecture","timestamp":61.5}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSearchVideoNotFound(t *testing.T) {
	svc := new(mockSearchService)
	svc.On("SearchVideo", mock.Anything, "lecture", "quantum").
		Return(retrieval.TimestampResult{Message: retrieval.MessageNotFound}, nil)

	w := doJSON(t, setupRouter(svc), http.MethodPost, "/search_video",
		map[string]string{"video_id": "lecture", "query": "quantum"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Timestamp not found for the given query"}`, w.Body.String())
}

func TestSearchVideoValidation(t *testing.T) {
	testCases := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing video id", map[string]string{"query": "x"}, "videoid"},
		{"missing query", map[string]string{"video_id": "v"}, "query"},
		{"blank query", map[string]string{"video_id": "v", "query": "   "}, "query"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockSearchService)
			w := doJSON(t, setupRouter(svc), http.MethodPost, "/search_video", tc.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "validation", body["kind"])
			assert.Contains(t, body["details"], tc.field)
			svc.AssertNotCalled(t, "SearchVideo", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSearchVideoVectorizerUnavailable(t *testing.T) {
	svc := new(mockSearchService)
	svc.On("SearchVideo", mock.Anything, "v", "q").
		Return(retrieval.TimestampResult{}, errors.Mark(errors.ErrVectorizationService, nil, "status 502"))

	w := doJSON(t, setupRouter(svc), http.MethodPost, "/search_video", map[string]string{"video_id": "v", "query": "q"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestQueryGroupsByModality(t *testing.T) {
	svc := new(mockSearchService)
	grouped := map[model.Modality][]model.Result{
		model.ModalityImage: {{
			Fragment: model.Fragment{Path: "frames/frame_30.jpg", VideoID: "v", MediaType: model.ModalityImage, TimestampMs: 1000},
			Distance: 0.2,
		}},
	}
	svc.On("Query", mock.Anything, "a red car", model.ModalityText, []model.Modality{model.ModalityImage}).Return(grouped, nil)

	w := doJSON(t, setupRouter(svc), http.MethodPost, "/query",
		map[string]interface{}{"value": "a red car", "input": "text", "outputs": []string{"image"}})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results map[string][]struct {
			Path      string  `json:"path"`
			Timestamp float64 `json:"timestamp"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results["image"], 1)
	assert.Equal(t, "frames/frame_30.jpg", resp.Results["image"][0].Path)
	assert.Equal(t, 1.0, resp.Results["image"][0].Timestamp)
}

func TestQueryRejectsUnknownModality(t *testing.T) {
	svc := new(mockSearchService)

	w := doJSON(t, setupRouter(svc), http.MethodPost, "/query",
		map[string]interface{}{"value": "x", "input": "video"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueryUnsupportedModalityFromStore(t *testing.T) {
	svc := new(mockSearchService)
	svc.On("Query", mock.Anything, "x", model.ModalityAudio, []model.Modality{}).
		Return(nil, errors.Wrap(errors.ErrUnsupportedModality, "text store"))

	w := doJSON(t, setupRouter(svc), http.MethodPost, "/query",
		map[string]interface{}{"value": "x", "input": "audio"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndGetVideos(t *testing.T) {
	svc := new(mockSearchService)
	rec := repository.VideoRecord{VideoID: "v1", Path: "/data/v1.mp4", FPS: 30, TotalFrames: 900, Status: repository.StatusIngested, IngestedAt: time.Unix(0, 0).UTC()}
	svc.On("ListVideos", mock.Anything).Return([]repository.VideoRecord{rec}, nil)
	svc.On("GetVideo", mock.Anything, "v1").Return(&rec, nil)
	svc.On("GetVideo", mock.Anything, "nope").Return(nil, errors.NotFound("video", "nope"))
	router := setupRouter(svc)

	w := doJSON(t, router, http.MethodGet, "/videos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total  int `json:"total"`
		Videos []struct {
			VideoID string `json:"video_id"`
			Status  string `json:"status"`
		} `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "ingested", list.Videos[0].Status)

	w = doJSON(t, router, http.MethodGet, "/videos/v1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_frames":900`)

	w = doJSON(t, router, http.MethodGet, "/videos/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
