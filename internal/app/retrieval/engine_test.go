package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/model"
	"video-search/internal/app/storage/vector"
	"video-search/internal/app/testutil"
)

func TestEngineSearchUsesTopHit(t *testing.T) {
	store := testutil.NewMockStore(vector.SingleModality)
	store.On("Search", mock.Anything, vector.Query{Value: "momentum", Input: model.ModalityText, VideoID: "lecture"}).
		Return([]model.Result{
			testutil.TextHit("lecture", 16.4, 24.0, 0.12),
			testutil.TextHit("lecture", 3.5, 11.8, 0.4),
		}, nil).Once()

	ts, found, err := NewEngine(store, nil).Search(context.Background(), "lecture", "momentum")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 16.4, ts)
	store.AssertExpectations(t)
}

func TestEngineSearchNoHits(t *testing.T) {
	store := testutil.NewMockStore(vector.SingleModality)
	store.On("Search", mock.Anything, mock.Anything).Return([]model.Result{}, nil)

	_, found, err := NewEngine(store, nil).Search(context.Background(), "lecture", "quantum")

	require.NoError(t, err)
	assert.False(t, found)
}
