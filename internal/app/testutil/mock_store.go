package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"video-search/internal/app/model"
	"video-search/internal/app/storage/vector"
)

// MockStore is a testify mock of vector.Store. StoreKind defaults to SingleModality.
type MockStore struct {
	mock.Mock
	StoreKind vector.Kind
}

var _ vector.Store = (*MockStore)(nil)

func NewMockStore(kind vector.Kind) *MockStore {
	return &MockStore{StoreKind: kind}
}

func (m *MockStore) Kind() vector.Kind {
	if m.StoreKind == "" {
		return vector.SingleModality
	}
	return m.StoreKind
}

func (m *MockStore) Add(ctx context.Context, fragments []model.Fragment) (*vector.InsertReport, error) {
	args := m.Called(ctx, fragments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vector.InsertReport), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockStore) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Search(ctx context.Context, q vector.Query) ([]model.Result, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Result), args.Error(1)
}

func (m *MockStore) Close() error {
	return nil
}

// TextHit is a ranked text fragment of videoID spanning [start, end] seconds.
func TextHit(videoID string, start, end float64, distance float32) model.Result {
	return model.Result{
		Fragment: model.Fragment{
			VideoID:     videoID,
			MediaType:   model.ModalityText,
			TimestampMs: int64(start * 1000),
			StartSec:    start,
			EndSec:      end,
		},
		Distance: distance,
	}
}
