package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/townbeat/eventseries/series"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetSeries(ctx context.Context, seriesID string) (*series.Series, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*series.Series), args.Error(1)
}

func (m *MockStorage) CreateSeries(ctx context.Context, s *series.Series) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStorage) UpdateSeries(ctx context.Context, s *series.Series) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStorage) ListInstances(ctx context.Context, seriesID string) ([]series.EventInstance, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]series.EventInstance), args.Error(1)
}

func (m *MockStorage) CreateInstance(ctx context.Context, inst *series.EventInstance) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockStorage) RetireInstance(ctx context.Context, instanceID string) error {
	args := m.Called(ctx, instanceID)
	return args.Error(0)
}

func (m *MockStorage) UpdateSequences(ctx context.Context, instances []series.EventInstance) error {
	args := m.Called(ctx, instances)
	return args.Error(0)
}
