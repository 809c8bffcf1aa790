package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gainboard/internal/domain/entities"
)

// MockSnapshotLoader is a mock implementation of services.SnapshotLoader
type MockSnapshotLoader struct {
	mock.Mock
}

func (m *MockSnapshotLoader) LoadSnapshot(ctx context.Context) ([]*entities.Instrument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Instrument), args.Error(1)
}

// MockStreamTransport is a mock implementation of services.StreamTransport
type MockStreamTransport struct {
	mock.Mock
}

func (m *MockStreamTransport) Run(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStreamTransport) RequestReconnect() {
	m.Called()
}

func (m *MockStreamTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}
