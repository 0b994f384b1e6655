package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorageBackend implements interfaces.StorageBackend for testing
type MockStorageBackend struct {
	mock.Mock
	name string
}

func (m *MockStorageBackend) Fetch(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorageBackend) Store(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockStorageBackend) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockStorageBackend) Name() string {
	return m.name
}

func (m *MockStorageBackend) LocationURI() string {
	return "mock:" + m.name
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiStorageBackend_Available(t *testing.T) {
	tests := []struct {
		name     string
		backends []bool
		expected bool
	}{
		{"all backends available", []bool{true, true, true}, true},
		{"some backends available", []bool{false, true, false}, true},
		{"no backends available", []bool{false, false, false}, false},
		{"no backends", []bool{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var backends []interfaces.StorageBackend
			for i, available := range tt.backends {
				mockStorage := &MockStorageBackend{name: fmt.Sprintf("mock-%d", i)}
				mockStorage.On("Available", mock.Anything).Return(available).Maybe()
				backends = append(backends, mockStorage)
			}

			multi := NewMultiStorageBackend(backends, testLogger())
			assert.Equal(t, tt.expected, multi.Available(context.Background()))

			for _, backend := range backends {
				backend.(*MockStorageBackend).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStorageBackend_Fetch(t *testing.T) {
	testData := []byte("test data")
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.StorageBackend
		expectedData  []byte
		expectedError error
	}{
		{
			name: "first backend successful",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, "client.crt").Return(testData, nil)

				mock2 := &MockStorageBackend{name: "mock-B"}
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedData: testData,
		},
		{
			name: "fallback to second backend",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, "client.crt").Return(nil, interfaces.ErrContentNotFound)

				mock2 := &MockStorageBackend{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, "client.crt").Return(testData, nil)
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedData: testData,
		},
		{
			name: "skips unavailable backend",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(false)

				mock2 := &MockStorageBackend{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, "client.crt").Return(testData, nil)
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedData: testData,
		},
		{
			name: "not found everywhere",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, "client.crt").Return(nil, interfaces.ErrContentNotFound)
				return []interfaces.StorageBackend{mock1}
			},
			expectedError: interfaces.ErrContentNotFound,
		},
		{
			name: "backend failure is reported",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, "client.crt").Return(nil, testErr)

				mock2 := &MockStorageBackend{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, "client.crt").Return(nil, interfaces.ErrContentNotFound)
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedError: testErr,
		},
		{
			name: "no available backends",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(false)
				return []interfaces.StorageBackend{mock1}
			},
			expectedError: interfaces.ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.setupMocks()
			multi := NewMultiStorageBackend(backends, testLogger())

			data, err := multi.Fetch(context.Background(), "client.crt")
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedData, data)
			}

			for _, backend := range backends {
				backend.(*MockStorageBackend).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStorageBackend_Store(t *testing.T) {
	testData := []byte("seed")

	t.Run("stores to every available backend", func(t *testing.T) {
		mock1 := &MockStorageBackend{name: "mock-A"}
		mock1.On("Available", mock.Anything).Return(true)
		mock1.On("Store", mock.Anything, "node-seed", testData).Return(nil)

		mock2 := &MockStorageBackend{name: "mock-B"}
		mock2.On("Available", mock.Anything).Return(false)

		mock3 := &MockStorageBackend{name: "mock-C"}
		mock3.On("Available", mock.Anything).Return(true)
		mock3.On("Store", mock.Anything, "node-seed", testData).Return(errors.New("write failed"))

		multi := NewMultiStorageBackend([]interfaces.StorageBackend{mock1, mock2, mock3}, testLogger())
		require.NoError(t, multi.Store(context.Background(), "node-seed", testData))

		mock1.AssertExpectations(t)
		mock2.AssertExpectations(t)
		mock3.AssertExpectations(t)
	})

	t.Run("fails when no backend accepts the write", func(t *testing.T) {
		mock1 := &MockStorageBackend{name: "mock-A"}
		mock1.On("Available", mock.Anything).Return(true)
		mock1.On("Store", mock.Anything, "node-seed", testData).Return(ErrReadOnlyBackend)

		multi := NewMultiStorageBackend([]interfaces.StorageBackend{mock1}, testLogger())
		err := multi.Store(context.Background(), "node-seed", testData)
		assert.ErrorIs(t, err, ErrReadOnlyBackend)
	})

	t.Run("fails when nothing is available", func(t *testing.T) {
		multi := NewMultiStorageBackend(nil, testLogger())
		err := multi.Store(context.Background(), "node-seed", testData)
		assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
	})
}

func TestMultiStorageBackend_LocationURI(t *testing.T) {
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{
		&MockStorageBackend{name: "a"},
		&MockStorageBackend{name: "b"},
	}, nil)
	assert.Equal(t, "multi:[mock:a,mock:b]", multi.LocationURI())
}
