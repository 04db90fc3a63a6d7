package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a testify mock for the Provider interface.
type MockProvider struct {
	mock.Mock
}

// WritePart mocks the Provider WritePart method.
func (m *MockProvider) WritePart(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}
