package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
)

// MockDocumentGenerator is a mock implementation of port.DocumentGenerator.
type MockDocumentGenerator struct {
	mock.Mock
}

func (m *MockDocumentGenerator) EnqueueGeneration(ctx context.Context, form *domain.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}
