package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
)

// MockFormAuditRepo is a mock implementation of port.FormAuditRepository.
type MockFormAuditRepo struct {
	mock.Mock
}

func (m *MockFormAuditRepo) Create(ctx context.Context, entry *domain.FormAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFormAuditRepo) ListByForm(ctx context.Context, formID uuid.UUID, offset, limit int) ([]domain.FormAuditEntry, int, error) {
	args := m.Called(ctx, formID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.FormAuditEntry), args.Int(1), args.Error(2)
}
