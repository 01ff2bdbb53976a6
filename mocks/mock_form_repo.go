package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

// MockFormRepo is a mock implementation of port.FormRepository.
type MockFormRepo struct {
	mock.Mock
}

func (m *MockFormRepo) Create(ctx context.Context, form *domain.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepo) GetByID(ctx context.Context, formID uuid.UUID) (*domain.Form, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormRepo) List(ctx context.Context, filter port.FormFilter, offset, limit int) ([]domain.Form, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Form), args.Int(1), args.Error(2)
}

func (m *MockFormRepo) ListPendingStage(ctx context.Context, stage domain.StageKey, offset, limit int) ([]domain.Form, int, error) {
	args := m.Called(ctx, stage, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Form), args.Int(1), args.Error(2)
}

func (m *MockFormRepo) ListEscalationDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Form, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Form), args.Error(1)
}

func (m *MockFormRepo) Update(ctx context.Context, form *domain.Form, expectedVersion int64) error {
	args := m.Called(ctx, form, expectedVersion)
	return args.Error(0)
}
