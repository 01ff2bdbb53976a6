package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
	"deedflow/internal/port"
	"deedflow/internal/service"
)

// MockFormService is a mock implementation of service.FormService.
type MockFormService struct {
	mock.Mock
}

func (m *MockFormService) Submit(ctx context.Context, actor domain.Actor, input service.SubmitFormInput) (*domain.Form, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) FinalizeDraft(ctx context.Context, actor domain.Actor, formID uuid.UUID, fieldPatches map[string]string) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, fieldPatches)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) GetByID(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) List(ctx context.Context, actor domain.Actor, filter port.FormFilter, page, pageSize int) ([]domain.Form, int, error) {
	args := m.Called(ctx, actor, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Form), args.Int(1), args.Error(2)
}

func (m *MockFormService) StageQueue(ctx context.Context, actor domain.Actor, page, pageSize int) ([]domain.Form, int, error) {
	args := m.Called(ctx, actor, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Form), args.Int(1), args.Error(2)
}

func (m *MockFormService) Advance(ctx context.Context, actor domain.Actor, formID uuid.UUID, input service.AdvanceFormInput) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) MarkFinalDone(ctx context.Context, actor domain.Actor, formID uuid.UUID, notes string) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) Resubmit(ctx context.Context, actor domain.Actor, formID uuid.UUID, fieldPatches map[string]string) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, fieldPatches)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) AddNote(ctx context.Context, actor domain.Actor, formID uuid.UUID, note string) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) AuditTrail(ctx context.Context, actor domain.Actor, formID uuid.UUID, page, pageSize int) ([]domain.FormAuditEntry, int, error) {
	args := m.Called(ctx, actor, formID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.FormAuditEntry), args.Int(1), args.Error(2)
}

func (m *MockFormService) SetDeliveryPreference(ctx context.Context, actor domain.Actor, formID uuid.UUID, input service.DeliveryChoiceInput) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) DecideDelivery(ctx context.Context, actor domain.Actor, formID uuid.UUID, input service.DeliveryChoiceInput) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) MarkDispatched(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormService) MarkDelivered(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error) {
	args := m.Called(ctx, actor, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}
