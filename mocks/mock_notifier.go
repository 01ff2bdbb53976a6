package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendStageApproved(ctx context.Context, toEmail, toName string, formID uuid.UUID, stage domain.StageKey) error {
	args := m.Called(ctx, toEmail, toName, formID, stage)
	return args.Error(0)
}

func (m *MockNotifier) SendCorrectionRequested(ctx context.Context, toEmail, toName string, formID uuid.UUID, notes string) error {
	args := m.Called(ctx, toEmail, toName, formID, notes)
	return args.Error(0)
}

func (m *MockNotifier) SendFormLocked(ctx context.Context, toEmail, toName string, formID uuid.UUID) error {
	args := m.Called(ctx, toEmail, toName, formID)
	return args.Error(0)
}

func (m *MockNotifier) SendDeliveryEscalation(ctx context.Context, toEmail, toName string, formID uuid.UUID) error {
	args := m.Called(ctx, toEmail, toName, formID)
	return args.Error(0)
}
