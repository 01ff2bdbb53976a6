package noop

import (
	"context"
	"log"

	"github.com/google/uuid"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a no-op Notifier that logs instead of sending.
func NewNoopNotifier() port.Notifier {
	return &noopNotifier{}
}

func (s *noopNotifier) SendStageApproved(_ context.Context, toEmail, toName string, formID uuid.UUID, stage domain.StageKey) error {
	log.Printf("[NOOP EMAIL] Stage %s approved on form %s; notifying %s (%s)", stage, formID, toName, toEmail)
	return nil
}

func (s *noopNotifier) SendCorrectionRequested(_ context.Context, toEmail, toName string, formID uuid.UUID, notes string) error {
	log.Printf("[NOOP EMAIL] Correction requested on form %s; notifying %s (%s): %s", formID, toName, toEmail, notes)
	return nil
}

func (s *noopNotifier) SendFormLocked(_ context.Context, toEmail, toName string, formID uuid.UUID) error {
	log.Printf("[NOOP EMAIL] Form %s locked; notifying %s (%s)", formID, toName, toEmail)
	return nil
}

func (s *noopNotifier) SendDeliveryEscalation(_ context.Context, toEmail, toName string, formID uuid.UUID) error {
	log.Printf("[NOOP EMAIL] Delivery escalation on form %s; notifying %s (%s)", formID, toName, toEmail)
	return nil
}
