package port

import (
	"context"

	"github.com/google/uuid"

	"deedflow/internal/domain"
)

// Notifier abstracts outbound notifications to applicants and staff. Sends
// happen after a transition has been persisted; failures are logged, never
// surfaced to the caller.
type Notifier interface {
	SendStageApproved(ctx context.Context, toEmail, toName string, formID uuid.UUID, stage domain.StageKey) error
	SendCorrectionRequested(ctx context.Context, toEmail, toName string, formID uuid.UUID, notes string) error
	SendFormLocked(ctx context.Context, toEmail, toName string, formID uuid.UUID) error
	SendDeliveryEscalation(ctx context.Context, toEmail, toName string, formID uuid.UUID) error
}
