package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"deedflow/internal/domain"
)

// FormFilter narrows form listings. Nil members are ignored.
type FormFilter struct {
	Status      *domain.FormStatus
	ServiceType *domain.ServiceType
	SubmittedBy *uuid.UUID
}

// FormRepository defines the contract for form persistence. Update is a
// compare-and-swap on the form's version so concurrent transitions on one
// form are linearized; the loser re-reads and re-runs the engine.
type FormRepository interface {
	Create(ctx context.Context, form *domain.Form) error
	GetByID(ctx context.Context, formID uuid.UUID) (*domain.Form, error)
	List(ctx context.Context, filter FormFilter, offset, limit int) ([]domain.Form, int, error)
	// ListPendingStage returns active forms whose prerequisite stages are
	// approved but the given stage is not: the stage's work queue.
	ListPendingStage(ctx context.Context, stage domain.StageKey, offset, limit int) ([]domain.Form, int, error)
	// ListEscalationDue returns forms still awaiting an applicant delivery
	// choice whose window elapsed at or before the cutoff.
	ListEscalationDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Form, error)
	// Update persists the form if expectedVersion still matches the stored
	// row, incrementing the version; otherwise ErrFormConflict.
	Update(ctx context.Context, form *domain.Form, expectedVersion int64) error
}

// FormAuditRepository defines the contract for the immutable form audit log.
type FormAuditRepository interface {
	Create(ctx context.Context, entry *domain.FormAuditEntry) error
	ListByForm(ctx context.Context, formID uuid.UUID, offset, limit int) ([]domain.FormAuditEntry, int, error)
}
