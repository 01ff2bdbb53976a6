package port

import (
	"context"

	"deedflow/internal/domain"
)

// DocumentGenerator is the collaborator that produces the final deed once a
// form is locked. The workflow only signals eligibility; rendering happens
// elsewhere.
type DocumentGenerator interface {
	EnqueueGeneration(ctx context.Context, form *domain.Form) error
}
